package model

import (
	"errors"
	"fmt"
	"time"
)

// ClockLayout формат времени суток во всех шаблонах ("09:30")
const ClockLayout = "15:04"

// BlockMinuteStep длительность блока должна быть кратна этому числу минут
const BlockMinuteStep = 5

// HourBlock один интервал внутри рабочего дня
type HourBlock struct {
	ID         int64  `json:"id"`
	TemplateID int64  `json:"template_id"`
	Position   int    `json:"position"`   // порядок внутри шаблона
	StartTime  string `json:"start_time"` // "09:00"
	EndTime    string `json:"end_time"`   // "09:30"
}

// HourTemplate шаблон рабочего дня: границы дня и упорядоченные блоки
type HourTemplate struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Blocks    []HourBlock `json:"blocks"`
	CreatedAt time.Time   `json:"created_at"`
}

// Validate проверяет формат времени, порядок границ и длительность блоков
func (t *HourTemplate) Validate() error {
	if err := validateRange(t.StartTime, t.EndTime); err != nil {
		return fmt.Errorf("template %d: %w", t.ID, err)
	}

	for i, block := range t.Blocks {
		if err := validateRange(block.StartTime, block.EndTime); err != nil {
			return fmt.Errorf("template %d block %d: %w", t.ID, i, err)
		}

		minutes, _ := block.DurationMinutes()
		if minutes%BlockMinuteStep != 0 {
			return fmt.Errorf("template %d block %d: duration %d is not a multiple of %d minutes",
				t.ID, i, minutes, BlockMinuteStep)
		}
	}

	return nil
}

// DurationMinutes возвращает длительность блока в минутах
func (b HourBlock) DurationMinutes() (int, error) {
	start, err := ParseClock(b.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(b.EndTime)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start) / time.Minute), nil
}

// ParseClock разбирает время суток в формате "HH:MM"
func ParseClock(value string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q", value)
	}
	return t, nil
}

func validateRange(start, end string) error {
	from, err := ParseClock(start)
	if err != nil {
		return err
	}
	to, err := ParseClock(end)
	if err != nil {
		return err
	}
	if !from.Before(to) {
		return errors.New("start time must be before end time")
	}
	return nil
}
