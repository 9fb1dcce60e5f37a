package schedule

import (
	"iter"
	"slices"
	"time"
)

// ScheduledDate дата, на которую применяется шаблон
type ScheduledDate struct {
	Date    time.Time
	Weekday ActiveWeekday
}

// DayStart отбрасывает время, оставляя полночь того же дня
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart возвращает понедельник недели, в которую попадает t
func WeekStart(t time.Time) time.Time {
	day := DayStart(t)
	return day.AddDate(0, 0, -(ISOWeekday(day) - 1))
}

// ExpandDates перебирает все даты из [start, end], попадающие на выбранные дни недели.
// Обход идёт неделя за неделей от понедельника недели start, внутри недели по возрастанию.
// start > end или пустой список дней дают пустую последовательность.
func ExpandDates(start, end time.Time, weekdays []ActiveWeekday) iter.Seq[ScheduledDate] {
	days := normalizeWeekdays(weekdays)
	start, end = DayStart(start), DayStart(end)

	return func(yield func(ScheduledDate) bool) {
		if len(days) == 0 || start.After(end) {
			return
		}

		for cursor := WeekStart(start); !cursor.After(end); cursor = cursor.AddDate(0, 0, 7) {
			cursorWeekday := ISOWeekday(cursor)
			for _, day := range days {
				candidate := cursor.AddDate(0, 0, (day.Number-cursorWeekday+7)%7)
				if candidate.Before(start) || candidate.After(end) {
					continue
				}
				if !yield(ScheduledDate{Date: candidate, Weekday: day}) {
					return
				}
			}
		}
	}
}

// CollectDates собирает последовательность в срез
func CollectDates(seq iter.Seq[ScheduledDate]) []time.Time {
	var dates []time.Time
	for d := range seq {
		dates = append(dates, d.Date)
	}
	return dates
}

// normalizeWeekdays копирует дни, убирает дубли и сортирует по номеру,
// чтобы даты внутри недели шли строго по возрастанию
func normalizeWeekdays(weekdays []ActiveWeekday) []ActiveWeekday {
	days := make([]ActiveWeekday, 0, len(weekdays))
	for _, d := range weekdays {
		if d.Number < 1 || d.Number > 7 {
			continue
		}
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b ActiveWeekday) int { return a.Number - b.Number })
	return slices.CompactFunc(days, func(a, b ActiveWeekday) bool { return a.Number == b.Number })
}
