package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/model"
)

// ActiveWeekday выбранный день недели: 1 = понедельник ... 7 = воскресенье
type ActiveWeekday struct {
	Number int
	Name   string
}

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ActiveWeekdays превращает флаги в упорядоченный список дней, начиная с понедельника.
// Пустой список допустим: диапазон дат просто не даст ни одной даты.
func ActiveWeekdays(flags model.WeekdayFlags) []ActiveWeekday {
	active := [...]bool{
		flags.Monday,
		flags.Tuesday,
		flags.Wednesday,
		flags.Thursday,
		flags.Friday,
		flags.Saturday,
		flags.Sunday,
	}

	days := make([]ActiveWeekday, 0, len(active))
	for i, on := range active {
		if on {
			days = append(days, ActiveWeekday{Number: i + 1, Name: weekdayNames[i]})
		}
	}
	return days
}

// Weekday переводит номер ISO в time.Weekday
func (d ActiveWeekday) Weekday() time.Weekday {
	return time.Weekday(d.Number % 7)
}

// ISOWeekday возвращает номер дня недели: 1 = понедельник ... 7 = воскресенье
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

var weekdayAliases = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

// ParseWeekdays разбирает список дней: "mon,wed,fri", "1,3,5", "mon-fri", "all"
func ParseWeekdays(value string) (model.WeekdayFlags, error) {
	var set [8]bool

	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return model.WeekdayFlags{}, fmt.Errorf("weekdays are required")
	}

	if value == "all" {
		value = "mon-sun"
	}

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, isRange := strings.Cut(part, "-")
		start, err := parseWeekday(from)
		if err != nil {
			return model.WeekdayFlags{}, err
		}
		end := start
		if isRange {
			end, err = parseWeekday(to)
			if err != nil {
				return model.WeekdayFlags{}, err
			}
			if end < start {
				return model.WeekdayFlags{}, fmt.Errorf("invalid weekday range %q", part)
			}
		}

		for n := start; n <= end; n++ {
			set[n] = true
		}
	}

	return model.WeekdayFlags{
		Monday:    set[1],
		Tuesday:   set[2],
		Wednesday: set[3],
		Thursday:  set[4],
		Friday:    set[5],
		Saturday:  set[6],
		Sunday:    set[7],
	}, nil
}

func parseWeekday(value string) (int, error) {
	value = strings.TrimSpace(value)
	if n, ok := weekdayAliases[value]; ok {
		return n, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > 7 {
		return 0, fmt.Errorf("unknown weekday %q", value)
	}
	return n, nil
}
