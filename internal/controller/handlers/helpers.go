package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/schedule"
	"github.com/Freeeeeet/staff_availability/internal/service"
)

var errUsage = errors.New("usage")

var weekdayShort = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// ParseApplyArgs разбирает "/apply <employee_id> <template_id> <start> <end> <days>"
func ParseApplyArgs(text string) (model.ScheduleRequest, error) {
	fields := strings.Fields(text)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		fields = fields[1:]
	}
	if len(fields) != 5 {
		return model.ScheduleRequest{}, fmt.Errorf("%w: expected 5 arguments, got %d", errUsage, len(fields))
	}

	employeeID, err := parseID(fields[0])
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("employee id: %w", err)
	}
	templateID, err := parseID(fields[1])
	if err != nil {
		return model.ScheduleRequest{}, fmt.Errorf("template id: %w", err)
	}

	days, err := schedule.ParseWeekdays(fields[4])
	if err != nil {
		return model.ScheduleRequest{}, err
	}

	return model.NewScheduleRequest(employeeID, templateID, fields[2], fields[3], days)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a positive number", value)
	}
	return id, nil
}

// parsePeriod разбирает "2024-01-01 2024-01-14" или "2024-01-01 - 2024-01-14"
func parsePeriod(text string) (string, string, error) {
	fields := strings.Fields(strings.ReplaceAll(text, " - ", " "))
	if len(fields) != 2 {
		return "", "", errors.New("expected two dates")
	}
	for _, value := range fields {
		if _, err := model.ParseDate(value); err != nil {
			return "", "", err
		}
	}
	return fields[0], fields[1], nil
}

// ParseDayArgs разбирает "/day <employee_id> <YYYY-MM-DD>"
func ParseDayArgs(text string) (int64, time.Time, error) {
	fields := strings.Fields(text)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		fields = fields[1:]
	}
	if len(fields) != 2 {
		return 0, time.Time{}, fmt.Errorf("expected 2 arguments, got %d", len(fields))
	}

	employeeID, err := parseID(fields[0])
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("employee id: %w", err)
	}
	day, err := model.ParseDate(fields[1])
	if err != nil {
		return 0, time.Time{}, err
	}
	return employeeID, day, nil
}

// FormatDay форматирует слоты сотрудника на дату
func FormatDay(employeeID int64, day time.Time, availability *model.Availability) string {
	header := fmt.Sprintf("👤 Сотрудник #%d, %s", employeeID, day.Format(DisplayDateLayout))
	if availability == nil {
		return header + "\n\nℹ️ На эту дату доступность не задана."
	}

	var sb strings.Builder
	sb.WriteString(header)
	fmt.Fprintf(&sb, "\n🕘 Рабочий день: %s–%s\n", availability.StartTime, availability.EndTime)

	if len(availability.Slots) == 0 {
		sb.WriteString("\nСлотов нет.")
		return sb.String()
	}

	sb.WriteString("\n")
	for _, slot := range availability.Slots {
		mark := "🟢"
		if slot.IsReserved() {
			mark = "🔴"
		}
		fmt.Fprintf(&sb, "%s %s–%s\n", mark, slot.StartTime, slot.EndTime)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatWeekdays "Пн, Ср, Пт"
func FormatWeekdays(flags model.WeekdayFlags) string {
	active := schedule.ActiveWeekdays(flags)
	if len(active) == 0 {
		return "нет"
	}

	names := make([]string, 0, len(active))
	for _, day := range active {
		names = append(names, weekdayShort[day.Number-1])
	}
	return strings.Join(names, ", ")
}

// FormatSummary форматирует итог применения для ответа в чат
func FormatSummary(req model.ScheduleRequest, summary *model.ApplySummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "✅ Шаблон #%d применён к сотруднику #%d\n\n", req.TemplateID, req.EmployeeID)
	fmt.Fprintf(&sb, "📅 Период: %s – %s\n",
		req.StartDate.Format(DisplayDateLayout), req.EndDate.Format(DisplayDateLayout))
	fmt.Fprintf(&sb, "🗓 Дни: %s\n", FormatWeekdays(req.Days))
	fmt.Fprintf(&sb, "📋 Дней доступности: %d\n", summary.AvailabilityCount)
	fmt.Fprintf(&sb, "⏱ Слотов: %d\n", summary.SlotCount)

	if summary.AvailabilityCount == 0 {
		sb.WriteString("\nℹ️ В периоде нет выбранных дней недели.")
		return sb.String()
	}

	sb.WriteString("\n")
	for i, a := range summary.Availabilities {
		if i == SummaryMaxDates {
			fmt.Fprintf(&sb, "… и ещё %d\n", len(summary.Availabilities)-SummaryMaxDates)
			break
		}
		fmt.Fprintf(&sb, "• %s %s–%s (%d сл.)\n",
			a.Date.Format(DisplayDateLayout), a.StartTime, a.EndTime, len(a.Slots))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// ErrorText сообщение пользователю по виду ошибки применения
func ErrorText(err error) string {
	switch service.KindOf(err) {
	case service.KindInvalidRequest:
		return "❌ Некорректный запрос.\n\n" + applyUsage
	case service.KindTemplateNotFound:
		return "❌ Шаблон рабочего дня не найден."
	case service.KindInvalidTemplate:
		return "❌ Шаблон рабочего дня заполнен некорректно. Проверьте время блоков."
	case service.KindEmployeeNotFound:
		return "❌ Сотрудник не найден."
	case service.KindInProgress:
		return "⏳ Для этого сотрудника уже применяется расписание. Попробуйте через минуту."
	default:
		var applyErr *service.ApplyError
		if errors.As(err, &applyErr) && !applyErr.Date.IsZero() {
			return fmt.Sprintf("❌ Не удалось сохранить расписание на %s. Предыдущие даты сохранены, повторите команду.",
				applyErr.Date.Format(DisplayDateLayout))
		}
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}
