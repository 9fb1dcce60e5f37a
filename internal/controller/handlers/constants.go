package handlers

// Отображение сводки
const (
	// Сколько дат перечислять в ответе, остальные сворачиваются в "и ещё N"
	SummaryMaxDates = 10

	// Формат даты в ответах бота
	DisplayDateLayout = "02.01.2006"
)

const dayUsage = "Формат: /day <employee_id> <YYYY-MM-DD>"

const applyUsage = "Формат:\n" +
	"/apply <employee_id> <template_id> <YYYY-MM-DD> <YYYY-MM-DD> <дни>\n\n" +
	"Дни: mon,wed,fri или 1,3,5 или mon-fri или all\n" +
	"Пример: /apply 7 3 2024-01-01 2024-01-14 mon"
