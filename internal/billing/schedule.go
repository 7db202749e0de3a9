package billing

import "time"

// NextRun calcula a próxima execução de uma agenda de faturamento:
// a primeira ocorrência do dia do mês estritamente depois de `after`,
// ajustando o dia para meses mais curtos (dia 31 em fevereiro vira 28/29).
func NextRun(dayOfMonth int, after time.Time) time.Time {
	if dayOfMonth < 1 {
		dayOfMonth = 1
	}
	if dayOfMonth > 31 {
		dayOfMonth = 31
	}

	year, month := after.Year(), after.Month()
	candidate := dateForMonth(year, month, dayOfMonth, after.Location())
	if !candidate.After(after) {
		year, month = nextMonth(year, month)
		candidate = dateForMonth(year, month, dayOfMonth, after.Location())
	}
	return candidate
}

func dateForMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func lastDayOfMonth(year int, month time.Month) int {
	// dia 0 do mês seguinte = último dia deste mês
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
