package billing

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextRun(t *testing.T) {
	cases := []struct {
		name  string
		day   int
		after time.Time
		want  time.Time
	}{
		{"ainda neste mês", 20, date(2026, time.March, 10), date(2026, time.March, 20)},
		{"mesmo dia vai para o próximo mês", 10, date(2026, time.March, 10), date(2026, time.April, 10)},
		{"dia já passou", 5, date(2026, time.March, 10), date(2026, time.April, 5)},
		{"dia 31 em abril vira 30", 31, date(2026, time.April, 1), date(2026, time.April, 30)},
		{"dia 31 em fevereiro vira 28", 31, date(2026, time.February, 1), date(2026, time.February, 28)},
		{"fevereiro bissexto", 30, date(2028, time.February, 1), date(2028, time.February, 29)},
		{"virada de ano", 15, date(2026, time.December, 20), date(2027, time.January, 15)},
		{"dia fora da faixa é ajustado", 50, date(2026, time.January, 1), date(2026, time.January, 31)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextRun(tc.day, tc.after)
			if !got.Equal(tc.want) {
				t.Errorf("NextRun(%d, %s) = %s, esperado %s",
					tc.day, tc.after.Format("2006-01-02"), got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
			}
		})
	}
}
