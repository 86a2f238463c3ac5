package export

import (
	"fmt"
	"strings"
	"time"
)

var months = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// FormatEventDateRange renders event dates in Spanish:
//
//	"14 - 16 de Marzo 2026"           same month
//	"28 de Marzo - 2 de Abril 2026"   different months
//	"14 de Marzo 2026"                no end date
//
// An unreadable start yields "".
func FormatEventDateRange(start, end string) string {
	s, ok := parseDay(start)
	if !ok {
		return ""
	}
	e, ok := parseDay(end)
	if !ok {
		return fmt.Sprintf("%d de %s %d", s.Day(), monthName(s), s.Year())
	}
	if s.Month() == e.Month() && s.Year() == e.Year() {
		return fmt.Sprintf("%d - %d de %s %d", s.Day(), e.Day(), monthName(e), s.Year())
	}
	return fmt.Sprintf("%d de %s - %d de %s %d", s.Day(), monthName(s), e.Day(), monthName(e), e.Year())
}

// FormatIssueDate renders the long es-AR date, e.g. "14 de marzo de 2026".
func FormatIssueDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), strings.ToLower(monthName(t)), t.Year())
}

func monthName(t time.Time) string {
	return months[t.Month()-1]
}

// parseDay reads the calendar day of a date or timestamp string.
func parseDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len("2006-01-02") {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
