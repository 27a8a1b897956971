// Package localdate converts between ISO (YYYY-MM-DD) and Brazilian display
// (DD/MM/YYYY) dates. Every function returns an empty string (or zero) on
// malformed input instead of failing.
package localdate

import (
	"fmt"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// Presets are the suggested "last N days" periods.
var Presets = []int{7, 15, 30, 90}

var (
	weekdays = [...]string{
		"domingo", "segunda-feira", "terça-feira", "quarta-feira",
		"quinta-feira", "sexta-feira", "sábado",
	}
	months = [...]string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	}
)

// ToISO converts "DD/MM/YYYY" to "YYYY-MM-DD".
func ToISO(local string) string {
	if local == "" {
		return ""
	}
	parts := strings.Split(local, "/")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ""
	}
	return parts[2] + "-" + pad2(parts[1]) + "-" + pad2(parts[0])
}

// ToLocal converts "YYYY-MM-DD" to "DD/MM/YYYY".
func ToLocal(iso string) string {
	if iso == "" {
		return ""
	}
	parts := strings.Split(iso, "-")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ""
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// Extended renders an ISO date as "segunda-feira, 15 de janeiro de 2024".
func Extended(iso string) string {
	t, ok := parse(iso)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s, %d de %s de %d",
		weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}

// Today returns the host's local calendar date.
func Today() string {
	return time.Now().Format(isoLayout)
}

// DaysAgo returns the local calendar date n days before today.
func DaysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(isoLayout)
}

// LastDays returns the display bounds of the period ending today and starting
// n days ago.
func LastDays(n int) (start, end string) {
	return ToLocal(DaysAgo(n)), ToLocal(Today())
}

// InclusiveDays counts calendar days between two ISO dates, both ends
// included. Order does not matter; bad input yields 0.
func InclusiveDays(startISO, endISO string) int {
	start, ok := parse(startISO)
	if !ok {
		return 0
	}
	end, ok := parse(endISO)
	if !ok {
		return 0
	}
	// UTC midnights keep the difference a whole number of days.
	a := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	diff := int(b.Sub(a).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff + 1
}

// Valid reports whether iso is a real calendar date.
func Valid(iso string) bool {
	_, ok := parse(iso)
	return ok
}

func parse(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(isoLayout, iso, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func pad2(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}
