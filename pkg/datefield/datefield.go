// Package datefield masks free-text keystrokes into a DD/MM/YYYY display
// value and yields the ISO date once all eight digits are present.
package datefield

import (
	"strings"

	"github.com/fastygo/stockdesk/pkg/localdate"
)

// Mask strips non-digits from raw and re-inserts the separators. iso is set
// and complete is true only when exactly eight digits were typed. Day and
// month ranges are not checked here.
func Mask(raw string) (display, iso string, complete bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	n := len(digits)

	if n >= 1 {
		display = digits[:min(n, 2)]
	}
	if n >= 3 {
		display += "/" + digits[2:min(n, 4)]
	}
	if n >= 5 {
		display += "/" + digits[4:min(n, 8)]
	}

	if n == 8 {
		day, month, year := digits[0:2], digits[2:4], digits[4:8]
		return display, year + "-" + month + "-" + day, true
	}
	return display, "", false
}

// Field holds the state of one manual date input.
type Field struct {
	display  string
	internal string

	// OnComplete receives the ISO date each time a keystroke completes it.
	OnComplete func(iso string)
}

// Input processes the raw field content after a keystroke and returns the
// masked display string.
func (f *Field) Input(raw string) string {
	display, iso, complete := Mask(raw)
	f.display = display
	f.internal = iso
	if complete && f.OnComplete != nil {
		f.OnComplete(iso)
	}
	return display
}

// SetValue syncs the field from an external ISO or DD/MM/YYYY value.
func (f *Field) SetValue(v string) {
	switch {
	case v == "":
		f.display, f.internal = "", ""
	case strings.Contains(v, "-"):
		f.display, f.internal = localdate.ToLocal(v), v
	default:
		f.display, f.internal = v, localdate.ToISO(v)
	}
}

// Display returns the masked value shown to the user.
func (f *Field) Display() string { return f.display }

// Value returns the completed ISO date, or "" while fewer than eight digits
// are typed.
func (f *Field) Value() string { return f.internal }
