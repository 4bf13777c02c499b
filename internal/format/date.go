package format

import (
	"fmt"
	"time"
)

// Mode selects how Date renders a value.
type Mode int

const (
	// Short is the compact numeric form: 02/01/2006.
	Short Mode = iota
	// Long is the verbose form: 2 de enero de 2006.
	Long
	// Relative is Hoy, Ayer, Hace N días, ... relative to now.
	Relative
)

// Timestamper is implemented by timestamp wrappers that can produce a
// time.Time (for example timestamppb.Timestamp).
type Timestamper interface {
	AsTime() time.Time
}

// Date formats v with the current time as the reference for Relative.
func Date(v any, mode Mode) string {
	return DateAt(v, mode, time.Now())
}

// DateAt formats v in the given mode. v may be a time.Time, *time.Time, a
// Timestamper, or a string in RFC 3339 or YYYY-MM-DD form. Unknown or
// zero values render as "".
func DateAt(v any, mode Mode, now time.Time) string {
	t, ok := ToTime(v)
	if !ok {
		return ""
	}

	switch mode {
	case Long:
		return fmt.Sprintf("%d de %s de %d", t.Day(), monthNamesLower[t.Month()-1], t.Year())
	case Relative:
		return relative(t, now)
	default:
		return t.Format("02/01/2006")
	}
}

// ToTime extracts a time from the values accepted by DateAt.
func ToTime(v any) (time.Time, bool) {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		t = *d
	case Timestamper:
		t = d.AsTime()
	case string:
		parsed, err := time.Parse(time.RFC3339, d)
		if err != nil {
			parsed, err = time.Parse(time.DateOnly, d)
			if err != nil {
				return time.Time{}, false
			}
		}
		t = parsed
	default:
		return time.Time{}, false
	}
	if t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

const day = 24 * time.Hour

func relative(t, now time.Time) string {
	days := int(now.Sub(t) / day)
	switch {
	case days <= 0:
		// future dates count as today
		return "Hoy"
	case days == 1:
		return "Ayer"
	case days < 7:
		return fmt.Sprintf("Hace %d días", days)
	case days < 30:
		return plural(days/7, "semana", "semanas")
	case days < 365:
		return plural(days/30, "mes", "meses")
	default:
		return plural(days/365, "año", "años")
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("Hace 1 %s", one)
	}
	return fmt.Sprintf("Hace %d %s", n, many)
}
