package format

import (
	"strconv"
	"strings"
)

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

var monthNamesLower = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// MonthName renders a YYYY-MM key as "Enero 2025". A bare month number
// ("3") renders without a year. Invalid input renders as "".
func MonthName(key string) string {
	year, month, found := strings.Cut(key, "-")
	if !found {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return ""
		}
		return MonthNumberName(n)
	}
	n, err := strconv.Atoi(month)
	if err != nil {
		return ""
	}
	name := MonthNumberName(n)
	if name == "" {
		return ""
	}
	return name + " " + year
}

// MonthNumberName returns the month name for 1–12, or "".
func MonthNumberName(n int) string {
	if n < 1 || n > 12 {
		return ""
	}
	return monthNames[n-1]
}
