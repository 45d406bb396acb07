// Package timefmt computes human-readable elapsed-time labels for the
// dashboard ("time since the last collection"). It is pure: no I/O, and the
// reference clock is injectable for tests.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fixed labels returned by Elapsed. The dashboard renders these verbatim.
const (
	// Unknown is returned when either timestamp cannot be parsed.
	Unknown = "—"
	// Impossible is returned when start is after end.
	Impossible = "impossível informar horário"
	// Now is returned for a zero whole-minute difference.
	Now = "Agora"
)

// Elapsed returns a label for the time between two textual timestamps,
// evaluated against the current clock (bare times anchor to today).
func Elapsed(start, end string) string {
	return ElapsedAt(time.Now(), start, end)
}

// ElapsedAt is Elapsed with an explicit reference time, used to anchor bare
// "HH:MM:SS" inputs to a calendar date.
//
// Tolerated layouts on either side: "DD/MM/YYYY[ HH:MM[:SS]]",
// "YYYY-MM-DD[ HH:MM[:SS]]", bare "HH:MM[:SS]" (today), bare date (midnight).
// Unparseable input yields Unknown; start after end yields Impossible; a
// difference under one whole minute yields Now; anything else renders as
// "Há {h}h {m}min" with both fields always present.
func ElapsedAt(ref time.Time, start, end string) string {
	d1, ok1 := parseFlexible(ref, start)
	d2, ok2 := parseFlexible(ref, end)
	if !ok1 || !ok2 {
		return Unknown
	}
	if d1.After(d2) {
		return Impossible
	}

	totalMin := int(d2.Sub(d1).Minutes())
	hours := totalMin / 60
	mins := totalMin % 60
	if hours == 0 && mins == 0 {
		return Now
	}
	return fmt.Sprintf("Há %dh %dmin", hours, mins)
}

// parseFlexible interprets the loose timestamp formats the original device
// and database emit. The reference time supplies the date for bare times.
func parseFlexible(ref time.Time, raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if left, right, found := strings.Cut(s, " "); found {
		y, mo, d, ok := parseDatePart(left)
		if !ok {
			return time.Time{}, false
		}
		h, mi, sec, ok := parseTimePart(right)
		if !ok {
			return time.Time{}, false
		}
		return time.Date(y, time.Month(mo), d, h, mi, sec, 0, ref.Location()), true
	}

	if strings.ContainsAny(s, "/-") {
		y, mo, d, ok := parseDatePart(s)
		if !ok {
			return time.Time{}, false
		}
		return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, ref.Location()), true
	}

	if strings.Contains(s, ":") {
		h, mi, sec, ok := parseTimePart(s)
		if !ok {
			return time.Time{}, false
		}
		return time.Date(ref.Year(), ref.Month(), ref.Day(), h, mi, sec, 0, ref.Location()), true
	}

	return time.Time{}, false
}

// parseDatePart accepts "DD/MM/YYYY" or "YYYY-MM-DD".
func parseDatePart(s string) (year, month, day int, ok bool) {
	switch {
	case strings.Contains(s, "/"):
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return 0, 0, 0, false
		}
		d, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		y, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, 0, 0, false
		}
		return y, m, d, true
	case strings.Contains(s, "-"):
		parts := strings.Split(s, "-")
		if len(parts) != 3 {
			return 0, 0, 0, false
		}
		y, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		d, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, 0, 0, false
		}
		return y, m, d, true
	}
	return 0, 0, 0, false
}

// parseTimePart accepts "HH:MM:SS" or "HH:MM"; missing seconds are zero.
func parseTimePart(s string) (hour, min, sec int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, false
	}
	var ss int
	if len(parts) == 3 {
		if ss, err = strconv.Atoi(parts[2]); err != nil {
			return 0, 0, 0, false
		}
	}
	return h, m, ss, true
}
