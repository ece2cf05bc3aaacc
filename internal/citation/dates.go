// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ContainsYears reports whether an ISO date string carries at least a year.
func ContainsYears(date string) bool { return len(date) >= 4 }

// ContainsMonths reports whether an ISO date string carries a month.
func ContainsMonths(date string) bool { return len(date) >= 7 }

// ContainsDays reports whether an ISO date string carries a day.
func ContainsDays(date string) bool { return len(date) >= 10 }

var durationPattern = regexp.MustCompile(`^-?P(?:([0-9]+)Y)?(?:([0-9]+)M)?(?:([0-9]+)D)?$`)

// ParseDate parses "YYYY", "YYYY-MM" or "YYYY-MM-DD". Missing components
// default to January and the first day.
func ParseDate(s string) (time.Time, error) {
	var layout string
	switch len(s) {
	case 4:
		layout = "2006"
	case 7:
		layout = "2006-01"
	case 10:
		layout = "2006-01-02"
	default:
		return time.Time{}, eris.Errorf("date %q: unsupported precision", s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "date %q", s)
	}
	return t, nil
}

// Reconcile brings two dates to the same precision by borrowing the missing
// month and day digits from whichever side has them. Both inputs must carry
// a year.
func Reconcile(citing, cited string) (string, string) {
	c1, c2 := citing, cited

	if ContainsMonths(citing) && !ContainsMonths(cited) {
		c2 += citing[4:7]
	} else if !ContainsMonths(citing) && ContainsMonths(cited) {
		c1 += cited[4:7]
	}

	if ContainsDays(citing) && !ContainsDays(cited) {
		c2 += citing[7:10]
	} else if !ContainsDays(citing) && ContainsDays(cited) {
		c1 += cited[7:10]
	}

	return c1, c2
}

// Duration returns the signed ISO 8601 duration from cited to citing.
// Months and days appear only when both original dates carry them.
func Duration(citing, cited string) (string, error) {
	if !ContainsYears(citing) || !ContainsYears(cited) {
		return "", eris.Errorf("duration needs two dated entities, got %q and %q", citing, cited)
	}
	considerMonths := ContainsMonths(citing) && ContainsMonths(cited)
	considerDays := ContainsDays(citing) && ContainsDays(cited)

	c1, c2 := Reconcile(citing, cited)
	t1, err := ParseDate(c1)
	if err != nil {
		return "", err
	}
	t2, err := ParseDate(c2)
	if err != nil {
		return "", err
	}

	d := between(t1, t2)

	var b strings.Builder
	if d.years < 0 ||
		(d.years == 0 && d.months < 0 && considerMonths) ||
		(d.years == 0 && d.months == 0 && d.days < 0 && considerDays) {
		b.WriteByte('-')
	}
	fmt.Fprintf(&b, "P%dY", abs(d.years))
	if considerMonths {
		fmt.Fprintf(&b, "%dM", abs(d.months))
	}
	if considerDays {
		fmt.Fprintf(&b, "%dD", abs(d.days))
	}
	return b.String(), nil
}

// CitedDate inverts Duration: it subtracts duration from the creation date
// (or adds it when the duration is negative). The result is cut to the
// precision that the duration and the creation date support.
func CitedDate(creation, duration string) (string, error) {
	m := durationPattern.FindStringSubmatch(duration)
	if m == nil {
		return "", eris.Errorf("duration %q is not ISO 8601", duration)
	}
	t, err := ParseDate(creation)
	if err != nil {
		return "", err
	}

	var d delta
	d.years = atoi(m[1])
	d.months = atoi(m[2])
	d.days = atoi(m[3])
	if !strings.HasPrefix(duration, "-") {
		d = d.neg()
	}
	res := d.addTo(t).Format("2006-01-02")

	cut := 4
	switch {
	case strings.Contains(duration, "D") || ContainsDays(creation):
		cut = 10
	case strings.Contains(duration, "M") || ContainsMonths(creation):
		cut = 7
	}
	return res[:cut], nil
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// delta is a calendar difference: years and months are applied first with
// the day clamped to the end of the month, then days.
type delta struct {
	years, months, days int
}

func (d delta) neg() delta {
	return delta{-d.years, -d.months, -d.days}
}

func (d delta) addTo(t time.Time) time.Time {
	return addMonths(t, d.years*12+d.months).AddDate(0, 0, d.days)
}

// addMonths shifts t by n months, clamping the day to the target month.
func addMonths(t time.Time, n int) time.Time {
	total := t.Year()*12 + int(t.Month()) - 1 + n
	y, m := floorDiv(total, 12), total-floorDiv(total, 12)*12+1
	day := min(t.Day(), daysIn(y, time.Month(m)))
	return time.Date(y, time.Month(m), day, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// between returns the calendar difference a - b such that
// b + result == a, with years and months sharing a sign.
func between(a, b time.Time) delta {
	months := (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
	at := addMonths(b, months)
	if a.Before(b) {
		for a.After(at) {
			months++
			at = addMonths(b, months)
		}
	} else {
		for a.Before(at) {
			months--
			at = addMonths(b, months)
		}
	}
	days := int(a.Sub(at).Hours() / 24)
	return delta{years: months / 12, months: months % 12, days: days}
}
