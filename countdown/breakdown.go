package countdown

import (
	"fmt"
	"strconv"
	"time"
)

// Breakdown is the calendar decomposition of the time remaining until
// launch. Years and months are whole calendar units; days and below are
// fixed-length remainders.
type Breakdown struct {
	Years    int  `json:"years"`
	Months   int  `json:"months"`
	Days     int  `json:"days"`
	Hours    int  `json:"hours"`
	Minutes  int  `json:"minutes"`
	Seconds  int  `json:"seconds"`
	Complete bool `json:"complete"`
}

// StepYears counts the whole calendar years between cursor and target.
// It repeatedly advances the cursor by one year (AddDate handles
// rollover of invalid dates such as Feb 29 in a non-leap year) for as
// long as the result does not pass target, and returns the count along
// with the advanced cursor.
func StepYears(cursor, target time.Time) (int, time.Time) {
	years := 0
	for {
		next := cursor.AddDate(1, 0, 0)
		if next.After(target) {
			return years, cursor
		}
		cursor = next
		years++
	}
}

// StepMonths counts the whole calendar months between cursor and target,
// in the same manner as StepYears. Months vary in length, so only
// calendar stepping gives a correct whole-month count.
func StepMonths(cursor, target time.Time) (int, time.Time) {
	months := 0
	for {
		next := cursor.AddDate(0, 1, 0)
		if next.After(target) {
			return months, cursor
		}
		cursor = next
		months++
	}
}

// Diff computes the calendar breakdown of target-now. Years and months
// are stripped off by calendar stepping; the remainder, strictly less
// than one calendar month, decomposes exactly by fixed ratios.
func Diff(now, target time.Time) Breakdown {
	if !target.After(now) {
		return Breakdown{Complete: true}
	}

	years, cursor := StepYears(now, target)
	months, cursor := StepMonths(cursor, target)

	rem := target.Sub(cursor)
	days := int(rem / (24 * time.Hour))
	rem -= time.Duration(days) * 24 * time.Hour
	hours := int(rem / time.Hour)
	rem -= time.Duration(hours) * time.Hour
	minutes := int(rem / time.Minute)
	rem -= time.Duration(minutes) * time.Minute
	seconds := int(rem / time.Second)

	return Breakdown{
		Years:   years,
		Months:  months,
		Days:    days,
		Hours:   hours,
		Minutes: minutes,
		Seconds: seconds,
	}
}

// Display is the breakdown formatted for rendering: every unit is
// two-digit zero-padded except years, which is printed as-is.
type Display struct {
	Years   string `json:"years"`
	Months  string `json:"months"`
	Days    string `json:"days"`
	Hours   string `json:"hours"`
	Minutes string `json:"minutes"`
	Seconds string `json:"seconds"`
}

// Display formats the breakdown for rendering.
func (b Breakdown) Display() Display {
	return Display{
		Years:   strconv.Itoa(b.Years),
		Months:  pad2(b.Months),
		Days:    pad2(b.Days),
		Hours:   pad2(b.Hours),
		Minutes: pad2(b.Minutes),
		Seconds: pad2(b.Seconds),
	}
}

func pad2(n int) string {
	return fmt.Sprintf("%02d", n)
}
