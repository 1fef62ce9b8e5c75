package simclock

import (
	"fmt"
	"math"
)

// HoursPerDay is the length of a simulated day.
const HoursPerDay = 24

var weekdays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Tick describes the simulated time at the moment it was published.
type Tick struct {
	Hours     float64
	Day       int
	HourOfDay float64
	Weekday   string
}

// At derives the calendar fields for hours.
func At(hours float64) Tick {
	d := DayOf(hours)
	return Tick{Hours: hours, Day: d, HourOfDay: HourOfDay(hours), Weekday: WeekdayOf(d)}
}

// DayOf returns the 1-based simulated day index.
func DayOf(hours float64) int {
	if hours < 0 {
		hours = 0
	}
	return int(math.Floor(hours/HoursPerDay)) + 1
}

// HourOfDay returns hours modulo one day.
func HourOfDay(hours float64) float64 {
	if hours < 0 {
		return 0
	}
	return math.Mod(hours, HoursPerDay)
}

// WeekdayOf returns the weekday name of a simulated day.
func WeekdayOf(day int) string {
	i := day % 7
	if i < 0 {
		i += 7
	}
	return weekdays[i]
}

// Weekdays lists the weekday names starting on Monday.
func Weekdays() []string {
	return []string{weekdays[1], weekdays[2], weekdays[3], weekdays[4], weekdays[5], weekdays[6], weekdays[0]}
}

// String renders the tick as "Day N (Weekday), HH:00".
func (t Tick) String() string {
	return fmt.Sprintf("Day %d (%s), %02d:00", t.Day, t.Weekday, int(t.HourOfDay))
}
