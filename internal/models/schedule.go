package models

import "time"

// Period is one slot of a day's timetable. Times are "HH:MM" on a 24-hour clock.
type Period struct {
	PeriodNumber int    `json:"periodNumber"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Subject      string `json:"subject"`
	Faculty      string `json:"faculty"`
	Room         string `json:"room"`
}

// DaySchedule is the timetable of one weekday, periods ordered by number.
type DaySchedule struct {
	Day     string   `json:"day"`
	Periods []Period `json:"periods"`
}

// ClassDays are the weekdays with a timetable. Sunday has none.
var ClassDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

// IsClassDay reports whether day names a weekday with a timetable.
func IsClassDay(day string) bool {
	for _, d := range ClassDays {
		if d.String() == day {
			return true
		}
	}
	return false
}
