package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance statuses.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// MarkedWithClassOTP tags records created by redeeming the shared class code.
const MarkedWithClassOTP = "class-otp"

// DateLayout is the calendar-day format used for attendance dates.
const DateLayout = "2006-01-02"

// AttendanceRecord is one student's attendance for one day. (RegisterNo, Date) is unique.
type AttendanceRecord struct {
	ID          uuid.UUID `json:"id"`
	RegisterNo  string    `json:"registerNo"`
	StudentName string    `json:"name"`
	Date        string    `json:"date"` // DateLayout
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	MarkedWith  string    `json:"markedWith"`
}
