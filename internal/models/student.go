package models

import "time"

// Student is a row of the student directory.
type Student struct {
	RegisterNo   string    `json:"registerNo"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	DOB          time.Time `json:"dob"`
	Grade        float64   `json:"grade"`      // CGPA
	Attendance   int       `json:"attendance"` // percentage, recomputed after each redemption
	Courses      int       `json:"courses"`
	Fees         int       `json:"fees"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StudentPublic is what login returns about the student.
type StudentPublic struct {
	RegisterNo string `json:"registerNo"`
	Name       string `json:"name"`
}

// ToPublic converts Student to StudentPublic.
func (s *Student) ToPublic() StudentPublic {
	return StudentPublic{RegisterNo: s.RegisterNo, Name: s.Name}
}
