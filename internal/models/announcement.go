package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement types.
const (
	AnnouncementGeneral  = "general"
	AnnouncementAcademic = "academic"
	AnnouncementHoliday  = "holiday"
	AnnouncementExam     = "exam"
	AnnouncementUrgent   = "urgent"
)

// Announcement priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Announcement is a notice shown on the student home screen until it expires.
type Announcement struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	Date      time.Time `json:"date"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidAnnouncementType reports whether t is a known announcement type.
func ValidAnnouncementType(t string) bool {
	switch t {
	case AnnouncementGeneral, AnnouncementAcademic, AnnouncementHoliday, AnnouncementExam, AnnouncementUrgent:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
