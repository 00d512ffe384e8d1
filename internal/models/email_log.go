package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailTypeClassOTP is the email carrying the shared class code to the teacher.
const EmailTypeClassOTP = "class_otp"

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records one delivery attempt.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	EmailType      string     `json:"emailType"`
	RecipientEmail string     `json:"recipientEmail"`
	Subject        string     `json:"subject,omitempty"`
	RequestedBy    string     `json:"requestedBy,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
