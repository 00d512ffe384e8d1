package classotp

import "errors"

// Redemption and issuance failures. Each one is reported to the client with its own message.
var (
	ErrMissingFields   = errors.New("register number and code are required")
	ErrStudentNotFound = errors.New("student not found")
	ErrNoActiveCode    = errors.New("no class code available")
	ErrCodeExpired     = errors.New("class code expired")
	ErrInvalidCode     = errors.New("invalid class code")
	ErrAlreadyRedeemed = errors.New("class code already redeemed by this student")
	ErrAlreadyMarked   = errors.New("attendance already marked for today")
	ErrOutOfWindow     = errors.New("outside attendance hours")
	ErrDeliveryFailed  = errors.New("class code delivery failed")
	errSessionReplaced = errors.New("class code session replaced")
)
