// Package notify delivers the class code to the teacher-facing channel.
package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"
	"time"
)

// ClassCodeNotice is what the teacher receives when a new class code is issued.
type ClassCodeNotice struct {
	Code          string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	RequestedBy   string // register number of the requesting student
	RequesterName string
}

// Notifier delivers a class code notice. Send must honor ctx cancellation.
type Notifier interface {
	Send(ctx context.Context, n ClassCodeNotice) error
}

// Message is a rendered notice.
type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

const textBody = `TODAY'S CLASS VERIFICATION CODE

{{.Code}}

Valid for: entire class (all students)
Expires at: {{.ExpiresAt.Format "15:04:05"}}
Duration: {{.Minutes}} minutes
Requested by: {{.RequestedBy}} - {{.RequesterName}}

Announce this code to the class once. It expires automatically.
Generated at: {{.IssuedAt.Format "02/01/2006 15:04:05"}}
`

const htmlBody = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px;">
    <h1 style="color: #2E86AB;">{{.College}}</h1>
    <p>Class Attendance Verification System</p>
    <h2>Today's class verification code</h2>
    <p><strong>Share this code with the entire class.</strong></p>
    <div style="font-size: 42px; font-weight: bold; color: #2E86AB; text-align: center; letter-spacing: 8px; border: 3px dashed #2E86AB; padding: 20px;">{{.Code}}</div>
    <p><strong>Valid for:</strong> entire class (all students)</p>
    <p><strong>Expires at:</strong> {{.ExpiresAt.Format "15:04:05"}}</p>
    <p><strong>Duration:</strong> {{.Minutes}} minutes</p>
    <p><strong>Requested by:</strong> {{.RequestedBy}} - {{.RequesterName}}</p>
    <p>Announce this code to the class once. It expires automatically.</p>
    <p style="color: #666; font-size: 12px;">Generated at: {{.IssuedAt.Format "02/01/2006 15:04:05"}}</p>
  </div>
</body>
</html>
`

var (
	textTmpl = texttmpl.Must(texttmpl.New("class_otp.txt").Option("missingkey=error").Parse(textBody))
	htmlTmpl = htmltmpl.Must(htmltmpl.New("class_otp.gohtml").Option("missingkey=error").Parse(htmlBody))
)

type templateData struct {
	ClassCodeNotice
	College string
	Minutes int
}

// Render builds the email sent to the teacher. Times are shown in loc.
func Render(n ClassCodeNotice, to mail.Address, college string, loc *time.Location) (*Message, error) {
	if loc == nil {
		loc = time.Local
	}
	n.IssuedAt = n.IssuedAt.In(loc)
	n.ExpiresAt = n.ExpiresAt.In(loc)
	data := templateData{
		ClassCodeNotice: n,
		College:         college,
		Minutes:         int(n.ExpiresAt.Sub(n.IssuedAt).Round(time.Minute).Minutes()),
	}

	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return &Message{
		To:      to,
		Subject: "CLASS ATTENDANCE OTP - " + n.IssuedAt.Format("02/01/2006"),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
