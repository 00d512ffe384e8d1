package notify

import (
	"context"
	"errors"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtn-college/attendance-backend/internal/models"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func sampleNotice() ClassCodeNotice {
	issued := time.Date(2026, 10, 14, 10, 0, 0, 0, ist)
	return ClassCodeNotice{
		Code:          "482913",
		IssuedAt:      issued,
		ExpiresAt:     issued.Add(30 * time.Minute),
		RequestedBy:   "24UCSE001",
		RequesterName: "Asha",
	}
}

func TestRender(t *testing.T) {
	to := mail.Address{Name: "Class Teacher", Address: "teacher@example.com"}
	msg, err := Render(sampleNotice(), to, "GTN ARTS COLLEGE", ist)
	require.NoError(t, err)

	assert.Equal(t, to, msg.To)
	assert.Equal(t, "CLASS ATTENDANCE OTP - 14/10/2026", msg.Subject)
	assert.Contains(t, msg.Text, "482913")
	assert.Contains(t, msg.Text, "Expires at: 10:30:00")
	assert.Contains(t, msg.Text, "Duration: 30 minutes")
	assert.Contains(t, msg.Text, "24UCSE001 - Asha")
	assert.Contains(t, msg.HTML, "482913")
	assert.Contains(t, msg.HTML, "GTN ARTS COLLEGE")
}

func TestRenderEscapesHTML(t *testing.T) {
	n := sampleNotice()
	n.RequesterName = "<script>x</script>"
	msg, err := Render(n, mail.Address{Address: "t@example.com"}, "GTN", ist)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestConsoleHonorsCancel(t *testing.T) {
	c := NewConsole(mail.Address{Address: "t@example.com"}, "GTN", ist, nil)
	require.NoError(t, c.Send(context.Background(), sampleNotice()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Send(ctx, sampleNotice()), context.Canceled)
}

type notifierFunc func(ctx context.Context, n ClassCodeNotice) error

func (f notifierFunc) Send(ctx context.Context, n ClassCodeNotice) error { return f(ctx, n) }

type memLogStore struct {
	logs []*models.EmailLog
	err  error
}

func (m *memLogStore) Create(_ context.Context, el *models.EmailLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, el)
	return nil
}

func TestLoggedRecordsOutcome(t *testing.T) {
	store := &memLogStore{}
	ok := NewLogged(notifierFunc(func(context.Context, ClassCodeNotice) error { return nil }), store, "teacher@example.com", nil)
	require.NoError(t, ok.Send(context.Background(), sampleNotice()))

	boom := errors.New("smtp down")
	failing := NewLogged(notifierFunc(func(context.Context, ClassCodeNotice) error { return boom }), store, "teacher@example.com", nil)
	assert.ErrorIs(t, failing.Send(context.Background(), sampleNotice()), boom)

	require.Len(t, store.logs, 2)
	assert.Equal(t, models.EmailLogStatusSent, store.logs[0].Status)
	assert.NotNil(t, store.logs[0].SentAt)
	assert.Equal(t, "24UCSE001", store.logs[0].RequestedBy)
	assert.Equal(t, models.EmailLogStatusFailed, store.logs[1].Status)
	assert.Equal(t, "smtp down", store.logs[1].ErrorMessage)
	assert.Nil(t, store.logs[1].SentAt)
}

func TestLoggedIgnoresLogStoreFailure(t *testing.T) {
	store := &memLogStore{err: errors.New("db down")}
	l := NewLogged(notifierFunc(func(context.Context, ClassCodeNotice) error { return nil }), store, "t@example.com", nil)
	assert.NoError(t, l.Send(context.Background(), sampleNotice()))
}
