package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValidate(t *testing.T) {
	svc := NewJWTService("secret", 1)

	token, err := svc.Generate("24UCSE001", "Asha")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "24UCSE001", claims.RegisterNo)
	assert.Equal(t, "Asha", claims.Name)
}

func TestValidateRejects(t *testing.T) {
	svc := NewJWTService("secret", 1)
	good, err := svc.Generate("24UCSE001", "Asha")
	require.NoError(t, err)

	other, err := NewJWTService("other-secret", 1).Generate("24UCSE001", "Asha")
	require.NoError(t, err)

	expiredSvc := NewJWTService("secret", 1)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.Generate("24UCSE001", "Asha")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: other},
		{name: "expired", token: expired},
		{name: "tampered", token: good + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
