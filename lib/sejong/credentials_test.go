package sejong

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredentialsValidate(t *testing.T) {
	cases := []struct {
		name  string
		creds Credentials
		valid bool
	}{
		{name: "valid", creds: Credentials{StudentId: "20012345", Password: "password"}, valid: true},
		{name: "blank student id", creds: Credentials{StudentId: "", Password: "password"}},
		{name: "whitespace student id", creds: Credentials{StudentId: "  \t", Password: "password"}},
		{name: "blank password", creds: Credentials{StudentId: "20012345", Password: ""}},
		{name: "whitespace password", creds: Credentials{StudentId: "20012345", Password: "   "}},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			err := test.creds.Validate()
			if test.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCredentialsRedacted(t *testing.T) {
	creds := Credentials{StudentId: "20012345", Password: "hunter2"}
	require.NotContains(t, fmt.Sprint(creds), "hunter2")
	require.NotContains(t, fmt.Sprintf("%+v", creds), "hunter2")
	require.NotContains(t, creds.LogValue().String(), "hunter2")
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{TimeoutSeconds: 3}.WithDefaults()
	require.True(t, cfg.VerifySsl())
	require.Equal(t, 3, cfg.TimeoutSeconds)
	require.Equal(t, 3, cfg.MaxRetry)
	require.Equal(t, DefaultPortalLoginUrl, cfg.PortalLoginUrl)

	verify := false
	cfg = Config{SslVerification: &verify}.WithDefaults()
	require.False(t, cfg.VerifySsl())
	require.Equal(t, 10, cfg.TimeoutSeconds)
}
