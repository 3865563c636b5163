package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

func TestSecurityConfig_Mechanism(t *testing.T) {
	m, err := SecurityConfig{}.mechanism()
	require.NoError(t, err)
	assert.Nil(t, m)

	for name, want := range map[string]string{
		"PLAIN":         "PLAIN",
		"SCRAM-SHA-256": "SCRAM-SHA-256",
		"SCRAM-SHA-512": "SCRAM-SHA-512",
	} {
		m, err := SecurityConfig{SASLEnabled: true, SASLMechanism: name, SASLUsername: "u", SASLPassword: "p"}.mechanism()
		require.NoError(t, err, name)
		assert.Equal(t, want, m.Name())
	}

	_, err = SecurityConfig{SASLEnabled: true, SASLMechanism: "GSSAPI"}.mechanism()
	assert.True(t, errors.IsValidation(err))
}

func TestSecurityConfig_TLS(t *testing.T) {
	assert.Nil(t, SecurityConfig{}.tlsConfig())

	cfg := SecurityConfig{TLSEnabled: true, TLSCertPath: "/nonexistent/ca.pem"}.tlsConfig()
	require.NotNil(t, cfg)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestRetryConfig_Backoff(t *testing.T) {
	r := RetryConfig{RetryBackoff: 100 * time.Millisecond, MaxRetryBackoff: 300 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, r.backoff(0))
	assert.Equal(t, 200*time.Millisecond, r.backoff(1))
	assert.Equal(t, 300*time.Millisecond, r.backoff(5))
	assert.Equal(t, time.Second, RetryConfig{}.backoff(0))
}

//Personal.AI order the ending
