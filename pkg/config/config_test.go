package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubscriber() SubscriberConfig {
	return SubscriberConfig{
		Stream:   "PRODUCTS",
		Subject:  "products.created",
		Consumer: "notification",
		Batch:    10,
		Timeout:  time.Second,
		Interval: time.Second,
		Workers:  2,
	}
}

func TestSubscriberConfig_Validate(t *testing.T) {
	testCases := []struct {
		name          string
		modify        func(c *SubscriberConfig)
		expectedError string
	}{
		{name: "valid", modify: func(*SubscriberConfig) {}},
		{name: "missing stream", modify: func(c *SubscriberConfig) { c.Stream = "" }, expectedError: "subscriber stream is not configured"},
		{name: "missing consumer", modify: func(c *SubscriberConfig) { c.Consumer = "" }, expectedError: "subscriber consumer is not configured"},
		{name: "zero batch", modify: func(c *SubscriberConfig) { c.Batch = 0 }, expectedError: "subscriber batch must be greater than zero"},
		{name: "negative interval", modify: func(c *SubscriberConfig) { c.Interval = -time.Second }, expectedError: "subscriber interval must be greater than zero"},
		{name: "no workers", modify: func(c *SubscriberConfig) { c.Workers = 0 }, expectedError: "subscriber workers must be greater than zero"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			cfg := validSubscriber()
			tc.modify(&cfg)

			// when
			err := cfg.Validate()

			// then
			if tc.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.expectedError)
		})
	}
}

func TestNATSConfig_Validate(t *testing.T) {
	// given
	missing := NATSConfig{}
	defaulted := NATSConfig{Url: "nats://localhost:4222"}

	// when
	missingErr := missing.Validate()
	defaultedErr := defaulted.Validate()

	// then
	assert.EqualError(t, missingErr, "nats url is not configured")
	require.NoError(t, defaultedErr)
	assert.Equal(t, 5*time.Second, defaulted.Timeout)
}

func TestPProfAndShutdown_Validate(t *testing.T) {
	assert.NoError(t, (&PProfConfig{}).Validate())
	assert.EqualError(t, (&PProfConfig{Enabled: true}).Validate(), "pprof is enabled but addr is not configured")
	assert.NotContains(t, (&PProfConfig{Addr: ":6060"}).String(), "addr")
	assert.Contains(t, (&PProfConfig{Enabled: true, Addr: ":6060"}).String(), "addr: :6060")

	assert.EqualError(t, (&ShutdownConfig{}).Validate(), "shutdown timeout must be greater than zero, got 0s")
	assert.NoError(t, (&ShutdownConfig{Timeout: 5 * time.Second}).Validate())
}
