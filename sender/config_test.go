package sender_test

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weaveworks/integration-slack/sender"
)

func TestParsingEmptyFlagsShouldReturnDefaults(t *testing.T) {
	cfg := sender.Config{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(f)
	assert.NoError(t, f.Parse([]string{}))
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
}

func TestParsingFlagsShouldOverrideDefaults(t *testing.T) {
	cfg := sender.Config{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(f)
	assert.NoError(t, f.Parse([]string{"-webhook.timeout=1s", "-webhook.retry-delay=0s"}))
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, time.Duration(0), cfg.RetryDelay)
}
