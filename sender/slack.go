package sender

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/weaveworks/common/instrument"
)

var (
	webhookRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slack",
		Name:      "webhook_requests_total",
		Help:      "Total number of requests made to Slack webhooks.",
	}, []string{"status"})

	webhookRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "slack",
		Name:      "webhook_retries_total",
		Help:      "Total number of requests to Slack webhooks that were retried."})

	webhookDuration = instrument.NewHistogramCollector(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "slack",
		Name:      "webhook_duration_seconds",
		Help:      "Time spent posting to Slack webhooks.",
		Buckets:   prometheus.DefBuckets,
	}, instrument.HistogramCollectorBuckets))
)

func init() {
	prometheus.MustRegister(webhookRequests, webhookRetries)
	webhookDuration.Register()
}

// Config for the webhook sender.
type Config struct {
	Timeout    time.Duration
	RetryDelay time.Duration
}

// RegisterFlags adds the flags required to configure the sender.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.DurationVar(&c.Timeout, "webhook.timeout", 5*time.Second, "Timeout of a single request to the Slack webhook.")
	f.DurationVar(&c.RetryDelay, "webhook.retry-delay", 500*time.Millisecond, "Time to wait before retrying a failed request to the Slack webhook.")
}

// DeliveryError is returned when Slack did not accept a message.
type DeliveryError struct {
	// StatusCode is the HTTP status of the response, 0 if there was none.
	StatusCode int
	Retriable  bool
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to slack failed; status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to slack failed: %v", e.Err)
}

// httpStatusCode is implemented by the errors slack returns for non-200 responses.
type httpStatusCode interface {
	HTTPStatusCode() int
}

// SlackSender posts messages to Slack incoming webhooks. A request that
// fails with a retriable error is tried once more.
type SlackSender struct {
	client     *http.Client
	retryDelay time.Duration
}

// New returns a SlackSender configured by cfg.
func New(cfg Config) *SlackSender {
	return &SlackSender{
		client:     &http.Client{Timeout: cfg.Timeout},
		retryDelay: cfg.RetryDelay,
	}
}

// Send posts msg to the webhook at url.
func (s *SlackSender) Send(ctx context.Context, url string, msg *slack.WebhookMessage) error {
	err := s.post(ctx, url, msg)
	if err == nil {
		return nil
	}
	if derr, ok := err.(*DeliveryError); !ok || !derr.Retriable {
		return err
	}

	log.Debugf("retrying request to slack after error: %v", err)
	webhookRetries.Inc()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "cannot retry request to slack")
	case <-time.After(s.retryDelay):
	}
	return s.post(ctx, url, msg)
}

func (s *SlackSender) post(ctx context.Context, url string, msg *slack.WebhookMessage) error {
	return instrument.CollectedRequest(ctx, "Slack.PostWebhook", webhookDuration, nil, func(ctx context.Context) error {
		err := classify(ctx, slack.PostWebhookCustomHTTPContext(ctx, url, s.client, msg))
		webhookRequests.With(prometheus.Labels{"status": status(err)}).Inc()
		return err
	})
}

func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if sc, ok := err.(httpStatusCode); ok {
		code := sc.HTTPStatusCode()
		if code >= 200 && code < 300 {
			return nil
		}
		return &DeliveryError{
			StatusCode: code,
			Retriable:  code >= 500 || code == http.StatusTooManyRequests,
			Err:        err,
		}
	}
	if rl, ok := err.(*slack.RateLimitedError); ok {
		return &DeliveryError{StatusCode: http.StatusTooManyRequests, Retriable: true, Err: rl}
	}
	return &DeliveryError{
		Retriable: ctx.Err() == nil,
		Err:       errors.Wrap(err, "executing HTTP POST to Slack"),
	}
}

func status(err error) string {
	derr, ok := err.(*DeliveryError)
	switch {
	case err == nil:
		return "success"
	case ok && derr.StatusCode != 0:
		return fmt.Sprintf("%d", derr.StatusCode)
	default:
		return "error"
	}
}
