// Package integration forwards identify and track calls to a Slack
// incoming webhook.
package integration

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/weaveworks/integration-slack/event"
	"github.com/weaveworks/integration-slack/formatter"
	"github.com/weaveworks/integration-slack/gate"
	"github.com/weaveworks/integration-slack/settings"
)

var eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "slack",
	Name:      "events_total",
	Help:      "Total number of events handled, by type and outcome.",
}, []string{"type", "outcome"})

func init() {
	prometheus.MustRegister(eventsTotal)
}

// Outcomes of a call.
const (
	outcomeSent     = "sent"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid"
	outcomeFailed   = "failed"
)

// Integration is a destination for analytics calls.
type Integration interface {
	Identify(ctx context.Context, e *event.Event) error
	Track(ctx context.Context, e *event.Event) error
}

// Sender delivers a message to a webhook.
type Sender interface {
	Send(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// Slack is the Slack destination.
type Slack struct {
	settings  *settings.Settings
	formatter *formatter.Formatter
	sender    Sender
}

var _ Integration = &Slack{}

// New returns a Slack integration. The settings are validated here and must
// not be modified afterwards.
func New(s *settings.Settings, f *formatter.Formatter, snd Sender) (*Slack, error) {
	if s == nil {
		return nil, &settings.ConfigurationError{Err: settings.ErrMissingWebhookURL}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Slack{settings: s, formatter: f, sender: snd}, nil
}

// Identify posts an identify call, unless the gate rejects it.
func (s *Slack) Identify(ctx context.Context, e *event.Event) error {
	if e.Type() != event.Identify {
		return errors.Wrapf(event.ErrMalformed, "identify called with a %s event", e.Type())
	}
	if err := gate.ShouldSend(e, s.settings); err != nil {
		s.done(e, outcomeRejected, err)
		return err
	}
	return s.send(ctx, e)
}

// Track posts a track call.
func (s *Slack) Track(ctx context.Context, e *event.Event) error {
	if e.Type() != event.Track {
		return errors.Wrapf(event.ErrMalformed, "track called with a %s event", e.Type())
	}
	return s.send(ctx, e)
}

// Dispatch calls Identify or Track depending on the type of e.
func Dispatch(ctx context.Context, i Integration, e *event.Event) error {
	switch e.Type() {
	case event.Identify:
		return i.Identify(ctx, e)
	case event.Track:
		return i.Track(ctx, e)
	}
	return errors.Wrapf(event.ErrMalformed, "unsupported event type %q", e.Type())
}

func (s *Slack) send(ctx context.Context, e *event.Event) error {
	msg, err := s.formatter.Format(e, s.settings)
	if err != nil {
		s.done(e, outcomeInvalid, err)
		return err
	}
	if err := s.sender.Send(ctx, s.settings.WebhookURL, msg); err != nil {
		s.done(e, outcomeFailed, err)
		return errors.Wrapf(err, "cannot send %s to slack", e.Type())
	}
	s.done(e, outcomeSent, nil)
	return nil
}

func (s *Slack) done(e *event.Event, outcome string, err error) {
	eventsTotal.With(prometheus.Labels{"type": e.Type(), "outcome": outcome}).Inc()

	entry := log.WithFields(log.Fields{
		"type":        e.Type(),
		"event":       e.EventName(),
		"userId":      e.UserID(),
		"anonymousId": e.AnonymousID(),
		"outcome":     outcome,
	})
	switch outcome {
	case outcomeSent:
		entry.Debug("sent event to slack")
	case outcomeFailed:
		entry.Errorf("cannot send event to slack: %v", err)
	default:
		// Warning because it must be user error and shouldn't trigger the alerts
		entry.Warnf("event not sent to slack: %v", err)
	}
}

// IsRejection reports whether err means the call was deliberately not
// sent.
func IsRejection(err error) bool {
	_, ok := errors.Cause(err).(*gate.Rejection)
	return ok
}
