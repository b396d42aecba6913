// Package formatter builds the Slack message posted for an event.
package formatter

import (
	"fmt"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/weaveworks/integration-slack/event"
	"github.com/weaveworks/integration-slack/render"
	"github.com/weaveworks/integration-slack/settings"
)

// Fixed parts of every message.
const (
	Username   = "Segment"
	IconURL    = "https://logo.clearbit.com/segment.com"
	AuthorLink = "https://segment.com"
)

// Templates used when the settings don't configure one.
const (
	DefaultTrackTemplate    = "{{name}} did {{event}}."
	DefaultIdentifyTemplate = "Identified {{name}}. \n{{traits}}"
)

// TemplateError is returned when a template cannot be compiled or rendered.
// It is a client error: retrying won't help until the settings are fixed.
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("cannot render template %q: %v", e.Template, e.Err)
}

// StatusCode is the HTTP status reported for the error.
func (e *TemplateError) StatusCode() int {
	return http.StatusBadRequest
}

// Formatter renders events with an injected template engine.
type Formatter struct {
	engine render.Engine
}

// New returns a Formatter rendering with engine.
func New(engine render.Engine) *Formatter {
	return &Formatter{engine: engine}
}

// Format renders e into the message posted to the webhook of s.
func (f *Formatter) Format(e *event.Event, s *settings.Settings) (msg *slack.WebhookMessage, err error) {
	source := TemplateFor(e, s)
	defer func() {
		if r := recover(); r != nil {
			msg, err = nil, &TemplateError{Template: source, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	tpl, err := f.engine.Compile(source)
	if err != nil {
		return nil, &TemplateError{Template: source, Err: err}
	}
	text, err := tpl.Render(Context(e))
	if err != nil {
		return nil, &TemplateError{Template: source, Err: err}
	}

	msg = &slack.WebhookMessage{
		Text:     render.Decode(text),
		Username: Username,
		IconURL:  IconURL,
	}
	if e.Type() == event.Track {
		msg.Channel = s.Channel(e.EventName())
	}
	if s.Attachments {
		att, err := Attachment(e)
		if err != nil {
			return nil, err
		}
		msg.Attachments = []slack.Attachment{att}
	}
	return msg, nil
}

// TemplateFor picks the configured template for e, or the default one.
func TemplateFor(e *event.Event, s *settings.Settings) string {
	if e.Type() == event.Identify {
		if t := s.IdentifyTemplateSource(); t != "" {
			return t
		}
		return DefaultIdentifyTemplate
	}
	if t := s.TrackTemplate(e.EventName()); t != "" {
		return t
	}
	return DefaultTrackTemplate
}
