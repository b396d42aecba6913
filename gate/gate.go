// Package gate decides whether an identify call is forwarded to Slack at
// all. It runs before any formatting and never touches the network.
package gate

import (
	"fmt"
	"strings"

	"github.com/weaveworks/integration-slack/event"
	"github.com/weaveworks/integration-slack/settings"
)

// Rejection is returned for calls that must not be sent. It is not
// retriable.
type Rejection struct {
	Reason  string
	Missing []string
}

func (r *Rejection) Error() string {
	if len(r.Missing) == 0 {
		return r.Reason
	}
	return fmt.Sprintf("%s: %s", r.Reason, strings.Join(r.Missing, ", "))
}

// Metadata is included in API error responses.
func (r *Rejection) Metadata() map[string]interface{} {
	m := map[string]interface{}{"reason": r.Reason}
	if len(r.Missing) > 0 {
		m["missing"] = r.Missing
	}
	return m
}

// Rule checks the traits of an identify call against a whitelist.
type Rule func(e *event.Event, whitelist []string) *Rejection

// RequireAll lets a call through only if its traits contain every
// whitelisted key.
func RequireAll(e *event.Event, whitelist []string) *Rejection {
	var missing []string
	for _, k := range whitelist {
		if !e.HasTrait(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &Rejection{Reason: "missing whitelisted traits", Missing: missing}
	}
	return nil
}

// RequireAny lets a call through if its traits contain at least one
// whitelisted key. Older settings relied on this behaviour; it is only used
// when asked for explicitly.
func RequireAny(e *event.Event, whitelist []string) *Rejection {
	for _, k := range whitelist {
		if e.HasTrait(k) {
			return nil
		}
	}
	return &Rejection{Reason: "no whitelisted traits", Missing: whitelist}
}

// RuleFor returns the whitelist rule selected by s.
func RuleFor(s *settings.Settings) Rule {
	if s.WhiteListMode == settings.WhiteListAny {
		return RequireAny
	}
	return RequireAll
}

// ShouldSend returns nil if e may be sent, or the reason it may not.
// Only identify calls are ever rejected.
func ShouldSend(e *event.Event, s *settings.Settings) error {
	if e.Type() != event.Identify {
		return nil
	}
	if s.RequireEmail && e.Email() == "" {
		return &Rejection{Reason: "no email"}
	}
	if !s.WhiteListConfigured() {
		return nil
	}
	if len(s.WhiteListedTraits) == 0 {
		return &Rejection{Reason: "whitelist is empty"}
	}
	if r := RuleFor(s)(e, s.WhiteListedTraits); r != nil {
		return r
	}
	return nil
}
