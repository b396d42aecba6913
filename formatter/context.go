package formatter

import (
	"bytes"

	"github.com/weaveworks/integration-slack/event"
)

// Context returns the data templates are rendered against: the event itself
// plus the resolved name, the email address when there is one, and for
// identify calls the traits as text.
func Context(e *event.Event) map[string]interface{} {
	ctx := e.JSON()
	ctx["name"] = event.ResolveName(e)
	if email := e.Email(); email != "" {
		ctx["email"] = email
	}
	if e.Type() == event.Identify {
		ctx["traits"] = TraitsText(e)
	}
	return ctx
}

// TraitsText lists the traits of e one "key: value" per line, in the order
// they appear in the event. It is empty when there are no traits.
func TraitsText(e *event.Event) string {
	var b bytes.Buffer
	for _, f := range e.Traits() {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	return b.String()
}
