package event

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	analytics "github.com/segmentio/analytics-go"
	"github.com/tidwall/gjson"
)

// Types of calls the integration handles.
const (
	Identify = "identify"
	Track    = "track"
)

// ErrMalformed is the cause of every error returned when an inbound event
// cannot be parsed.
var ErrMalformed = errors.New("malformed event")

// Event is a single identify or track call. It is never modified after it
// has been parsed, so it can be shared between goroutines.
type Event struct {
	kind string
	raw  []byte
	doc  map[string]interface{}
}

// Field is a key/value pair of an event mapping, with the value rendered as
// text.
type Field struct {
	Key   string
	Value string
}

// Parse reads an event whose kind is given by its "type" field.
func Parse(data []byte) (*Event, error) {
	return ParseAs(gjson.GetBytes(data, "type").String(), data)
}

// ParseAs reads an event of the given kind. If data carries a "type" field
// it must agree with kind.
func ParseAs(kind string, data []byte) (*Event, error) {
	if kind != Identify && kind != Track {
		return nil, errors.Wrapf(ErrMalformed, "unsupported event type %q", kind)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, errors.Wrap(ErrMalformed, "event is not a JSON object")
	}
	if t := gjson.GetBytes(data, "type"); t.Exists() && t.String() != kind {
		return nil, errors.Wrapf(ErrMalformed, "event type %q does not match %q", t.String(), kind)
	}

	var doc map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "cannot decode event: %v", err)
	}
	if _, ok := doc["type"]; !ok {
		doc["type"] = kind
	}

	e := &Event{
		kind: kind,
		raw:  append([]byte(nil), data...),
		doc:  doc,
	}
	if e.UserID() == "" && e.AnonymousID() == "" {
		return nil, errors.Wrap(ErrMalformed, "either userId or anonymousId is required")
	}
	if kind == Track && e.EventName() == "" {
		return nil, errors.Wrap(ErrMalformed, "track event has no event name")
	}
	return e, nil
}

// FromIdentify converts an analytics-go identify message.
func FromIdentify(msg analytics.Identify) (*Event, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal identify message")
	}
	return ParseAs(Identify, data)
}

// FromTrack converts an analytics-go track message.
func FromTrack(msg analytics.Track) (*Event, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal track message")
	}
	return ParseAs(Track, data)
}

// Type is either Identify or Track.
func (e *Event) Type() string { return e.kind }

// UserID returns the userId, or "" if there is none.
func (e *Event) UserID() string { return text(gjson.GetBytes(e.raw, "userId")) }

// AnonymousID returns the anonymousId, or "" if there is none.
func (e *Event) AnonymousID() string { return text(gjson.GetBytes(e.raw, "anonymousId")) }

// EventName returns the name of a track call.
func (e *Event) EventName() string { return text(gjson.GetBytes(e.raw, "event")) }

// Email returns the email address of the user, looked up the same way the
// analytics facades do it: traits (or properties for track calls), then
// context traits, and finally the userId if it is itself an email address.
func (e *Event) Email() string {
	paths := []string{"traits.email", "context.traits.email"}
	if e.kind == Track {
		paths = []string{"properties.email", "context.traits.email"}
	}
	if email, ok := e.Lookup(paths...); ok {
		return email
	}
	if id := e.UserID(); isEmail(id) {
		return id
	}
	return ""
}

// Lookup returns the first value present at one of the given dot paths.
// A value is present when it exists and is neither null nor an empty string.
// Numbers and booleans are returned as their JSON text, objects and arrays
// as compact JSON.
func (e *Event) Lookup(paths ...string) (string, bool) {
	for _, p := range paths {
		if v := text(gjson.GetBytes(e.raw, p)); v != "" {
			return v, true
		}
	}
	return "", false
}

// Traits returns the top-level traits in the order they appear in the
// event.
func (e *Event) Traits() []Field {
	var fields []Field
	gjson.GetBytes(e.raw, "traits").ForEach(func(k, v gjson.Result) bool {
		fields = append(fields, Field{Key: k.String(), Value: text(v)})
		return true
	})
	return fields
}

// Properties returns the top-level properties of a track call in the order
// they appear in the event.
func (e *Event) Properties() []Field {
	var fields []Field
	gjson.GetBytes(e.raw, "properties").ForEach(func(k, v gjson.Result) bool {
		fields = append(fields, Field{Key: k.String(), Value: text(v)})
		return true
	})
	return fields
}

// HasTrait reports whether the top-level traits contain key, whatever its
// value.
func (e *Event) HasTrait(key string) bool {
	traits, ok := e.doc["traits"].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = traits[key]
	return ok
}

// JSON returns the decoded event. The returned map is a shallow copy: it
// can be extended, but nested values must not be modified.
func (e *Event) JSON() map[string]interface{} {
	m := make(map[string]interface{}, len(e.doc))
	for k, v := range e.doc {
		m[k] = v
	}
	return m
}

// Raw returns the event as it was received.
func (e *Event) Raw() []byte {
	return append([]byte(nil), e.raw...)
}

func text(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return r.Str
	case gjson.JSON:
		var b bytes.Buffer
		if err := json.Compact(&b, []byte(r.Raw)); err != nil {
			return r.Raw
		}
		return b.String()
	default:
		return r.Raw
	}
}
