// Package settings holds the per-destination configuration of the Slack
// integration: where to post, which templates to use and which identify
// calls to forward.
package settings

import (
	"io/ioutil"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Whitelist modes.
const (
	WhiteListAll = "all"
	WhiteListAny = "any"
)

// identifyTemplatesKey is the key of IdentifyTemplates that applies to identify calls.
const identifyTemplatesKey = "identify"

// ErrMissingWebhookURL is reported when no webhook URL is configured.
var ErrMissingWebhookURL = errors.New("webhookUrl is required")

// Settings configures one Slack destination. It is read on every call and
// never modified after validation.
type Settings struct {
	WebhookURL        string            `json:"webhookUrl" yaml:"webhookUrl"`
	Channels          map[string]string `json:"channels,omitempty" yaml:"channels,omitempty"`
	Templates         map[string]string `json:"templates,omitempty" yaml:"templates,omitempty"`
	IdentifyTemplate  string            `json:"identifyTemplate,omitempty" yaml:"identifyTemplate,omitempty"`
	IdentifyTemplates map[string]string `json:"identifyTemplates,omitempty" yaml:"identifyTemplates,omitempty"`

	// WhiteListedTraits gates identify calls when it is non-nil. An empty,
	// non-nil list lets no identify call through.
	WhiteListedTraits []string `json:"whiteListedTraits,omitempty" yaml:"whiteListedTraits,omitempty"`
	// WhiteListMode is WhiteListAll (the default) or the legacy WhiteListAny.
	WhiteListMode string `json:"whiteListMode,omitempty" yaml:"whiteListMode,omitempty"`

	// Traits is accepted for compatibility with older settings and ignored.
	Traits []string `json:"traits,omitempty" yaml:"traits,omitempty"`

	RequireEmail bool `json:"requireEmail,omitempty" yaml:"requireEmail,omitempty"`
	Attachments  bool `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// ConfigurationError is returned by Validate.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "invalid settings: " + e.Err.Error()
}

// Load reads YAML settings from path and validates them.
func Load(path string) (*Settings, error) {
	s, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Read reads YAML settings from path without validating them, so they can
// be completed before use.
func Read(path string) (*Settings, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read settings file %s", path)
	}
	return decode(raw)
}

// Parse reads YAML (or JSON) settings and validates them.
func Parse(raw []byte) (*Settings, error) {
	s, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(raw []byte) (*Settings, error) {
	s := &Settings{}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, errors.Wrap(err, "cannot parse settings")
	}
	return s, nil
}

// Validate checks every option and reports all problems at once.
func (s *Settings) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(s.WebhookURL) == "" {
		result = multierror.Append(result, ErrMissingWebhookURL)
	}
	switch s.WhiteListMode {
	case "", WhiteListAll, WhiteListAny:
	default:
		result = multierror.Append(result, errors.Errorf("unknown whiteListMode %q", s.WhiteListMode))
	}
	for name, channel := range s.Channels {
		if strings.TrimSpace(channel) == "" {
			result = multierror.Append(result, errors.Errorf("empty channel for event %q", name))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return &ConfigurationError{Err: err}
	}
	return nil
}

// Channel returns the channel override for a track event, or "".
func (s *Settings) Channel(eventName string) string {
	return s.Channels[eventName]
}

// TrackTemplate returns the configured template for a track event, or "".
func (s *Settings) TrackTemplate(eventName string) string {
	return s.Templates[eventName]
}

// IdentifyTemplateSource returns the configured identify template, or "".
func (s *Settings) IdentifyTemplateSource() string {
	if s.IdentifyTemplate != "" {
		return s.IdentifyTemplate
	}
	return s.IdentifyTemplates[identifyTemplatesKey]
}

// WhiteListConfigured reports whether identify calls are gated.
func (s *Settings) WhiteListConfigured() bool {
	return s.WhiteListedTraits != nil
}
