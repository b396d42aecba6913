package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/integration-slack/event"
	"github.com/weaveworks/integration-slack/gate"
	"github.com/weaveworks/integration-slack/settings"
)

func mustParse(t *testing.T, data string) *event.Event {
	e, err := event.Parse([]byte(data))
	require.NoError(t, err)
	return e
}

func TestShouldSend(t *testing.T) {
	withPlan := mustParse(t, `{"type":"identify","userId":"u1","traits":{"plan":"pro","email":"a@example.com"}}`)
	withoutPlan := mustParse(t, `{"type":"identify","userId":"u1","traits":{"name":"Ada"}}`)
	track := mustParse(t, `{"type":"track","event":"x","userId":"u1"}`)

	for _, tc := range []struct {
		name     string
		settings settings.Settings
		event    *event.Event
		reject   bool
	}{
		{"no whitelist", settings.Settings{}, withoutPlan, false},
		{"whitelisted trait present", settings.Settings{WhiteListedTraits: []string{"plan"}}, withPlan, false},
		{"whitelisted trait missing", settings.Settings{WhiteListedTraits: []string{"plan"}}, withoutPlan, true},
		{"empty whitelist", settings.Settings{WhiteListedTraits: []string{}}, withPlan, true},
		{"all keys required", settings.Settings{WhiteListedTraits: []string{"plan", "seats"}}, withPlan, true},
		{"any key legacy mode", settings.Settings{WhiteListedTraits: []string{"plan", "seats"}, WhiteListMode: settings.WhiteListAny}, withPlan, false},
		{"any key legacy mode, none present", settings.Settings{WhiteListedTraits: []string{"plan", "seats"}, WhiteListMode: settings.WhiteListAny}, withoutPlan, true},
		{"track is never gated", settings.Settings{WhiteListedTraits: []string{}, RequireEmail: true}, track, false},
		{"email required and present", settings.Settings{RequireEmail: true}, withPlan, false},
		{"email required and missing", settings.Settings{RequireEmail: true}, withoutPlan, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := gate.ShouldSend(tc.event, &tc.settings)
			if !tc.reject {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.IsType(t, &gate.Rejection{}, err)
		})
	}
}

func TestRequireAll_reportsMissingKeys(t *testing.T) {
	e := mustParse(t, `{"type":"identify","userId":"u1","traits":{"plan":null}}`)
	r := gate.RequireAll(e, []string{"plan", "seats", "company"})
	require.NotNil(t, r)
	assert.Equal(t, []string{"seats", "company"}, r.Missing)
	assert.Equal(t, "missing whitelisted traits: seats, company", r.Error())
	assert.Equal(t, map[string]interface{}{
		"reason":  "missing whitelisted traits",
		"missing": []string{"seats", "company"},
	}, r.Metadata())
}

func TestRejection_noMissing(t *testing.T) {
	r := &gate.Rejection{Reason: "no email"}
	assert.Equal(t, "no email", r.Error())
	assert.Equal(t, map[string]interface{}{"reason": "no email"}, r.Metadata())
}
