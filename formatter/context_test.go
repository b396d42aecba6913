package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weaveworks/integration-slack/formatter"
)

func TestContext(t *testing.T) {
	ctx := formatter.Context(mustParse(t, `{"type":"identify","userId":"u1","traits":{"username":"ada","email":"ada@example.com"}}`))
	assert.Equal(t, "ada", ctx["name"])
	assert.Equal(t, "ada@example.com", ctx["email"])
	assert.Equal(t, "username: ada\nemail: ada@example.com\n", ctx["traits"])
	assert.Equal(t, "u1", ctx["userId"])

	ctx = formatter.Context(mustParse(t, `{"type":"track","event":"x","anonymousId":"a1","traits":{"plan":"pro"}}`))
	assert.Equal(t, "Anonymous user a1", ctx["name"])
	_, hasEmail := ctx["email"]
	assert.False(t, hasEmail)
	assert.Equal(t, map[string]interface{}{"plan": "pro"}, ctx["traits"])
}

func TestTraitsText(t *testing.T) {
	assert.Equal(t, "", formatter.TraitsText(mustParse(t, `{"type":"identify","userId":"u1","traits":{}}`)))
	assert.Equal(t, "b: 2\na: x\n", formatter.TraitsText(mustParse(t, `{"type":"identify","userId":"u1","traits":{"b":2,"a":"x"}}`)))
}
