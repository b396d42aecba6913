package render

import (
	"encoding/json"
	"fmt"

	"github.com/aymerick/raymond"
	"github.com/bluele/gcache"
	"github.com/pkg/errors"
)

// DefaultCacheSize is the number of compiled templates kept by NewEngine.
const DefaultCacheSize = 256

// Template is a compiled template.
type Template interface {
	Render(ctx map[string]interface{}) (string, error)
}

// Engine compiles template sources. Parse errors are returned, never
// panicked.
type Engine interface {
	Compile(source string) (Template, error)
}

// handlebars renders {{path.to.value}} placeholders. Output is not HTML
// escaped: the rendered text goes to Slack, not to a browser.
type handlebars struct {
	cache gcache.Cache
}

// NewEngine returns a handlebars Engine that keeps the last cacheSize
// compiled templates.
func NewEngine(cacheSize int) Engine {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &handlebars{
		cache: gcache.New(cacheSize).LRU().LoaderFunc(func(key interface{}) (interface{}, error) {
			return raymond.Parse(key.(string))
		}).Build(),
	}
}

func (h *handlebars) Compile(source string) (Template, error) {
	v, err := h.cache.Get(source)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse template")
	}
	return &compiled{tpl: v.(*raymond.Template)}, nil
}

type compiled struct {
	tpl *raymond.Template
}

func (c *compiled) Render(ctx map[string]interface{}) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("template panicked: %v", r)
		}
	}()
	s, err = c.tpl.Exec(verbatim(ctx))
	if err != nil {
		return "", errors.Wrap(err, "cannot execute template")
	}
	return s, nil
}

// verbatim marks every string of the context as safe so that it is
// rendered without HTML escaping.
func verbatim(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = verbatim(e)
		}
		return m
	case []interface{}:
		a := make([]interface{}, len(t))
		for i, e := range t {
			a[i] = verbatim(e)
		}
		return a
	case string:
		return raymond.SafeString(t)
	case json.Number:
		return raymond.SafeString(t.String())
	case fmt.Stringer:
		return raymond.SafeString(t.String())
	default:
		return v
	}
}
