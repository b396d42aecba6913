package formatter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jeremywohl/flatten"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"

	"github.com/weaveworks/integration-slack/event"
)

// Attachment lists every property of e as a short field, keyed by its dot
// path. The timestamp and type are left out.
func Attachment(e *event.Event) (slack.Attachment, error) {
	doc := e.JSON()
	delete(doc, "timestamp")
	delete(doc, "type")

	flat, err := flatten.Flatten(doc, "", flatten.DotStyle)
	if err != nil {
		return slack.Attachment{}, errors.Wrap(err, "cannot flatten event")
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]slack.AttachmentField, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, slack.AttachmentField{
			Title: k,
			Value: fieldValue(flat[k]),
			Short: true,
		})
	}

	return slack.Attachment{
		AuthorName: Username,
		AuthorIcon: IconURL,
		AuthorLink: AuthorLink,
		Fields:     fields,
	}, nil
}

func fieldValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
