package render

import (
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// WithMetadata is an error that carries extra fields for the error response.
type WithMetadata interface {
	error
	Metadata() map[string]interface{}
}

// Error renders a specific error to the API
func Error(w http.ResponseWriter, r *http.Request, err error, errorStatusCode func(error) int) {
	code := errorStatusCode(err)
	entry := log.WithFields(log.Fields{"method": r.Method, "path": r.URL.Path, "status": code})
	if code >= http.StatusInternalServerError {
		entry.Errorf("request failed: %v", err)
	} else {
		entry.Warnf("request rejected: %v", err)
	}

	m := map[string]interface{}{}
	errstr := err.Error()
	if code == http.StatusInternalServerError {
		errstr = "An internal server error occurred"
	} else if err, ok := errors.Cause(err).(WithMetadata); ok {
		for k, v := range err.Metadata() {
			m[k] = v
		}
	}

	m["message"] = errstr
	JSON(w, code, map[string][]map[string]interface{}{
		"errors": {m},
	})
}
