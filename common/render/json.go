package render

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// JSON renders v as the JSON response body with the given status code.
func JSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("cannot encode JSON response: %v", err)
	}
}
