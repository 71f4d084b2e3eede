// internal/app/system/jsonio/jsonio.go
package jsonio

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
)

// MaxBody caps request bodies read by Decode.
const MaxBody = 1 << 20

// Decode reads a JSON request body into dst. An empty body decodes to the
// zero value; malformed JSON is a validation error.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apierr.Validation("Invalid JSON body")
	}
	return nil
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	apierr.WriteMessage(w, status, msg)
}
