package httputil

import (
	"encoding/json"
	"net/http"
	"strings"

	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
)

// ErrorBody is the JSON shape of an error response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondJSON writes v as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes err as a standardized JSON error response. The status
// is derived from the error code; errors without a code are reported as
// INTERNAL_ERROR with a generic message.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := cgerrors.HTTPStatus(err)
	body := ErrorBody{
		Code:      string(cgerrors.GetCode(err)),
		Message:   cgerrors.UserMessage(err),
		RequestID: RequestIDFrom(r.Context()),
	}
	if body.Code == "" {
		body.Code = string(cgerrors.ErrCodeInternal)
		body.Message = "internal error"
	}
	RespondJSON(w, status, body)
}

// RespondArtifact writes rendered bytes with the given content type and
// ETag. When the request's If-None-Match matches etag, it answers 304 Not
// Modified without a body.
func RespondArtifact(w http.ResponseWriter, r *http.Request, contentType, etag string, data []byte) {
	if etag != "" {
		w.Header().Set("ETag", etag)
		if matchesETag(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func matchesETag(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
