package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

var errTrailingData = errors.New("multiple JSON values")

// DecodeJSON reads exactly one JSON value from the request body into dst.
// Empty, oversized, malformed and concatenated bodies all yield invalid_json;
// meta.reason tells them apart for clients.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		return invalidJSON(err)
	}
	if dec.More() {
		return invalidJSON(errTrailingData)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return invalidJSON(err)
	}
	return nil
}

func invalidJSON(err error) *domain.Error {
	return domain.WithMeta(domain.ErrInvalidJSON(err), map[string]string{
		"reason": decodeReason(err),
	})
}

func decodeReason(err error) string {
	var tooLarge *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		return "too_large"
	case errors.Is(err, io.EOF):
		return "empty"
	case errors.Is(err, errTrailingData):
		return "trailing_data"
	case errors.As(err, &typeErr):
		return "wrong_type"
	default:
		return "malformed"
	}
}
