package media

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
)

const maxBodySize = 1 << 20

// errorBody is the media host's error envelope.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// translateError maps a failed response to a domain error carrying the
// host's message.
func translateError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize)); err == nil {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Message != "" {
			msg = eb.Error.Message
		}
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return domain.NewValidationError("image", msg)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.ConfigurationError{Setting: "CLOUDINARY_API_KEY", Reason: "rejected by media host: " + msg}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("media host: %s: %w", msg, domain.ErrUnavailable)
	default:
		return fmt.Errorf("media host: unexpected status %d: %s", resp.StatusCode, msg)
	}
}
