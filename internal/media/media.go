// Package media prepares uploaded images for inline storage in a document.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pauljones0/agriconnect/internal/apperr"
)

// DefaultMaxBytes keeps the base64 form comfortably under the 1 MiB document limit.
const DefaultMaxBytes = 800 * 1024

var (
	ErrTooLarge = errors.New("image exceeds size limit")
	ErrNotImage = errors.New("file is not an image")
	ErrEmpty    = errors.New("file is empty")
)

// EncodeImage validates data and returns it as a base64 data URL. The size
// check runs before anything else, so an oversized file is never read further.
func EncodeImage(data []byte, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(data) > maxBytes {
		return "", apperr.WithNotice(
			fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), maxBytes),
			fmt.Sprintf("Image is too large. Please select an image smaller than %dKB.", maxBytes/1024),
		)
	}
	if len(data) == 0 {
		return "", apperr.WithNotice(ErrEmpty, "Please choose an image to upload.")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", apperr.WithNotice(
			fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String()),
			"Please select an image file.",
		)
	}
	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL returns the media type and raw bytes of a base64 data URL.
func DecodeDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mediaType, data, nil
}
