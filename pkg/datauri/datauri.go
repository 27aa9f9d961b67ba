// Package datauri decodes the base64 data-URIs holding the picture payloads and
// sniffs the actual content type of the decoded bytes.
package datauri

import (
	"encoding/base64"
	"errors"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrMalformed   = errors.New("malformed data uri")
	ErrNotBase64   = errors.New("data uri payload is not base64 encoded")
	ErrEmptyData   = errors.New("data uri has no payload")
	ErrTypeClashes = errors.New("data uri content does not match its media type")
)

// URI is a decoded data-URI. Declared is the media type written in the URI, Detected
// the one sniffed from the payload.
type URI struct {
	Declared string
	Detected *mimetype.MIME
	Data     []byte
}

// Parse decodes a "data:<mediatype>;base64,<payload>" string.
func Parse(s string) (URI, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return URI{}, ErrMalformed
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return URI{}, ErrMalformed
	}
	header, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return URI{}, ErrNotBase64
	}

	declared := "text/plain"
	if header != "" {
		mediaType, _, err := mime.ParseMediaType(header)
		if err != nil {
			return URI{}, ErrMalformed
		}
		declared = mediaType
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return URI{}, ErrNotBase64
	}
	if len(data) == 0 {
		return URI{}, ErrEmptyData
	}

	return URI{
		Declared: declared,
		Detected: mimetype.Detect(data),
		Data:     data,
	}, nil
}

// ParseImage parses the data-URI and checks that both the declared and the sniffed
// types are the same image type.
func ParseImage(s string) (URI, error) {
	u, err := Parse(s)
	if err != nil {
		return URI{}, err
	}
	if !strings.HasPrefix(u.Declared, "image/") || !u.Detected.Is(u.Declared) {
		return URI{}, ErrTypeClashes
	}
	return u, nil
}

// Filename returns name completed with the extension of the sniffed type, if it has none.
func (u URI) Filename(name string) string {
	ext := u.Detected.Extension()
	if name == "" {
		name = "picture"
	}
	if ext == "" || strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}

// Encode builds the data-URI of data, using the sniffed media type.
func Encode(data []byte) string {
	mediaType := mimetype.Detect(data).String()
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
