package datauri

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const png1x1 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestParseImage(t *testing.T) {
	u, err := ParseImage("data:image/png;base64," + png1x1)
	require.NoError(t, err)
	assert.Equal(t, "image/png", u.Declared)
	assert.Equal(t, "image/png", u.Detected.String())
	assert.NotEmpty(t, u.Data)
	assert.Equal(t, "sunset.png", u.Filename("sunset"))
	assert.Equal(t, "sunset.PNG", u.Filename("sunset.PNG"))
	assert.Equal(t, "picture.png", u.Filename(""))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"no scheme", "image/png;base64," + png1x1, ErrMalformed},
		{"no comma", "data:image/png;base64", ErrMalformed},
		{"not base64 flagged", "data:image/png," + png1x1, ErrNotBase64},
		{"bad base64", "data:image/png;base64,%%%", ErrNotBase64},
		{"empty payload", "data:image/png;base64,", ErrEmptyData},
		{"bad media type", "data:/;base64," + png1x1, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseImageTypeClash(t *testing.T) {
	text := base64.StdEncoding.EncodeToString([]byte("just some text"))

	_, err := ParseImage("data:image/png;base64," + text)
	assert.ErrorIs(t, err, ErrTypeClashes)

	_, err = ParseImage("data:text/plain;base64," + text)
	assert.ErrorIs(t, err, ErrTypeClashes)

	_, err = ParseImage("data:image/jpeg;base64," + png1x1)
	assert.ErrorIs(t, err, ErrTypeClashes)
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(png1x1)
	require.NoError(t, err)

	assert.Equal(t, "data:image/png;base64,"+png1x1, Encode(data))
}
