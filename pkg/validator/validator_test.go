package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/store/storetest"
)

func TestValidatorError(t *testing.T) {
	v := New()
	assert.True(t, v.Ok())

	v.Check(false, "title", "must be provided")
	v.Check(false, "title", "second message is dropped")
	v.Check(true, "image", "never added")
	v.AddError("email", "must be a valid email address")

	assert.False(t, v.Ok())
	assert.Equal(t, "must be provided", v["title"])
	assert.Equal(t, "email: must be a valid email address, title: must be provided", v.Error())
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"", false},
		{"abc123", false},
		{"abcdefgh", false},
		{"12345678", false},
		{"abcdefg1", true},
		{"pässwörd9", true},
		{strings.Repeat("a", 71) + "1", true},
		{strings.Repeat("a", 72) + "1", false},
	}
	for _, tt := range tests {
		v := New()
		ValidatePassword(v, tt.password)
		assert.Equal(t, tt.ok, v.Ok(), "password %q: %v", tt.password, v)
	}
}

func TestValidateUser(t *testing.T) {
	v := New()
	ValidateUser(v, store.User{FirstName: " ", Email: "not-an-email", Password: "short"})
	assert.Contains(t, v, "first_name")
	assert.Contains(t, v, "last_name")
	assert.Contains(t, v, "email")
	assert.Contains(t, v, "password")

	v = New()
	ValidateUser(v, store.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "analytical1"})
	assert.True(t, v.Ok(), v.Error())
}

func TestValidateGalleryAndPicture(t *testing.T) {
	v := New()
	ValidateGallery(v, store.Gallery{Title: "Holidays"})
	assert.True(t, v.Ok(), "the gallery image is optional")

	v = New()
	ValidateGallery(v, store.Gallery{Title: "Holidays", Image: "data:text/plain;base64,aGVsbG8="})
	assert.Contains(t, v, "image")

	v = New()
	ValidatePicture(v, store.Picture{Title: "Sunset", Image: storetest.PNGDataURI})
	assert.True(t, v.Ok(), v.Error())

	v = New()
	ValidatePicture(v, store.Picture{Title: ""})
	assert.Equal(t, "must be provided", v["title"])
	assert.Equal(t, "must be provided", v["image"])

	v = New()
	ValidatePicture(v, store.Picture{Title: strings.Repeat("x", 201), Image: "data:image/png;base64,aGVsbG8="})
	assert.Contains(t, v, "title")
	assert.Equal(t, "must be a base64 data-uri of an image", v["image"])
}
