package validator

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anBertoli/snap-share/pkg/datauri"
	"github.com/anBertoli/snap-share/pkg/store"
)

var (
	EmailRX = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
)

func ValidateUser(v Validator, user store.User) {
	ValidateName(v, "first_name", user.FirstName)
	ValidateName(v, "last_name", user.LastName)
	ValidateEmail(v, user.Email)
	ValidatePassword(v, user.Password)
}

func ValidateName(v Validator, key, name string) {
	v.Check(strings.TrimSpace(name) != "", key, "must be provided")
	v.Check(len(name) <= 500, key, "must not be more than 500 bytes long")
}

func ValidateEmail(v Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(Matches(email, EmailRX), "email", "must be a valid email address")
}

// Passwords are bcrypt hashed, which ignores anything after 72 bytes.
func ValidatePassword(v Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) >= 8, "password", "must be at least 8 bytes long")
	v.Check(len(password) <= 72, "password", "must not be more than 72 bytes long")
	v.Check(strings.IndexFunc(password, unicode.IsLetter) >= 0, "password", "must contain at least one letter")
	v.Check(strings.IndexFunc(password, unicode.IsDigit) >= 0, "password", "must contain at least one digit")
}

func ValidateGallery(v Validator, gallery store.Gallery) {
	ValidateTitle(v, gallery.Title)
	ValidateDescription(v, gallery.Description)
	ValidateFilename(v, gallery.Filename)
	if gallery.Image != "" {
		ValidateImage(v, gallery.Image)
	}
}

func ValidatePicture(v Validator, picture store.Picture) {
	ValidateTitle(v, picture.Title)
	ValidateDescription(v, picture.Description)
	ValidateFilename(v, picture.Filename)
	v.Check(picture.Image != "", "image", "must be provided")
	if picture.Image != "" {
		ValidateImage(v, picture.Image)
	}
}

func ValidateTitle(v Validator, title string) {
	v.Check(strings.TrimSpace(title) != "", "title", "must be provided")
	v.Check(utf8.RuneCountInString(title) <= 200, "title", "must not be more than 200 characters long")
}

func ValidateDescription(v Validator, description string) {
	v.Check(utf8.RuneCountInString(description) <= 2000, "description", "must not be more than 2000 characters long")
}

func ValidateFilename(v Validator, filename string) {
	v.Check(len(filename) <= 255, "filename", "must not be more than 255 bytes long")
	v.Check(!strings.ContainsAny(filename, "/\\\x00"), "filename", "must not contain path separators")
}

// The image must be a base64 data-URI whose content really is the declared image type.
func ValidateImage(v Validator, image string) {
	_, err := datauri.ParseImage(image)
	v.Check(err == nil, "image", "must be a base64 data-uri of an image")
}
