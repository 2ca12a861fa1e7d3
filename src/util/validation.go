package util

import (
	"net/http"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

func ValidateAccountName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= 1 && len(name) <= 100
}

// ImageMIMEType returns the content type of an uploaded image, sniffing the bytes when the
// declared type is missing. The second value is false for non-image payloads.
func ImageMIMEType(declared string, data []byte) (string, bool) {
	mime := strings.TrimSpace(strings.Split(declared, ";")[0])
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return mime, strings.HasPrefix(mime, "image/")
}
