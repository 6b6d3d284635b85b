package http

import (
	"net/url"
	"strings"
)

// contentDisposition builds an attachment header carrying the UTF-8 file
// name (RFC 5987) with an ASCII fallback for old clients.
func contentDisposition(name, fallback string) string {
	return `attachment; filename="` + fallback + `"; filename*=UTF-8''` + encodeRFC5987(name)
}

// encodeRFC5987 percent-encodes everything outside attr-char.
func encodeRFC5987(s string) string {
	escaped := url.PathEscape(s)
	// PathEscape leaves sub-delims that attr-char does not allow.
	return strings.NewReplacer(
		"'", "%27", "(", "%28", ")", "%29", "*", "%2A",
		",", "%2C", ";", "%3B", "=", "%3D", "@", "%40",
		":", "%3A", "/", "%2F",
	).Replace(escaped)
}
