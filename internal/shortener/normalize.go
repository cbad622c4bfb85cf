package shortener

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
)

const defaultScheme = "https://"

// Normalize canonicalizes a user supplied URL before it is stored or compared.
// - Trims surrounding whitespace and rejects any whitespace left inside
// - Prepends https:// when no http or https scheme is present
// - Requires a host that is an IP, localhost or a dotted domain name
//
// The result is compared byte for byte during deduplication, so no other
// rewriting (case folding, port stripping) happens here.
func Normalize(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	// url.Parse tolerates spaces in the path and query
	if strings.ContainsFunc(candidate, unicode.IsSpace) {
		return "", fmt.Errorf("%w: contains whitespace", ErrInvalidURL)
	}

	if !hasHTTPScheme(candidate) {
		candidate = defaultScheme + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Host == "" || u.Opaque != "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if !validHost(u.Hostname()) {
		return "", fmt.Errorf("%w: invalid host %q", ErrInvalidURL, u.Hostname())
	}

	if port := u.Port(); port == "" && strings.HasSuffix(u.Host, ":") {
		return "", fmt.Errorf("%w: empty port", ErrInvalidURL)
	}

	return candidate, nil
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func validHost(host string) bool {
	if host == "" {
		return false
	}

	if net.ParseIP(host) != nil || strings.EqualFold(host, "localhost") {
		return true
	}

	labels := strings.Split(strings.TrimSuffix(host, "."), ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}

	return alphabetic(labels[len(labels)-1])
}

// validLabel accepts LDH labels: letters, digits and inner hyphens, up to 63 bytes.
func validLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}

	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}

	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isAlphanumeric(c) && c != '-' {
			return false
		}
	}

	return true
}

func alphabetic(s string) bool {
	if len(s) < 2 {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}

	return true
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
