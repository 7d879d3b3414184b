package resolver

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"shuffle/internal/services"
)

var trackIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)

// TrackID extracts the bare track identifier from a catalog identity. Accepted
// forms are the URI form (spotify:track:<id>), an open.spotify.com track URL,
// or the bare 22 character identifier.
func TrackID(identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	candidate := identity
	switch {
	case strings.HasPrefix(identity, "spotify:"):
		parts := strings.Split(identity, ":")
		if len(parts) != 3 || parts[1] != "track" {
			return "", malformed(identity)
		}
		candidate = parts[2]
	case strings.Contains(identity, "://"):
		parsed, err := url.Parse(identity)
		if err != nil {
			return "", malformed(identity)
		}
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		if len(segments) < 2 || segments[len(segments)-2] != "track" {
			return "", malformed(identity)
		}
		candidate = segments[len(segments)-1]
	}
	if !trackIDPattern.MatchString(candidate) {
		return "", malformed(identity)
	}
	return candidate, nil
}

func malformed(identity string) error {
	return services.Wrap(services.ErrValidation, "resolve", "parse identity", fmt.Sprintf("malformed track identity %q", identity), nil)
}
