package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Item is one piece of content to resolve and download.
type Item struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Artists  []string      `json:"artists,omitempty"`
	Album    string        `json:"album,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Label returns the display name, falling back to the identity.
func (i Item) Label() string {
	if title := strings.TrimSpace(i.Title); title != "" {
		return title
	}
	return i.ID
}

// ArtistLine joins the artists for display.
func (i Item) ArtistLine() string {
	return strings.Join(i.Artists, ", ")
}

// FormatDuration renders a track length as mm:ss. Lengths of an hour or more
// keep counting minutes.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "--:--"
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
