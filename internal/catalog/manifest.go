package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shuffle/internal/services"
)

// Kind is the type of collection a manifest was produced from.
type Kind string

const (
	KindTrack    Kind = "track"
	KindPlaylist Kind = "playlist"
	KindArtist   Kind = "artist"
	KindAlbum    Kind = "album"
)

var kindTitler = cases.Title(language.English)

// Display returns the kind in title case for headings.
func (k Kind) Display() string {
	if k == "" {
		return "Batch"
	}
	return kindTitler.String(string(k))
}

func (k Kind) valid() bool {
	switch k {
	case "", KindTrack, KindPlaylist, KindArtist, KindAlbum:
		return true
	}
	return false
}

// Manifest is an ordered batch of items.
type Manifest struct {
	Kind   Kind
	Source string
	Items  []Item
}

type manifestFile struct {
	Kind   string      `toml:"kind" json:"kind"`
	Source string      `toml:"source" json:"source"`
	Items  []itemEntry `toml:"items" json:"items"`
}

type itemEntry struct {
	ID         string   `toml:"id" json:"id"`
	Title      string   `toml:"title" json:"title"`
	Artists    []string `toml:"artists" json:"artists"`
	Album      string   `toml:"album" json:"album"`
	DurationMS int64    `toml:"duration_ms" json:"duration_ms"`
}

// LoadManifest reads a manifest from disk. Files ending in .json are decoded as
// JSON; everything else is treated as TOML.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	format := "toml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return ParseManifest(data, format)
}

// ParseManifest decodes and validates manifest bytes in the given format.
func ParseManifest(data []byte, format string) (*Manifest, error) {
	var file manifestFile
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, services.Wrap(services.ErrValidation, "manifest", "decode", "invalid json", err)
		}
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, services.Wrap(services.ErrValidation, "manifest", "decode", "unknown keys:\n"+strict.String(), err)
			}
			return nil, services.Wrap(services.ErrValidation, "manifest", "decode", "invalid toml", err)
		}
	default:
		return nil, services.Wrap(services.ErrValidation, "manifest", "decode", fmt.Sprintf("unsupported format %q", format), nil)
	}

	manifest := &Manifest{
		Kind:   Kind(strings.ToLower(strings.TrimSpace(file.Kind))),
		Source: strings.TrimSpace(file.Source),
		Items:  make([]Item, 0, len(file.Items)),
	}
	if !manifest.Kind.valid() {
		return nil, services.Wrap(services.ErrValidation, "manifest", "validate", fmt.Sprintf("unknown kind %q", file.Kind), nil)
	}
	for _, entry := range file.Items {
		manifest.Items = append(manifest.Items, Item{
			ID:       strings.TrimSpace(entry.ID),
			Title:    strings.TrimSpace(entry.Title),
			Artists:  entry.Artists,
			Album:    strings.TrimSpace(entry.Album),
			Duration: time.Duration(entry.DurationMS) * time.Millisecond,
		})
	}
	if err := ValidateItems(manifest.Items); err != nil {
		return nil, err
	}
	return manifest, nil
}

// ValidateItems rejects empty batches, blank identities, and duplicates.
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return services.Wrap(services.ErrValidation, "manifest", "validate", "batch contains no items", nil)
	}
	seen := make(map[string]int, len(items))
	for idx, item := range items {
		if item.ID == "" {
			return services.Wrap(services.ErrValidation, "manifest", "validate", fmt.Sprintf("item %d has no id", idx+1), nil)
		}
		if first, ok := seen[item.ID]; ok {
			return services.Wrap(services.ErrValidation, "manifest", "validate",
				fmt.Sprintf("item %d duplicates item %d (%s)", idx+1, first+1, item.ID), nil)
		}
		seen[item.ID] = idx
	}
	return nil
}

// Select narrows items to the given selectors, each either an item ID or a
// 1-based position. Input order is preserved and an empty selector list
// returns every item.
func Select(items []Item, selectors []string) ([]Item, error) {
	if len(selectors) == 0 {
		return items, nil
	}
	index := make(map[string]int, len(items))
	for idx, item := range items {
		index[item.ID] = idx
	}
	chosen := make(map[int]struct{}, len(selectors))
	for _, raw := range selectors {
		for _, sel := range strings.Split(raw, ",") {
			sel = strings.TrimSpace(sel)
			if sel == "" {
				continue
			}
			if idx, ok := index[sel]; ok {
				chosen[idx] = struct{}{}
				continue
			}
			pos, err := strconv.Atoi(sel)
			if err != nil || pos < 1 || pos > len(items) {
				return nil, services.Wrap(services.ErrValidation, "manifest", "select", fmt.Sprintf("no item matches %q", sel), nil)
			}
			chosen[pos-1] = struct{}{}
		}
	}
	out := make([]Item, 0, len(chosen))
	for idx, item := range items {
		if _, ok := chosen[idx]; ok {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, services.Wrap(services.ErrValidation, "manifest", "select", "selection is empty", nil)
	}
	return out, nil
}
