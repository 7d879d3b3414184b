package streams_test

import (
	"testing"

	"shuffle/internal/streams"
)

func TestSelectBestPrefersHighestAudioBitrate(t *testing.T) {
	descriptors := []streams.Descriptor{
		{Itag: 137, MimeType: `video/mp4; codecs="avc1"`, Bitrate: 4_000_000},
		{Itag: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130_000, AudioOnly: true},
		{Itag: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160_000, AudioOnly: true},
		{Itag: 249, MimeType: `audio/webm; codecs="opus"`, Bitrate: 50_000, AudioOnly: true},
	}
	best, ok := streams.SelectBest(descriptors)
	if !ok {
		t.Fatal("expected a selection")
	}
	if best.Itag != 251 {
		t.Fatalf("expected itag 251, got %d", best.Itag)
	}
	if best.Extension() != ".webm" {
		t.Fatalf("unexpected extension %q", best.Extension())
	}
}

func TestSelectBestTieBreakIsDeterministic(t *testing.T) {
	a := streams.Descriptor{Itag: 251, MimeType: "audio/webm", Bitrate: 128_000, AudioOnly: true}
	b := streams.Descriptor{Itag: 140, MimeType: "audio/mp4", Bitrate: 128_000, AudioOnly: true}
	c := streams.Descriptor{Itag: 140, MimeType: "audio/aac", Bitrate: 128_000, AudioOnly: true}

	orders := [][]streams.Descriptor{{a, b, c}, {c, b, a}, {b, a, c}}
	for _, order := range orders {
		best, _ := streams.SelectBest(order)
		if best.Itag != 140 || best.MimeType != "audio/aac" {
			t.Fatalf("expected itag 140 audio/aac regardless of order, got %+v", best)
		}
	}
}

func TestSelectBestNoAudio(t *testing.T) {
	if _, ok := streams.SelectBest([]streams.Descriptor{{Itag: 18, MimeType: "video/mp4"}}); ok {
		t.Fatal("expected no selection without audio-only descriptors")
	}
	if _, ok := streams.SelectBest(nil); ok {
		t.Fatal("expected no selection for empty list")
	}
}

func TestDescriptorExtension(t *testing.T) {
	cases := map[string]string{
		`audio/mp4; codecs="mp4a.40.2"`: ".m4a",
		"audio/webm":                    ".webm",
		"AUDIO/MP4":                     ".m4a",
		"audio/ogg":                     ".bin",
	}
	for mimeType, want := range cases {
		if got := (streams.Descriptor{MimeType: mimeType}).Extension(); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", mimeType, got, want)
		}
	}
}
