package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shuffle/internal/config"
	"shuffle/internal/streams"
	"shuffle/internal/testsupport"
)

const (
	trackA = "4uLU6hMCjMI75M1A2tKUQC"
	trackB = "7GhIk7Il098yCjg4BQjzvb"
	trackC = "1301WleyT98MSxVHPZCA6M"
)

const testManifest = `kind = "playlist"
source = "spotify:playlist:37i9dQZF1DX0XUsuxWHRQd"

[[items]]
id = "spotify:track:` + trackA + `"
title = "Never Gonna Give You Up"
artists = ["Rick Astley"]
album = "Whenever You Need Somebody"
duration_ms = 213573

[[items]]
id = "spotify:track:` + trackB + `"
title = "Take On Me"
artists = ["a-ha"]
album = "Hunting High and Low"
duration_ms = 225280

[[items]]
id = "spotify:track:` + trackC + `"
title = "Lost Track"
artists = ["Nobody"]
duration_ms = 180000
`

type cliTestEnv struct {
	cfg          *config.Config
	configPath   string
	manifestPath string
	index        *httptest.Server
	streams      *testsupport.Streams
}

// setupCLITestEnv writes a config pointing at a fake index that knows trackA
// and trackB, and a stream provider serving both sources.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("SHUFFLE_INDEX_URL", "")
	t.Setenv("SHUFFLE_NTFY_TOPIC", "")

	sources := map[string]string{trackA: "srcA", trackB: "srcB"}
	index := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/getId/")
		source, ok := sources[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"id":"` + source + `"}`))
	}))
	t.Cleanup(index.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithIndexURL(index.URL))
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "shuffle.toml")
	writeTestConfig(t, configPath, cfg)

	manifestPath := filepath.Join(base, "batch.toml")
	testsupport.WriteFile(t, manifestPath, []byte(testManifest))

	return &cliTestEnv{
		cfg:          cfg,
		configPath:   configPath,
		manifestPath: manifestPath,
		index:        index,
		streams: &testsupport.Streams{
			Formats: map[string][]streams.Descriptor{
				"srcA": audioFormats("srcA", 4096),
				"srcB": audioFormats("srcB", 6000),
			},
			Payloads: map[string][]byte{
				"srcA": testsupport.Payload("srcA", 4096),
				"srcB": testsupport.Payload("srcB", 6000),
			},
		},
	}
}

func audioFormats(source string, size int64) []streams.Descriptor {
	return []streams.Descriptor{
		{SourceID: source, Itag: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000},
		{SourceID: source, Itag: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 128000, ContentLength: size, AudioOnly: true},
		{SourceID: source, Itag: 249, MimeType: `audio/webm; codecs="opus"`, Bitrate: 50000, AudioOnly: true},
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, e.streams, append([]string{"--config", e.configPath}, args...)...)
}

func runCLI(t *testing.T, provider streams.Provider, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	if provider != nil {
		ctx.streamProvider = func(*config.Config) streams.Provider { return provider }
	}
	cmd := newRootCommandWith(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
