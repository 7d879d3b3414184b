package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shuffle/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.DownloadDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, nil, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, nil, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, nil, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestItemsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, "items", env.manifestPath)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	requireContains(t, out, "Items: 3")
	requireContains(t, out, "Never Gonna Give You Up")
	requireContains(t, out, "a-ha")
	requireContains(t, out, "03:45")

	if _, _, err := runCLI(t, nil, "items", env.manifestPath, "--only", "9"); err == nil {
		t.Fatal("expected error for out of range selector")
	}
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "No cached resolutions")

	store := testsupport.MustOpenCache(t, env.cfg)
	ctx := context.Background()
	for id, source := range map[string]string{"spotify:track:" + trackA: "srcA", "spotify:track:" + trackB: "srcB"} {
		if err := store.Put(ctx, id, source); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	out, _, err = env.run(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "srcA")
	requireContains(t, out, "2 cached resolution(s)")

	out, _, err = env.run(t, "cache", "remove", "spotify:track:"+trackA, "spotify:track:missing")
	if err != nil {
		t.Fatalf("cache remove: %v", err)
	}
	requireContains(t, out, "Removed spotify:track:"+trackA)
	requireContains(t, out, "was not cached")

	out, _, err = env.run(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 cached resolution(s)")
}

func TestPreflightCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "preflight")
	if err != nil {
		t.Fatalf("preflight: %v\n%s", err, out)
	}
	requireContains(t, out, "Destination directory")
	requireContains(t, out, "All checks passed")

	out, _, err = env.run(t, "preflight", "--dest", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected preflight failure for missing destination")
	}
	requireContains(t, out, "FAIL")
}

func TestTestNotifyDisabled(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}
