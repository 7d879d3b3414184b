package testsupport

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Payload returns size bytes of a pattern derived from seed, so different
// sources produce distinguishable content.
func Payload(seed string, size int) []byte {
	var offset byte
	for i := 0; i < len(seed); i++ {
		offset += seed[i]
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i%251) + offset
	}
	return data
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ListDir returns the sorted entry names of dir.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}
