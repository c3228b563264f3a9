package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ab/abcdef", "ab/abffff", "cd/cdeeee", "top"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}

	n, err := clearDir(dir)
	if err != nil {
		t.Fatalf("clearDir: %v", err)
	}
	if n != 4 {
		t.Errorf("cleared %d entries, want 4", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir itself should remain: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("%d entries left behind", len(entries))
	}
}

func TestClearDirMissing(t *testing.T) {
	n, err := clearDir(filepath.Join(t.TempDir(), "never-created"))
	if err != nil || n != 0 {
		t.Errorf("clearDir = %d, %v, want 0, nil", n, err)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	c := New(os.Stderr, LogInfo)
	dir, err := c.config.CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cacheHome, appName); dir != want {
		t.Errorf("CacheDir = %q, want %q", dir, want)
	}
}
