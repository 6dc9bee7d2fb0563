package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/config"
	"github.com/kennyg/lore/internal/entry"
)

// captureOutput points os.Stdout and os.Stderr at temp files while fn runs
func captureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()
	dir := t.TempDir()
	outFile, err := os.Create(filepath.Join(dir, "stdout"))
	if err != nil {
		t.Fatal(err)
	}
	errFile, err := os.Create(filepath.Join(dir, "stderr"))
	if err != nil {
		t.Fatal(err)
	}

	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outFile, errFile
	defer func() {
		os.Stdout, os.Stderr = origOut, origErr
		outFile.Close()
		errFile.Close()
	}()

	fn()

	out, _ := os.ReadFile(outFile.Name())
	errOut, _ := os.ReadFile(errFile.Name())
	return string(out), string(errOut)
}

func TestNewApp_RecoveryNoticeKeepsStdoutClean(t *testing.T) {
	root := t.TempDir()
	cacheDir := filepath.Join(root, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, entry.IndexFilename), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	origCfg, origLogger := cfg, logger
	t.Cleanup(func() { cfg, logger = origCfg, origLogger })
	cfg = &config.Config{CacheDir: cacheDir, DocsDir: filepath.Join(root, "docs")}
	logger = zap.NewNop()

	stdout, stderr := captureOutput(t, func() {
		a, err := newApp(false)
		if err != nil {
			t.Errorf("newApp() error = %v", err)
			return
		}
		if _, err := a.service.List(context.Background()); err != nil {
			t.Errorf("List() error = %v", err)
		}
	})

	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "index corrupt") {
		t.Errorf("stderr = %q, want the recovery notice", stderr)
	}
}
