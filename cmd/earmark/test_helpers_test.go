package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a config file rooted in a fresh temp directory and
// returns its path. The paths it names exist only when a test creates them.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	content := fmt.Sprintf(
		"[lastfm]\napi_key = %q\nuser = %q\n\n[paths]\nratings_csv = %q\nblacklist_file = %q\ncache_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = %q\n",
		"test-key",
		"listener",
		filepath.Join(base, "ratings.csv"),
		filepath.Join(base, "blacklist.json"),
		filepath.Join(base, "cache"),
		filepath.Join(base, "logs"),
		"error",
	)
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cliArgs := args
	if configPath != "" {
		cliArgs = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(cliArgs)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
