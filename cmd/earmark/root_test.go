package main

import (
	"testing"
)

func TestRootShowsHelp(t *testing.T) {
	configPath := writeTestConfig(t)

	out, _, err := runCLI(t, configPath)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	requireContains(t, out, "earmark")
	requireContains(t, out, "report")
	requireContains(t, out, "blacklist")
}

func TestUnknownCommandFails(t *testing.T) {
	_, _, err := runCLI(t, "", "definitely-not-a-command")
	if err == nil {
		t.Fatal("expected unknown command to fail")
	}
}
