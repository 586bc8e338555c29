package cmd

import (
	"bytes"
	"testing"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "kubel" {
		t.Errorf("Expected Use to be 'kubel', got %s", rootCmd.Use)
	}
	if rootCmd.Short == "" || rootCmd.Long == "" {
		t.Error("Expected Short and Long descriptions to be set")
	}
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
	for _, name := range []string{"debug", "config"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag --%s", name)
		}
	}
}

func TestSubcommands(t *testing.T) {
	foundCommands := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range []string{"version", "proxy", "watch", "serve"} {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("0.9.0")
	cmd := newVersionCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	if got := buf.String(); got != "kubel version 0.9.0\n" {
		t.Errorf("Expected version output %q, got %q", "kubel version 0.9.0\n", got)
	}
}

func TestWatchCommandRequiresResource(t *testing.T) {
	cmd := newWatchCmd()
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("Expected watch without resources to be rejected")
	}
	if cmd.Flags().Lookup("force") == nil {
		t.Error("Expected --force flag on watch")
	}
}
