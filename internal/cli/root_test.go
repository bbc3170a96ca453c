package cli

import (
	"os"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"validate":   false,
		"tree":       false,
		"graph":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"dot", "svg"} {
		if err := validateFormat(f); err != nil {
			t.Errorf("validateFormat(%q) = %v", f, err)
		}
	}
	if err := validateFormat("png"); err == nil {
		t.Error("png should be rejected")
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.SetLogLevel(LogDebug)
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("level = %v", c.Logger.GetLevel())
	}
}
