package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tetraminz/estate_coach/internal/session"
)

func TestRootCmdHasAllSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{
		"converse", "coach", "ask", "ingest", "transcribe",
		"say", "crm", "home", "perf", "report", "transcript",
	}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestConverseRejectsMissingUsername(t *testing.T) {
	t.Setenv("ESTATE_LLM_PROVIDER", "mock")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"converse"})

	err := root.Execute()
	if !errors.Is(err, session.ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
}
