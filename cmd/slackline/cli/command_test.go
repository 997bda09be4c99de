// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "slackline",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "doctor",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					called = "doctor"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"doctor"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "doctor" {
		t.Errorf("dispatched to %q, want %q", called, "doctor")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "slackline",
		Subcommands: []*Command{
			{
				Name: "workspace",
				Subcommands: []*Command{
					{
						Name: "remove",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							called = "workspace remove"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"workspace", "remove", "acme"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "workspace remove" {
		t.Errorf("dispatched to %q, want %q", called, "workspace remove")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "acme" {
		t.Errorf("args = %v, want [acme]", receivedArgs)
	}
}

func TestCommand_Execute_ParamsParsing(t *testing.T) {
	type params struct {
		StoreConfig
		Cookie string `flag:"cookie" desc:"session cookie"`
	}
	var p params
	var target string
	var gotLogger *slog.Logger

	command := &Command{
		Name:   "add",
		Params: func() any { return &p },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				target = args[0]
			}
			gotLogger = logger
			return nil
		},
	}

	if err := command.Execute([]string{"--cookie", "xoxd-1", "-v", "acme"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if p.Cookie != "xoxd-1" {
		t.Errorf("Cookie = %q, want %q", p.Cookie, "xoxd-1")
	}
	if !p.Verbose() {
		t.Error("expected -v to set verbose")
	}
	if target != "acme" {
		t.Errorf("target = %q, want %q", target, "acme")
	}
	if gotLogger == nil {
		t.Fatal("Run received a nil logger")
	}
	if !gotLogger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("verbose logger should enable debug records")
	}
}

func TestCommand_Execute_QuietLoggerByDefault(t *testing.T) {
	var p struct{ StoreConfig }
	var gotLogger *slog.Logger
	command := &Command{
		Name:   "list",
		Params: func() any { return &p },
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			gotLogger = logger
			return nil
		},
	}
	if err := command.Execute(nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if gotLogger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("non-verbose logger should drop info records")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	var p struct {
		JSONOutput
		Quiet bool `flag:"quiet,q" desc:"exit status only"`
	}
	command := &Command{
		Name:   "show",
		Params: func() any { return &p },
		Run:    func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute([]string{"--jsno"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "--json") {
		t.Errorf("error %q should suggest --json", err.Error())
	}
	if CategoryOf(err) != CategoryValidation {
		t.Errorf("category = %q, want validation", CategoryOf(err))
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "slackline",
		Subcommands: []*Command{
			{Name: "workspace", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
			{Name: "encryption", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute([]string{"workspce"})
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), `did you mean "workspace"`) {
		t.Errorf("error %q should suggest workspace", err.Error())
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	root := &Command{
		Name: "slackline",
		Subcommands: []*Command{
			{Name: "doctor", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("Execute(nil) = %v, want subcommand required", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	called := false
	command := &Command{
		Name: "doctor",
		Run: func(context.Context, []string, *slog.Logger) error {
			called = true
			return nil
		},
	}
	for _, flag := range []string{"-h", "--help", "help"} {
		if err := command.Execute([]string{flag}); err != nil {
			t.Errorf("Execute(%q) error: %v", flag, err)
		}
	}
	if called {
		t.Error("help should not run the command")
	}
}

func TestCommand_Execute_RunErrorPropagates(t *testing.T) {
	sentinel := errors.New("boom")
	command := &Command{
		Name: "list",
		Run:  func(context.Context, []string, *slog.Logger) error { return sentinel },
	}
	if err := command.Execute(nil); !errors.Is(err, sentinel) {
		t.Errorf("Execute() = %v, want sentinel", err)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var p struct {
		StoreConfig
		JSONOutput
	}
	parent := &Command{Name: "slackline"}
	command := &Command{
		Name:        "list",
		Summary:     "List stored workspaces",
		Description: "List every workspace in the credential store.",
		Params:      func() any { return &p },
		Examples: []Example{
			{Description: "Machine-readable output", Command: "slackline workspace list --json"},
		},
		parent: parent,
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"List every workspace in the credential store.",
		"Usage:\n  slackline list [flags]",
		"--config",
		"--json",
		"# Machine-readable output",
		"slackline workspace list --json",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_ListsSubcommands(t *testing.T) {
	root := &Command{
		Name: "slackline",
		Subcommands: []*Command{
			{Name: "workspace", Summary: "Manage stored workspaces"},
			{Name: "encryption", Summary: "Manage credential encryption"},
		},
	}

	var buffer bytes.Buffer
	root.PrintHelp(&buffer)
	output := buffer.String()

	if !strings.Contains(output, "Usage:\n  slackline <command> [flags]") {
		t.Errorf("missing usage line:\n%s", output)
	}
	if !strings.Contains(output, "workspace") || !strings.Contains(output, "Manage credential encryption") {
		t.Errorf("missing subcommand listing:\n%s", output)
	}
	if !strings.Contains(output, "Run 'slackline <command> --help'") {
		t.Errorf("missing footer:\n%s", output)
	}
}

func TestCommand_CommandPath(t *testing.T) {
	root := &Command{Name: "slackline"}
	group := &Command{Name: "encryption", parent: root}
	leaf := &Command{Name: "rotate", parent: group}

	if got := leaf.commandPath(); got != "encryption/rotate" {
		t.Errorf("commandPath() = %q, want %q", got, "encryption/rotate")
	}
	if got := leaf.fullName(); got != "slackline encryption rotate" {
		t.Errorf("fullName() = %q, want %q", got, "slackline encryption rotate")
	}
}
