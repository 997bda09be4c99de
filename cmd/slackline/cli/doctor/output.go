// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/slackline-dev/slackline/cmd/slackline/cli"
)

// statusColors maps each status to an ANSI color index. The renderer
// drops colors when the writer is not a terminal.
var statusColors = map[Status]lipgloss.Color{
	StatusPass:  lipgloss.Color("2"),
	StatusFail:  lipgloss.Color("1"),
	StatusWarn:  lipgloss.Color("3"),
	StatusSkip:  lipgloss.Color("8"),
	StatusFixed: lipgloss.Color("6"),
}

// PrintChecklist writes check results to w as a human-readable
// checklist. It returns an [cli.ExitError] with code 1 when any check
// still fails.
func PrintChecklist(w io.Writer, results []Result, fixMode, dryRun bool, outcome Outcome) error {
	renderer := lipgloss.NewRenderer(w)
	fixableCount := 0
	fixedCount := 0

	for _, result := range results {
		label := fmt.Sprintf("[%-5s]", strings.ToUpper(string(result.Status)))
		style := renderer.NewStyle().Foreground(statusColors[result.Status])
		if result.Status == StatusFail {
			style = style.Bold(true)
		}
		fmt.Fprintf(w, "%s  %-28s  %s\n", style.Render(label), result.Name, result.Message)

		switch result.Status {
		case StatusFail:
			if result.FixHint != "" {
				fixableCount++
				if dryRun {
					fmt.Fprintf(w, "         %-28s  would fix: %s\n", "", result.FixHint)
				}
			}
		case StatusFixed:
			fixedCount++
		}
	}

	fmt.Fprintln(w)

	if AnyFailed(results) {
		if dryRun && fixableCount > 0 {
			fmt.Fprintf(w, "%d issue(s) would be repaired. Run without --dry-run to apply.\n", fixableCount)
		} else if !fixMode && fixableCount > 0 {
			fmt.Fprintf(w, "Run with --fix to repair %d issue(s).\n", fixableCount)
		} else {
			fmt.Fprintln(w, "Some checks failed.")
		}
		if outcome.PermissionDenied {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Some fixes failed due to insufficient permissions. Check the owner of the credential directory.")
		}
		return &cli.ExitError{Code: 1}
	}

	if fixedCount > 0 {
		fmt.Fprintf(w, "%d issue(s) repaired.\n", fixedCount)
		return nil
	}

	fmt.Fprintln(w, "All checks passed.")
	return nil
}
