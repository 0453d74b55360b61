// ABOUTME: Interactive console: a read-eval-print loop over view sections
// ABOUTME: Section switches only re-render; data changes only on reload or after a mutation

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/digistav-admin/internal/client"
	"github.com/2389/digistav-admin/internal/console"
	"github.com/2389/digistav-admin/internal/dashboard"
	"github.com/2389/digistav-admin/internal/render"
)

var errQuit = errors.New("quit")

// runConsole runs the interactive console until quit or end of input.
func (a *app) runConsole(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	cyan.Fprint(a.out, banner)
	cyan.Fprintf(a.out, "Connected to %s (type 'help' for commands, Ctrl+D to exit)\n", a.client.BaseURL())

	a.console.Mount(ctx)
	a.renderSection(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}

		green.Fprintf(a.out, "digistav[%s]> ", a.console.Section())
		line, err := a.prompter.ReadLine()
		if err == io.EOF {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if line == "" {
			continue
		}

		err = a.execLine(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			a.printConsoleError(err)
		}
	}
}

// printConsoleError reports errors that the console has not already shown.
func (a *app) printConsoleError(err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, console.ErrCanceled):
		color.New(color.FgYellow).Fprintln(a.out, "  Canceled.")
	case errors.Is(err, console.ErrInvalidAmount), errors.Is(err, console.ErrEmptyPatch),
		errors.Is(err, console.ErrNoSession):
		// Already notified
	case errors.As(err, &apiErr), errors.Is(err, client.ErrTransport):
		color.New(color.FgRed).Fprintf(a.out, "  %v\n", hint(err))
	default:
		color.New(color.FgRed).Fprintf(a.out, "  %v\n", err)
	}
}

// execLine runs one console command.
func (a *app) execLine(ctx context.Context, line string) error {
	fields := splitArgs(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		a.printConsoleHelp()
		return nil
	case "section", "s", "go":
		if len(args) < 1 {
			return fmt.Errorf("usage: section <%s>", sectionNames())
		}
		s, err := console.ParseSection(args[0])
		if err != nil {
			return err
		}
		a.console.SetSection(s)
		a.renderSection(ctx)
		return nil
	case "show", "ls":
		a.renderSection(ctx)
		return nil
	case "reload", "r":
		a.console.Refresh(ctx, a.console.Section())
		a.renderSection(ctx)
		return nil
	case "draft":
		return a.execDraft(args)
	case "drafts":
		render.Users(a.out, a.console.Users(), a.console.Drafts())
		return nil
	case "discard":
		if len(args) < 1 {
			return fmt.Errorf("usage: discard <user-id>")
		}
		a.console.DiscardDraft(args[0])
		return nil
	case "submit":
		if len(args) < 1 {
			return fmt.Errorf("usage: submit <user-id>")
		}
		if err := a.console.SubmitDraft(ctx, args[0]); err != nil {
			return err
		}
		a.renderSection(ctx)
		return nil
	case "delete-user":
		if len(args) < 1 {
			return fmt.Errorf("usage: delete-user <user-id>")
		}
		if err := a.console.DeleteUser(ctx, args[0]); err != nil {
			return err
		}
		a.renderSection(ctx)
		return nil
	case "delete-doc":
		if len(args) < 1 {
			return fmt.Errorf("usage: delete-doc <document-id>")
		}
		if err := a.console.DeleteDocument(ctx, args[0]); err != nil {
			return err
		}
		a.renderSection(ctx)
		return nil
	case "deduct":
		raw := ""
		if len(args) > 0 {
			raw = args[0]
		}
		_, err := a.console.DeductCredits(ctx, raw)
		return err
	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
}

// execDraft handles "draft <id> credits N" and "draft <id> plan P".
func (a *app) execDraft(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: draft <user-id> credits <n> | draft <user-id> plan <plan>")
	}
	id, field, value := args[0], strings.ToLower(args[1]), strings.Join(args[2:], " ")

	switch field {
	case "credits":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid credits %q: must be a whole number", value)
		}
		a.console.SetDraftCredits(id, n)
	case "plan":
		p, err := client.ParsePlan(value)
		if err != nil {
			return err
		}
		a.console.SetDraftPlan(id, p)
	default:
		return fmt.Errorf("unknown draft field %q (use credits or plan)", field)
	}

	d, _ := a.console.Draft(id)
	fmt.Fprintf(a.out, "  draft %s: %s\n", id, render.DescribeDraft(d))
	return nil
}

// renderSection shows the current section from the in-memory snapshots.
func (a *app) renderSection(ctx context.Context) {
	st := a.console.State()
	switch st.Section {
	case console.SectionDashboard:
		render.Dashboard(a.out, st.SessionUser, dashboard.Summarize(st.Users))
	case console.SectionUsers:
		render.Users(a.out, st.Users, a.console.Drafts())
	case console.SectionDocuments:
		render.Documents(a.out, st.Documents)
	case console.SectionChat:
		render.Chat(a.out, st.Chat)
	case console.SectionSettings:
		info, err := a.settingsInfo(ctx)
		if err != nil {
			a.logger.Error("failed to read session settings", "error", err)
		}
		render.Settings(a.out, info)
	}
}

func (a *app) printConsoleHelp() {
	yellow := color.New(color.FgYellow)
	yellow.Fprintln(a.out, "Console commands:")
	fmt.Fprintf(a.out, "  section <name>              Switch view (%s)\n", sectionNames())
	fmt.Fprintln(a.out, "  show                        Re-render the current view")
	fmt.Fprintln(a.out, "  reload                      Fetch the current view's data again")
	fmt.Fprintln(a.out, "  draft <id> credits <n>      Stage a credit balance for a user")
	fmt.Fprintln(a.out, "  draft <id> plan <plan>      Stage a plan for a user")
	fmt.Fprintln(a.out, "  drafts                      Show staged edits")
	fmt.Fprintln(a.out, "  discard <id>                Drop a user's staged edit")
	fmt.Fprintln(a.out, "  submit <id>                 Send a user's staged edit")
	fmt.Fprintln(a.out, "  delete-user <id>            Delete a user")
	fmt.Fprintln(a.out, "  delete-doc <id>             Delete a document")
	fmt.Fprintln(a.out, "  deduct <amount>             Deduct credits from your account")
	fmt.Fprintln(a.out, "  quit                        Leave the console")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Switching sections discards staged edits. Views are not refreshed")
	fmt.Fprintln(a.out, "automatically; use reload.")
}

func sectionNames() string {
	names := make([]string, len(console.Sections))
	for i, s := range console.Sections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// splitArgs splits a console line on whitespace, keeping double-quoted
// runs together so plans like "Best Value" survive.
func splitArgs(line string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}
