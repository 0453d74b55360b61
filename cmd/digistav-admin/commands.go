// ABOUTME: One-shot CLI commands, each a thin layer over a console operation
// ABOUTME: Fetch, mutate through the console, then render the affected section

package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/2389/digistav-admin/internal/client"
	"github.com/2389/digistav-admin/internal/console"
	"github.com/2389/digistav-admin/internal/dashboard"
	"github.com/2389/digistav-admin/internal/render"
	"github.com/2389/digistav-admin/internal/session"
)

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	var err error
	switch cmd {
	case "dashboard":
		err = a.cmdDashboard(ctx)
	case "me":
		err = a.cmdMe(ctx)
	case "users":
		err = a.cmdUsers(ctx, args)
	case "documents", "docs":
		err = a.cmdDocuments(ctx, args)
	case "chat":
		err = a.cmdChat(ctx)
	case "deduct":
		err = a.cmdDeduct(ctx, args)
	case "settings":
		err = a.cmdSettings(ctx)
	case "report":
		err = a.cmdReport(ctx, args)
	case "login":
		err = a.cmdLogin(args)
	case "logout":
		err = a.cmdLogout(ctx)
	case "console":
		err = a.runConsole(ctx)
	default:
		return fmt.Errorf("unknown command: %s (see 'digistav-admin help')", cmd)
	}

	if errors.Is(err, console.ErrCanceled) {
		color.New(color.FgYellow).Fprintln(a.out, "Canceled.")
		return nil
	}
	if err != nil {
		return hint(err)
	}
	return nil
}

// cmdDashboard loads the session user and user list and shows the metrics.
func (a *app) cmdDashboard(ctx context.Context) error {
	meErr := a.console.FetchSessionUser(ctx)
	usersErr := a.console.FetchAllUsers(ctx)

	st := a.console.State()
	render.Dashboard(a.out, st.SessionUser, dashboard.Summarize(st.Users))
	return errors.Join(meErr, usersErr)
}

func (a *app) cmdMe(ctx context.Context) error {
	if err := a.console.FetchSessionUser(ctx); err != nil {
		return err
	}
	render.SessionUser(a.out, a.console.SessionUser())
	return nil
}

// cmdUsers handles users subcommands
func (a *app) cmdUsers(ctx context.Context, args []string) error {
	// Default to list
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		if err := a.console.FetchAllUsers(ctx); err != nil {
			return err
		}
		render.Users(a.out, a.console.Users(), nil)
		return nil
	case "update", "set":
		return a.cmdUsersUpdate(ctx, args)
	case "delete", "rm", "remove":
		if len(args) < 1 {
			return fmt.Errorf("usage: users delete <user-id>")
		}
		if err := a.console.DeleteUser(ctx, args[0]); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(a.out, "✓ Deleted user: %s\n", args[0])
		render.Users(a.out, a.console.Users(), nil)
		return nil
	default:
		return fmt.Errorf("unknown users subcommand: %s (use list, update, delete)", subcmd)
	}
}

// cmdUsersUpdate sends a partial update with only the given fields.
func (a *app) cmdUsersUpdate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: users update <user-id> [--credits N] [--plan P]")
	}
	id := args[0]
	patch, err := parsePatchFlags(args[1:])
	if err != nil {
		return err
	}

	if err := a.console.UpdateUser(ctx, id, patch); err != nil {
		return err
	}
	render.Users(a.out, a.console.Users(), nil)
	return nil
}

// parsePatchFlags reads --credits and --plan. Flags that are absent stay nil.
func parsePatchFlags(args []string) (client.UserPatch, error) {
	var patch client.UserPatch

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--credits":
			if i+1 >= len(args) {
				return patch, fmt.Errorf("--credits needs a value")
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return patch, fmt.Errorf("invalid credits %q: must be a whole number", args[i+1])
			}
			patch.CreditsLeft = &n
			i++
		case "--plan":
			if i+1 >= len(args) {
				return patch, fmt.Errorf("--plan needs a value")
			}
			p, err := client.ParsePlan(args[i+1])
			if err != nil {
				return patch, err
			}
			patch.Subscription = &p
			i++
		default:
			return patch, fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	return patch, nil
}

// cmdDocuments handles documents subcommands
func (a *app) cmdDocuments(ctx context.Context, args []string) error {
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		if err := a.console.FetchDocuments(ctx); err != nil {
			return err
		}
		render.Documents(a.out, a.console.Documents())
		return nil
	case "delete", "rm", "remove":
		if len(args) < 1 {
			return fmt.Errorf("usage: documents delete <document-id>")
		}
		if err := a.console.DeleteDocument(ctx, args[0]); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(a.out, "✓ Deleted document: %s\n", args[0])
		render.Documents(a.out, a.console.Documents())
		return nil
	default:
		return fmt.Errorf("unknown documents subcommand: %s (use list, delete)", subcmd)
	}
}

func (a *app) cmdChat(ctx context.Context) error {
	if err := a.console.FetchRecentChat(ctx); err != nil {
		return err
	}
	render.Chat(a.out, a.console.Chat())
	return nil
}

// cmdDeduct deducts credits from the session user, loading it first.
func (a *app) cmdDeduct(ctx context.Context, args []string) error {
	if len(args) < 1 {
		a.prompter.Notify(console.MsgEnterAmount)
		return fmt.Errorf("usage: deduct <amount>")
	}

	if err := a.console.FetchSessionUser(ctx); err != nil {
		return err
	}
	if _, err := a.console.DeductCredits(ctx, args[0]); err != nil {
		return err
	}
	render.SessionUser(a.out, a.console.SessionUser())
	return nil
}

func (a *app) cmdSettings(ctx context.Context) error {
	info, err := a.settingsInfo(ctx)
	if err != nil {
		return err
	}
	render.Settings(a.out, info)
	return nil
}

// settingsInfo gathers what the settings section shows from the jar.
func (a *app) settingsInfo(ctx context.Context) (render.SettingsInfo, error) {
	info := render.SettingsInfo{
		BaseURL:    a.client.BaseURL(),
		ConfigPath: a.cfg.Path,
		SessionDB:  a.cfg.Session.Path,
		CookieName: a.cfg.Session.CookieName,
		Now:        time.Now(),
	}

	cookies, err := a.jar.List(ctx)
	if err != nil {
		return info, fmt.Errorf("listing session cookies: %w", err)
	}
	info.Cookies = cookies

	u, err := url.Parse(a.client.BaseURL())
	if err != nil {
		return info, fmt.Errorf("parsing base URL: %w", err)
	}
	c, err := a.jar.Get(ctx, u.Hostname(), a.cfg.Session.CookieName)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return info, nil
	case err != nil:
		return info, err
	}

	if tok, err := session.Inspect(c.Value); err == nil {
		info.Token = tok
	} else {
		a.logger.Debug("session cookie is not a JWT", "error", err)
	}
	return info, nil
}

// cmdReport writes an HTML report of every section.
func (a *app) cmdReport(ctx context.Context, args []string) error {
	outPath := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--out", "-o":
			if i+1 < len(args) {
				outPath = args[i+1]
				i++
			}
		}
	}
	if outPath == "" {
		return fmt.Errorf("usage: report --out <file.html>")
	}

	a.console.Mount(ctx)
	a.console.Go(ctx, a.console.FetchDocuments)
	a.console.Go(ctx, a.console.FetchRecentChat)
	a.console.Wait()

	st := a.console.State()
	report := render.Report{
		GeneratedAt: time.Now(),
		BaseURL:     a.client.BaseURL(),
		SessionUser: st.SessionUser,
		Summary:     dashboard.Summarize(st.Users),
		Users:       st.Users,
		Documents:   st.Documents,
		Chat:        st.Chat,
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := render.WriteReport(f, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	color.New(color.FgGreen).Fprintf(a.out, "✓ Report written to %s\n", outPath)
	return nil
}

// cmdLogin stores a session token obtained from the web login.
func (a *app) cmdLogin(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: login <token>")
	}
	if err := a.jar.Seed(a.client.BaseURL(), a.cfg.Session.CookieName, args[0]); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Fprintln(a.out, "✓ Session stored")
	if tok, err := session.Inspect(args[0]); err == nil && tok.ExpiresAt != nil {
		fmt.Fprintf(a.out, "  Expires: %s\n", tok.ExpiresAt.UTC().Format(render.TimeLayout))
	}
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.jar.Clear(ctx); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(a.out, "✓ Session cleared")
	if a.cfg.Session.Token != "" {
		color.New(color.FgYellow).Fprintln(a.out, "  session.token is configured and will be re-seeded on the next run")
	}
	return nil
}
