// ABOUTME: Terminal rendering of console sections with tabwriter and color
// ABOUTME: Each function writes one section to an io.Writer

package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/2389/digistav-admin/internal/client"
	"github.com/2389/digistav-admin/internal/console"
	"github.com/2389/digistav-admin/internal/dashboard"
	"github.com/2389/digistav-admin/internal/session"
)

// TimeLayout is how timestamps are shown. Times are printed in UTC, the zone
// the backend stores them in.
const TimeLayout = "2006-01-02 15:04:05"

const maxBarWidth = 30

func heading(w io.Writer, title string) {
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(w)
	cyan.Fprintf(w, "  %s\n", title)
	cyan.Fprintf(w, "  %s\n", strings.Repeat("-", len(title)))
}

// SessionUser writes the session user card.
func SessionUser(w io.Writer, me *client.User) {
	heading(w, "Session User")
	if me == nil {
		fmt.Fprintln(w, "  (not loaded)")
		fmt.Fprintln(w)
		return
	}

	green := color.New(color.FgGreen)
	fmt.Fprintf(w, "  ID:           %s\n", me.ID)
	fmt.Fprintf(w, "  Email:        %s\n", me.Email)
	fmt.Fprintf(w, "  Subscription: %s\n", orNone(string(me.Subscription)))
	green.Fprintf(w, "  Credits:      %d\n", me.CreditsLeft)
	fmt.Fprintln(w)
}

// Dashboard writes the session user card followed by the metrics.
func Dashboard(w io.Writer, me *client.User, s dashboard.Summary) {
	SessionUser(w, me)

	heading(w, "Dashboard")
	fmt.Fprintf(w, "  Total users:  %d\n", s.TotalUsers)
	fmt.Fprintf(w, "  Total chats:  %d\n", s.TotalChats)
	fmt.Fprintln(w)

	peak := s.Other
	for _, pc := range s.Plans {
		peak = max(peak, pc.Count)
	}

	yellow := color.New(color.FgYellow)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  PLAN\tUSERS\t")
	fmt.Fprintln(tw, "  ----\t-----\t")
	for _, pc := range s.Plans {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", pc.Plan, pc.Count, yellow.Sprint(bar(pc.Count, peak)))
	}
	if s.Other > 0 {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", "Other", s.Other, yellow.Sprint(bar(s.Other, peak)))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// bar scales n against peak into at most maxBarWidth cells.
func bar(n, peak int) string {
	if n <= 0 || peak <= 0 {
		return ""
	}
	width := max(n*maxBarWidth/peak, 1)
	return strings.Repeat("#", width)
}

// Users writes the user table. Pending drafts are shown next to the row
// they belong to.
func Users(w io.Writer, users []client.User, drafts map[string]console.Draft) {
	heading(w, "Users")
	if len(users) == 0 {
		fmt.Fprintln(w, "  Loading users... (nothing loaded yet; reload to fetch)")
		fmt.Fprintln(w)
		return
	}

	yellow := color.New(color.FgYellow)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tPLAN\tCREDITS\tCHATS\tDRAFT")
	fmt.Fprintln(tw, "  --\t----\t----\t-------\t-----\t-----")
	for _, u := range users {
		draft := ""
		if d, ok := drafts[u.ID]; ok {
			draft = yellow.Sprint(DescribeDraft(d))
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%d\t%s\n",
			u.ID, truncate(u.DisplayName(), 32), orNone(string(u.Subscription)), u.CreditsLeft, u.ChatCount(), draft)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// DescribeDraft summarizes the fields a draft would change.
func DescribeDraft(d console.Draft) string {
	var parts []string
	if d.Credits != nil {
		parts = append(parts, "credits="+strconv.Itoa(*d.Credits))
	}
	if d.Plan != nil {
		parts = append(parts, fmt.Sprintf("plan=%q", string(*d.Plan)))
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " ")
}

// Documents writes the document table.
func Documents(w io.Writer, docs []client.Document) {
	heading(w, "Documents")
	if len(docs) == 0 {
		fmt.Fprintln(w, "  (no documents)")
		fmt.Fprintln(w)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tTYPE\tCREATED\tURL")
	fmt.Fprintln(tw, "  --\t----\t----\t-------\t---")
	for _, d := range docs {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			d.ID, truncate(d.OriginalName, 40), d.MimeType, formatTime(d.CreatedAt), d.URL)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// Chat writes the recent chat window.
func Chat(w io.Writer, msgs []client.ChatMessage) {
	heading(w, "Recent Chat")
	if len(msgs) == 0 {
		fmt.Fprintln(w, "  (no messages)")
		fmt.Fprintln(w)
		return
	}

	for _, m := range msgs {
		roleColor(m.Role).Fprintf(w, "  [%s] ", m.Role)
		fmt.Fprintln(w, indentContinuation(m.Content))
	}
	fmt.Fprintln(w)
}

func roleColor(r client.Role) *color.Color {
	switch r {
	case client.RoleUser:
		return color.New(color.FgGreen)
	case client.RoleAssistant:
		return color.New(color.FgBlue)
	default:
		return color.New(color.Faint)
	}
}

// SettingsInfo is what the settings section shows.
type SettingsInfo struct {
	BaseURL    string
	ConfigPath string
	SessionDB  string
	CookieName string
	Cookies    []session.Cookie
	// Token is nil when the session cookie is absent or not a JWT.
	Token *session.TokenInfo
	Now   time.Time
}

// Settings writes the connection and session details.
func Settings(w io.Writer, info SettingsInfo) {
	heading(w, "Settings")
	fmt.Fprintf(w, "  Backend:      %s\n", info.BaseURL)
	fmt.Fprintf(w, "  Config:       %s\n", orNone(info.ConfigPath))
	fmt.Fprintf(w, "  Session DB:   %s\n", info.SessionDB)

	switch {
	case info.Token == nil:
		fmt.Fprintf(w, "  Session:      %s\n", sessionState(info))
	case info.Token.Expired(info.Now):
		color.New(color.FgRed).Fprintf(w, "  Session:      expired at %s\n", formatTime(*info.Token.ExpiresAt))
	default:
		green := color.New(color.FgGreen)
		green.Fprintf(w, "  Session:      %s\n", orNone(info.Token.Subject))
		if info.Token.ExpiresAt != nil {
			fmt.Fprintf(w, "  Expires:      %s\n", formatTime(*info.Token.ExpiresAt))
		}
	}

	if len(info.Cookies) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  HOST\tNAME\tPATH\tEXPIRES")
		fmt.Fprintln(tw, "  ----\t----\t----\t-------")
		for _, c := range info.Cookies {
			expires := "session"
			if c.ExpiresAt != nil {
				expires = formatTime(*c.ExpiresAt)
				if c.Expired(info.Now) {
					expires += " (expired)"
				}
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", c.Host, c.Name, c.Path, expires)
		}
		tw.Flush()
	}
	fmt.Fprintln(w)
}

func sessionState(info SettingsInfo) string {
	for _, c := range info.Cookies {
		if c.Name == info.CookieName {
			return "cookie present (not a JWT)"
		}
	}
	return "(no session cookie)"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(TimeLayout)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// truncate shortens s to maxLen runes, never splitting a character.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

func indentContinuation(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n    ")
}
