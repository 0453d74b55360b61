// ABOUTME: Tests for terminal and HTML rendering of console sections
// ABOUTME: Runs with color disabled so output can be matched as plain text

package render

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/digistav-admin/internal/client"
	"github.com/2389/digistav-admin/internal/console"
	"github.com/2389/digistav-admin/internal/dashboard"
	"github.com/2389/digistav-admin/internal/session"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func sampleUsers() []client.User {
	return []client.User{
		{ID: "u1", Email: "a@example.com", Username: "alice", Subscription: client.PlanFree, CreditsLeft: 5,
			Chat: client.ChatSummary{Last10: []json.RawMessage{json.RawMessage(`"m1"`), json.RawMessage(`"m2"`)}}},
		{ID: "u2", Email: "b@example.com", Subscription: client.PlanStarter, CreditsLeft: 20},
	}
}

func TestSessionUser(t *testing.T) {
	var buf bytes.Buffer
	SessionUser(&buf, &client.User{ID: "admin", Email: "admin@example.com", Subscription: client.PlanMostPopular, CreditsLeft: 42})

	out := buf.String()
	assert.Contains(t, out, "Session User")
	assert.Contains(t, out, "admin@example.com")
	assert.Contains(t, out, "Most Popular")
	assert.Contains(t, out, "Credits:      42")

	buf.Reset()
	SessionUser(&buf, nil)
	assert.Contains(t, buf.String(), "(not loaded)")
}

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	Dashboard(&buf, nil, dashboard.Summarize(sampleUsers()))

	out := buf.String()
	assert.Contains(t, out, "Total users:  2")
	assert.Contains(t, out, "Total chats:  2")
	assert.Contains(t, out, "Best Value")
	assert.NotContains(t, out, "Other", "no Other row when every plan is known")

	buf.Reset()
	Dashboard(&buf, nil, dashboard.Summarize([]client.User{{ID: "x", Subscription: "enterprise"}}))
	assert.Contains(t, buf.String(), "Other")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "", bar(3, 0))
	assert.Equal(t, strings.Repeat("#", maxBarWidth), bar(10, 10))
	assert.Equal(t, "#", bar(1, 1000))
}

func TestUsers_ShowsDrafts(t *testing.T) {
	credits := 7
	plan := client.PlanBestValue
	drafts := map[string]console.Draft{
		"u2": {Credits: &credits, Plan: &plan},
	}

	var buf bytes.Buffer
	Users(&buf, sampleUsers(), drafts)

	lines := strings.Split(buf.String(), "\n")
	var u1, u2 string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "u1"):
			u1 = l
		case strings.Contains(l, "u2"):
			u2 = l
		}
	}
	assert.Contains(t, u1, "alice")
	assert.NotContains(t, u1, "credits=")
	assert.Contains(t, u2, "b@example.com")
	assert.Contains(t, u2, `credits=7 plan="Best Value"`)

	buf.Reset()
	Users(&buf, nil, nil)
	assert.Contains(t, buf.String(), "Loading users...")
}

func TestDocuments_TimeFormat(t *testing.T) {
	created := time.Date(2025, 3, 4, 7, 6, 7, 0, time.FixedZone("CET", 2*60*60))

	var buf bytes.Buffer
	Documents(&buf, []client.Document{{ID: "d1", OriginalName: "plan.pdf", MimeType: "application/pdf", CreatedAt: created}})

	out := buf.String()
	assert.Contains(t, out, "plan.pdf")
	assert.Contains(t, out, "2025-03-04 05:06:07", "shown in UTC")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 32))

	long := strings.Repeat("ř", 40)
	got := truncate(long, 32)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ř", 29)+"...", got)
	assert.Equal(t, 32, utf8.RuneCountInString(got))
}

func TestChat(t *testing.T) {
	var buf bytes.Buffer
	Chat(&buf, []client.ChatMessage{
		{Role: client.RoleUser, Content: "How much rebar?"},
		{Role: client.RoleAssistant, Content: "About 2 tons.\nPer floor."},
	})

	out := buf.String()
	assert.Contains(t, out, "[user] How much rebar?")
	assert.Contains(t, out, "[assistant] About 2 tons.\n    Per floor.")

	buf.Reset()
	Chat(&buf, nil)
	assert.Contains(t, buf.String(), "(no messages)")
}

func TestSettings(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)

	var buf bytes.Buffer
	Settings(&buf, SettingsInfo{
		BaseURL:    "https://api.example.com",
		SessionDB:  "/tmp/session.db",
		CookieName: "token",
		Cookies:    []session.Cookie{{Host: "api.example.com", Name: "token", Path: "/", ExpiresAt: &exp}},
		Token:      &session.TokenInfo{Subject: "admin", ExpiresAt: &exp},
		Now:        now,
	})
	out := buf.String()
	assert.Contains(t, out, "https://api.example.com")
	assert.Contains(t, out, "Session:      admin")
	assert.Contains(t, out, "2025-06-01 13:00:00")

	past := now.Add(-time.Hour)
	buf.Reset()
	Settings(&buf, SettingsInfo{Token: &session.TokenInfo{ExpiresAt: &past}, Now: now})
	assert.Contains(t, buf.String(), "expired at 2025-06-01 11:00:00")

	buf.Reset()
	Settings(&buf, SettingsInfo{CookieName: "token", Cookies: []session.Cookie{{Name: "token", Path: "/"}}, Now: now})
	assert.Contains(t, buf.String(), "cookie present (not a JWT)")

	buf.Reset()
	Settings(&buf, SettingsInfo{CookieName: "token", Now: now})
	assert.Contains(t, buf.String(), "(no session cookie)")
}

func TestWriteReport(t *testing.T) {
	users := sampleUsers()
	report := Report{
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		BaseURL:     "https://api.example.com",
		SessionUser: &users[0],
		Summary:     dashboard.Summarize(users),
		Users:       users,
		Documents:   []client.Document{{ID: "d1", OriginalName: "plan.pdf", URL: "https://files.example.com/plan.pdf"}},
		Chat: []client.ChatMessage{
			{Role: client.RoleAssistant, Content: "Use **C30** concrete"},
			{Role: client.RoleUser, Content: "<script>alert(1)</script>"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "<title>DigiStav Admin Report</title>")
	assert.Contains(t, out, "2025-06-01 12:00:00")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, `href="https://files.example.com/plan.pdf"`)
	assert.Contains(t, out, "<strong>C30</strong>")
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.NotContains(t, out, "alert(1)", "raw HTML is dropped, not escaped")
	assert.Contains(t, out, "raw HTML omitted")
}

func TestWriteReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, Report{Title: "Empty"}))

	out := buf.String()
	assert.Contains(t, out, "<title>Empty</title>")
	assert.Contains(t, out, "Not loaded.")
	assert.Contains(t, out, "No users.")
	assert.Contains(t, out, "No documents.")
	assert.Contains(t, out, "No messages.")
}
