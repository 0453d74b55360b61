// ABOUTME: Wire types for the DigiStav backend REST API
// ABOUTME: Defines users, documents, chat messages, plans and the partial user patch

package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Plan is a subscription plan name as stored by the backend.
type Plan string

// Known subscription plans. The two paid tiers carry display names as values.
const (
	PlanFree        Plan = "free"
	PlanStarter     Plan = "starter"
	PlanBestValue   Plan = "Best Value"
	PlanMostPopular Plan = "Most Popular"
)

// Plans lists the known plans in display order.
var Plans = []Plan{PlanFree, PlanStarter, PlanBestValue, PlanMostPopular}

// Known reports whether p is one of the four recognized plans.
func (p Plan) Known() bool {
	for _, known := range Plans {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePlan resolves user input to a known plan. Matching ignores case and
// treats '-' and '_' as spaces, so "best-value" selects "Best Value".
func ParsePlan(s string) (Plan, error) {
	norm := strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s)))
	for _, p := range Plans {
		if strings.ToLower(string(p)) == norm {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown plan %q (use free, starter, \"Best Value\" or \"Most Popular\")", s)
}

// User is a platform account as returned by /api/auth/me and /api/auth/users.
// The session user and the admin user list share this shape.
type User struct {
	ID           string      `json:"_id"`
	Email        string      `json:"email"`
	Username     string      `json:"username,omitempty"`
	Subscription Plan        `json:"subscription"`
	CreditsLeft  int         `json:"creditsLeft"`
	Chat         ChatSummary `json:"chat"`
}

// DisplayName returns the username, falling back to the email.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// ChatCount returns the number of entries in the user's last10 window.
func (u User) ChatCount() int {
	return len(u.Chat.Last10)
}

// ChatSummary is the nested chat block on a user record. Entries are kept
// raw since the backend may return ids or embedded messages.
type ChatSummary struct {
	Last10 []json.RawMessage `json:"last10"`
}

// Document is an uploaded file owned by a user.
type Document struct {
	ID           string    `json:"_id"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	MimeType     string    `json:"mimeType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Role identifies the author of a chat message.
type Role string

// Chat message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is a single entry of the recent chat window.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserPatch is the body of the admin user update. Nil fields are omitted from
// the JSON so "no change" stays distinct from "set to zero".
type UserPatch struct {
	CreditsLeft  *int  `json:"creditsLeft,omitempty"`
	Subscription *Plan `json:"subscription,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p UserPatch) IsEmpty() bool {
	return p.CreditsLeft == nil && p.Subscription == nil
}

// deductRequest is the JSON body for PUT /api/auth/deduct-credits.
type deductRequest struct {
	UserID string `json:"userId"`
	Amount int    `json:"amount"`
}

// deductResponse is the JSON response for PUT /api/auth/deduct-credits.
type deductResponse struct {
	CreditsLeft int `json:"creditsLeft"`
}

// lastChatResponse is the JSON response for GET /api/chat/last.
type lastChatResponse struct {
	Messages []ChatMessage `json:"messages"`
}
