// ABOUTME: AdminConsole view state: sections, fetched snapshots and pending drafts
// ABOUTME: Holds what the admin sees; all network work lives in sync.go

package console

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/2389/digistav-admin/internal/client"
)

// Section is one of the mutually exclusive views of the console.
type Section string

// Console sections.
const (
	SectionDashboard Section = "dashboard"
	SectionUsers     Section = "users"
	SectionDocuments Section = "documents"
	SectionChat      Section = "chat"
	SectionSettings  Section = "settings"
)

// Sections lists all sections in navigation order.
var Sections = []Section{SectionDashboard, SectionUsers, SectionDocuments, SectionChat, SectionSettings}

// ParseSection resolves a section name.
func ParseSection(s string) (Section, error) {
	name := Section(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Sections, name) {
		return name, nil
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// Backend is the set of backend calls the console needs. *client.Client
// satisfies it; tests provide doubles.
type Backend interface {
	Me(ctx context.Context) (*client.User, error)
	ListUsers(ctx context.Context) ([]client.User, error)
	DeductCredits(ctx context.Context, userID string, amount int) (int, error)
	UpdateUser(ctx context.Context, id string, patch client.UserPatch) error
	DeleteUser(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]client.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	LastChat(ctx context.Context) ([]client.ChatMessage, error)
}

// Notifier shows a message the admin must acknowledge.
type Notifier interface {
	Notify(msg string)
}

// Confirmer asks the admin to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Options configures a Console.
type Options struct {
	Notifier  Notifier
	Confirmer Confirmer
	Logger    *slog.Logger
	// SkipEmptyUpdate makes UpdateUser refuse a patch with no fields instead
	// of sending "{}" to the backend.
	SkipEmptyUpdate bool
}

// State is a copy of the console's view state.
type State struct {
	Section     Section
	SessionUser *client.User
	Users       []client.User
	Documents   []client.Document
	Chat        []client.ChatMessage
}

// Console is the admin console. Snapshots are replaced wholesale by fetches
// and never modified in place. Two in-flight fetches of the same resource
// race; the last response to arrive wins.
type Console struct {
	backend         Backend
	notifier        Notifier
	confirmer       Confirmer
	logger          *slog.Logger
	skipEmptyUpdate bool

	mu      sync.RWMutex
	section Section
	me      *client.User
	users   []client.User
	docs    []client.Document
	chat    []client.ChatMessage
	drafts  map[string]Draft

	wg sync.WaitGroup
}

// New creates a console on the dashboard section with empty state.
func New(backend Backend, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	confirmer := opts.Confirmer
	if confirmer == nil {
		confirmer = denyConfirmer{}
	}

	return &Console{
		backend:         backend,
		notifier:        notifier,
		confirmer:       confirmer,
		logger:          logger.With("component", "console"),
		skipEmptyUpdate: opts.SkipEmptyUpdate,
		section:         SectionDashboard,
		drafts:          make(map[string]Draft),
	}
}

// Section returns the current section.
func (c *Console) Section() Section {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.section
}

// SetSection switches the visible section. It never fetches; pending drafts
// are discarded because navigating away abandons the edit.
func (c *Console) SetSection(s Section) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.section == s {
		return
	}
	c.section = s
	clear(c.drafts)
}

// State returns a copy of the view state.
func (c *Console) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := State{
		Section:   c.section,
		Users:     slices.Clone(c.users),
		Documents: slices.Clone(c.docs),
		Chat:      slices.Clone(c.chat),
	}
	if c.me != nil {
		me := *c.me
		st.SessionUser = &me
	}
	return st
}

// SessionUser returns a copy of the session user, or nil before it is loaded.
func (c *Console) SessionUser() *client.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.me == nil {
		return nil
	}
	me := *c.me
	return &me
}

// Users returns the current user snapshot.
func (c *Console) Users() []client.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.users)
}

// Documents returns the current document snapshot.
func (c *Console) Documents() []client.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.docs)
}

// Chat returns the current chat window.
func (c *Console) Chat() []client.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.chat)
}

// Go runs op in the background. Its error has already been reported by the
// operation itself, so it is dropped. Use Wait to block until all
// background operations finish.
func (c *Console) Go(ctx context.Context, op func(context.Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = op(ctx)
	}()
}

// Wait blocks until every operation started with Go has returned.
func (c *Console) Wait() {
	c.wg.Wait()
}

type discardNotifier struct{}

func (discardNotifier) Notify(string) {}

// denyConfirmer refuses everything, so a console without a confirmer can
// never delete.
type denyConfirmer struct{}

func (denyConfirmer) Confirm(string) bool { return false }
