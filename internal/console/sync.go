// ABOUTME: Data synchronization between the console's view state and the backend
// ABOUTME: Fetches replace snapshots wholesale; mutations re-fetch instead of patching

package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/digistav-admin/internal/client"
)

// Admin-facing messages.
const (
	MsgFetchUserFailed   = "Failed to fetch user"
	MsgEnterAmount       = "Enter amount"
	MsgDeductFailed      = "Failed to deduct credits"
	MsgUserUpdated       = "User updated!"
	MsgUpdateFailed      = "Failed to update user."
	MsgNothingToUpdate   = "Nothing to update"
	MsgDeleteUserFailed  = "Failed to delete user"
	MsgDeleteDocFailed   = "Failed to delete document"
	PromptDeleteUser     = "Are you sure you want to delete this user?"
	PromptDeleteDocument = "Delete this document?"
	msgCreditsUpdatedFmt = "Credits updated: %d"
)

var (
	// ErrInvalidAmount is returned when a deduction amount is empty or not a number.
	ErrInvalidAmount = errors.New("amount must be a number")
	// ErrNoSession is returned when an operation needs the session user before it is loaded.
	ErrNoSession = errors.New("session user not loaded")
	// ErrCanceled is returned when the admin declines a confirmation.
	ErrCanceled = errors.New("canceled")
	// ErrEmptyPatch is returned when an update carries no fields and empty updates are skipped.
	ErrEmptyPatch = errors.New("nothing to update")
)

// Mount performs the initial load: the session user and the user list.
func (c *Console) Mount(ctx context.Context) {
	_ = c.FetchSessionUser(ctx)
	_ = c.FetchAllUsers(ctx)
}

// Refresh explicitly reloads what section s displays. Settings reloads
// everything Mount loads.
func (c *Console) Refresh(ctx context.Context, s Section) {
	switch s {
	case SectionDashboard, SectionSettings:
		c.Mount(ctx)
	case SectionUsers:
		_ = c.FetchAllUsers(ctx)
	case SectionDocuments:
		_ = c.FetchDocuments(ctx)
	case SectionChat:
		_ = c.FetchRecentChat(ctx)
	}
}

// FetchSessionUser replaces the session user. On failure the previous value
// is kept and the admin is notified.
func (c *Console) FetchSessionUser(ctx context.Context) error {
	me, err := c.backend.Me(ctx)
	if err != nil {
		c.logger.Error("failed to fetch session user", "error", err)
		c.notifier.Notify(MsgFetchUserFailed)
		return fmt.Errorf("fetching session user: %w", err)
	}

	c.mu.Lock()
	c.me = me
	c.mu.Unlock()
	return nil
}

// FetchAllUsers replaces the user collection. Failures are logged only.
func (c *Console) FetchAllUsers(ctx context.Context) error {
	users, err := c.backend.ListUsers(ctx)
	if err != nil {
		c.logger.Error("failed to load all users", "error", err)
		return fmt.Errorf("fetching users: %w", err)
	}

	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
	return nil
}

// FetchDocuments replaces the document collection. Failures are logged only.
func (c *Console) FetchDocuments(ctx context.Context) error {
	docs, err := c.backend.ListDocuments(ctx)
	if err != nil {
		c.logger.Error("failed to load documents", "error", err)
		return fmt.Errorf("fetching documents: %w", err)
	}

	c.mu.Lock()
	c.docs = docs
	c.mu.Unlock()
	return nil
}

// FetchRecentChat replaces the chat window. Failures are logged only.
func (c *Console) FetchRecentChat(ctx context.Context) error {
	msgs, err := c.backend.LastChat(ctx)
	if err != nil {
		c.logger.Error("failed to load chat", "error", err)
		return fmt.Errorf("fetching chat: %w", err)
	}
	if msgs == nil {
		msgs = []client.ChatMessage{}
	}

	c.mu.Lock()
	c.chat = msgs
	c.mu.Unlock()
	return nil
}

// DeductCredits deducts raw credits from the session user. raw is the admin's
// input; it must be a whole number. On success the new balance is shown and
// the session user is re-fetched.
func (c *Console) DeductCredits(ctx context.Context, raw string) (int, error) {
	amount, err := parseAmount(raw)
	if err != nil {
		c.notifier.Notify(MsgEnterAmount)
		return 0, err
	}

	me := c.SessionUser()
	if me == nil {
		c.logger.Error("cannot deduct credits", "error", ErrNoSession)
		c.notifier.Notify(MsgDeductFailed)
		return 0, ErrNoSession
	}

	left, err := c.backend.DeductCredits(ctx, me.ID, amount)
	if err != nil {
		c.logger.Error("failed to deduct credits", "user_id", me.ID, "amount", amount, "error", err)
		c.notifier.Notify(MsgDeductFailed)
		return 0, fmt.Errorf("deducting credits: %w", err)
	}

	c.logger.Info("credits deducted", "user_id", me.ID, "amount", amount, "credits_left", left)
	c.notifier.Notify(fmt.Sprintf(msgCreditsUpdatedFmt, left))
	_ = c.FetchSessionUser(ctx)
	return left, nil
}

// UpdateUser sends patch for user id and re-fetches the user list on success.
// An empty patch is sent as-is unless SkipEmptyUpdate is set.
func (c *Console) UpdateUser(ctx context.Context, id string, patch client.UserPatch) error {
	if patch.IsEmpty() && c.skipEmptyUpdate {
		c.logger.Debug("skipping empty user update", "user_id", id)
		c.notifier.Notify(MsgNothingToUpdate)
		return ErrEmptyPatch
	}

	if err := c.backend.UpdateUser(ctx, id, patch); err != nil {
		c.logger.Error("failed to update user", "user_id", id, "error", err)
		c.notifier.Notify(MsgUpdateFailed)
		return fmt.Errorf("updating user: %w", err)
	}

	c.logger.Info("user updated", "user_id", id)
	c.notifier.Notify(MsgUserUpdated)
	_ = c.FetchAllUsers(ctx)
	return nil
}

// DeleteUser deletes user id after confirmation and re-fetches the user list.
func (c *Console) DeleteUser(ctx context.Context, id string) error {
	if !c.confirmer.Confirm(PromptDeleteUser) {
		return ErrCanceled
	}

	if err := c.backend.DeleteUser(ctx, id); err != nil {
		c.logger.Error("failed to delete user", "user_id", id, "error", err)
		c.notifier.Notify(MsgDeleteUserFailed)
		return fmt.Errorf("deleting user: %w", err)
	}

	c.logger.Info("user deleted", "user_id", id)
	c.DiscardDraft(id)
	_ = c.FetchAllUsers(ctx)
	return nil
}

// DeleteDocument deletes document id after confirmation and re-fetches the
// document list.
func (c *Console) DeleteDocument(ctx context.Context, id string) error {
	if !c.confirmer.Confirm(PromptDeleteDocument) {
		return ErrCanceled
	}

	if err := c.backend.DeleteDocument(ctx, id); err != nil {
		c.logger.Error("failed to delete document", "document_id", id, "error", err)
		c.notifier.Notify(MsgDeleteDocFailed)
		return fmt.Errorf("deleting document: %w", err)
	}

	c.logger.Info("document deleted", "document_id", id)
	_ = c.FetchDocuments(ctx)
	return nil
}

// parseAmount validates a deduction amount typed by the admin. Balances are
// whole credits, so fractions are rejected along with anything non-numeric.
func parseAmount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return v, nil
}
