// ABOUTME: Per-user edit drafts for the users section
// ABOUTME: Drafts are keyed by user id so edits to one row never leak into another

package console

import (
	"context"
	"maps"

	"github.com/2389/digistav-admin/internal/client"
)

// Draft holds unsaved edits for one user. Nil fields are untouched.
type Draft struct {
	Credits *int
	Plan    *client.Plan
}

// Patch converts the draft into an update body.
func (d Draft) Patch() client.UserPatch {
	return client.UserPatch{CreditsLeft: d.Credits, Subscription: d.Plan}
}

// SetDraftCredits records a pending credit balance for user id.
func (c *Console) SetDraftCredits(id string, credits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.drafts[id]
	d.Credits = &credits
	c.drafts[id] = d
}

// SetDraftPlan records a pending plan for user id.
func (c *Console) SetDraftPlan(id string, plan client.Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.drafts[id]
	d.Plan = &plan
	c.drafts[id] = d
}

// Draft returns the draft for user id.
func (c *Console) Draft(id string) (Draft, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.drafts[id]
	return d, ok
}

// Drafts returns a copy of all pending drafts.
func (c *Console) Drafts() map[string]Draft {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.drafts)
}

// DiscardDraft drops the draft for user id.
func (c *Console) DiscardDraft(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafts, id)
}

// SubmitDraft sends the draft for user id through UpdateUser. The draft is
// consumed whether or not the update succeeds. Submitting with no draft sends
// an empty patch.
func (c *Console) SubmitDraft(ctx context.Context, id string) error {
	c.mu.Lock()
	d := c.drafts[id]
	delete(c.drafts, id)
	c.mu.Unlock()

	return c.UpdateUser(ctx, id, d.Patch())
}
