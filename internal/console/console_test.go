// ABOUTME: Tests for console state and synchronization against a stub backend
// ABOUTME: Verifies fetch-after-mutation, notifications, confirmations and no-fetch navigation

package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/digistav-admin/internal/client"
)

// stubBackend is an in-memory Backend that counts calls.
type stubBackend struct {
	mu sync.Mutex

	me    *client.User
	users []client.User
	docs  []client.Document
	chat  []client.ChatMessage

	errs    map[string]error
	calls   map[string]int
	patches []client.UserPatch
	deducts []int
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (s *stubBackend) call(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	return s.errs[name]
}

func (s *stubBackend) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubBackend) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *stubBackend) fail(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[name] = err
}

func (s *stubBackend) Me(ctx context.Context) (*client.User, error) {
	if err := s.call("Me"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.me == nil {
		return nil, &client.APIError{StatusCode: 401, Message: "unauthorized"}
	}
	me := *s.me
	return &me, nil
}

func (s *stubBackend) ListUsers(ctx context.Context) ([]client.User, error) {
	if err := s.call("ListUsers"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.User{}, s.users...), nil
}

func (s *stubBackend) DeductCredits(ctx context.Context, userID string, amount int) (int, error) {
	if err := s.call("DeductCredits"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deducts = append(s.deducts, amount)
	s.me.CreditsLeft -= amount
	return s.me.CreditsLeft, nil
}

func (s *stubBackend) UpdateUser(ctx context.Context, id string, patch client.UserPatch) error {
	if err := s.call("UpdateUser"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches = append(s.patches, patch)
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if patch.CreditsLeft != nil {
			s.users[i].CreditsLeft = *patch.CreditsLeft
		}
		if patch.Subscription != nil {
			s.users[i].Subscription = *patch.Subscription
		}
	}
	return nil
}

func (s *stubBackend) DeleteUser(ctx context.Context, id string) error {
	if err := s.call("DeleteUser"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	s.users = out
	return nil
}

func (s *stubBackend) ListDocuments(ctx context.Context) ([]client.Document, error) {
	if err := s.call("ListDocuments"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Document{}, s.docs...), nil
}

func (s *stubBackend) DeleteDocument(ctx context.Context, id string) error {
	if err := s.call("DeleteDocument"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.docs[:0]
	for _, d := range s.docs {
		if d.ID != id {
			out = append(out, d)
		}
	}
	s.docs = out
	return nil
}

func (s *stubBackend) LastChat(ctx context.Context) ([]client.ChatMessage, error) {
	if err := s.call("LastChat"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat, nil
}

// recordingNotifier captures notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.msgs...)
}

// fixedConfirmer answers every prompt the same way and records prompts.
type fixedConfirmer struct {
	answer  bool
	prompts []string
}

func (f *fixedConfirmer) Confirm(prompt string) bool {
	f.prompts = append(f.prompts, prompt)
	return f.answer
}

type fixture struct {
	backend   *stubBackend
	notifier  *recordingNotifier
	confirmer *fixedConfirmer
	console   *Console
}

func setupConsole(t *testing.T, opts Options) *fixture {
	t.Helper()

	f := &fixture{
		backend:   newStubBackend(),
		notifier:  &recordingNotifier{},
		confirmer: &fixedConfirmer{answer: true},
	}
	f.backend.me = &client.User{ID: "admin", Email: "admin@example.com", CreditsLeft: 100}
	f.backend.users = []client.User{
		{ID: "u1", Email: "a@example.com", Subscription: client.PlanFree, CreditsLeft: 5},
		{ID: "u2", Email: "b@example.com", Subscription: client.PlanStarter, CreditsLeft: 20},
	}
	f.backend.docs = []client.Document{
		{ID: "d1", OriginalName: "plan.pdf"},
		{ID: "d2", OriginalName: "site.png"},
	}

	opts.Notifier = f.notifier
	opts.Confirmer = f.confirmer
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	f.console = New(f.backend, opts)
	return f
}

func userIDs(users []client.User) []string {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestNew_Defaults(t *testing.T) {
	c := New(newStubBackend(), Options{})

	st := c.State()
	assert.Equal(t, SectionDashboard, st.Section)
	assert.Nil(t, st.SessionUser)
	assert.Empty(t, st.Users)
	assert.Empty(t, st.Documents)
	assert.Empty(t, st.Chat)

	// Without a confirmer, deletes are refused.
	assert.ErrorIs(t, c.DeleteUser(context.Background(), "u1"), ErrCanceled)
}

func TestParseSection(t *testing.T) {
	s, err := ParseSection(" Documents ")
	require.NoError(t, err)
	assert.Equal(t, SectionDocuments, s)

	_, err = ParseSection("billing")
	assert.Error(t, err)
}

func TestMount_LoadsSessionUserAndUsers(t *testing.T) {
	f := setupConsole(t, Options{})

	f.console.Mount(context.Background())

	st := f.console.State()
	require.NotNil(t, st.SessionUser)
	assert.Equal(t, "admin", st.SessionUser.ID)
	assert.Equal(t, []string{"u1", "u2"}, userIDs(st.Users))
	assert.Equal(t, 1, f.backend.count("Me"))
	assert.Equal(t, 1, f.backend.count("ListUsers"))
	assert.Zero(t, f.backend.count("ListDocuments"))
	assert.Zero(t, f.backend.count("LastChat"))
}

func TestSetSection_NeverFetches(t *testing.T) {
	f := setupConsole(t, Options{})

	for _, s := range Sections {
		f.console.SetSection(s)
		assert.Equal(t, s, f.console.Section())
	}
	f.console.SetSection(SectionDashboard)

	assert.Zero(t, f.backend.totalCalls())
}

func TestSetSection_DiscardsDrafts(t *testing.T) {
	f := setupConsole(t, Options{})
	f.console.SetSection(SectionUsers)

	f.console.SetDraftCredits("u1", 10)
	f.console.SetSection(SectionUsers)
	_, ok := f.console.Draft("u1")
	assert.True(t, ok, "re-selecting the same section keeps drafts")

	f.console.SetSection(SectionDocuments)
	assert.Empty(t, f.console.Drafts())
}

func TestRefresh_PerSection(t *testing.T) {
	tests := []struct {
		section Section
		want    map[string]int
	}{
		{SectionDashboard, map[string]int{"Me": 1, "ListUsers": 1}},
		{SectionUsers, map[string]int{"ListUsers": 1}},
		{SectionDocuments, map[string]int{"ListDocuments": 1}},
		{SectionChat, map[string]int{"LastChat": 1}},
		{SectionSettings, map[string]int{"Me": 1, "ListUsers": 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.section), func(t *testing.T) {
			f := setupConsole(t, Options{})
			f.console.Refresh(context.Background(), tt.section)

			for name, n := range tt.want {
				assert.Equal(t, n, f.backend.count(name), name)
			}
			assert.Equal(t, len(tt.want), len(f.backend.calls))
		})
	}
}

func TestFetchSessionUser_FailureNotifiesAndKeepsPrevious(t *testing.T) {
	f := setupConsole(t, Options{})
	ctx := context.Background()

	require.NoError(t, f.console.FetchSessionUser(ctx))
	f.backend.fail("Me", errors.New("connection refused"))

	err := f.console.FetchSessionUser(ctx)
	assert.Error(t, err)
	assert.Equal(t, []string{MsgFetchUserFailed}, f.notifier.messages())

	me := f.console.SessionUser()
	require.NotNil(t, me)
	assert.Equal(t, "admin", me.ID)
}

func TestFetchCollections_FailuresAreSilent(t *testing.T) {
	f := setupConsole(t, Options{})
	ctx := context.Background()

	require.NoError(t, f.console.FetchAllUsers(ctx))
	require.NoError(t, f.console.FetchDocuments(ctx))

	boom := errors.New("boom")
	f.backend.fail("ListUsers", boom)
	f.backend.fail("ListDocuments", boom)
	f.backend.fail("LastChat", boom)

	assert.ErrorIs(t, f.console.FetchAllUsers(ctx), boom)
	assert.ErrorIs(t, f.console.FetchDocuments(ctx), boom)
	assert.ErrorIs(t, f.console.FetchRecentChat(ctx), boom)

	assert.Empty(t, f.notifier.messages())
	assert.Len(t, f.console.Users(), 2, "previous snapshot kept")
	assert.Len(t, f.console.Documents(), 2, "previous snapshot kept")
}

func TestFetchRecentChat_NilBecomesEmpty(t *testing.T) {
	f := setupConsole(t, Options{})

	require.NoError(t, f.console.FetchRecentChat(context.Background()))
	chat := f.console.Chat()
	assert.NotNil(t, chat)
	assert.Empty(t, chat)
}

func TestDeductCredits_Success(t *testing.T) {
	f := setupConsole(t, Options{})
	ctx := context.Background()
	require.NoError(t, f.console.FetchSessionUser(ctx))

	left, err := f.console.DeductCredits(ctx, " 10 ")
	require.NoError(t, err)

	assert.Equal(t, 90, left)
	assert.Equal(t, []int{10}, f.backend.deducts)
	assert.Equal(t, []string{"Credits updated: 90"}, f.notifier.messages())
	assert.Equal(t, 2, f.backend.count("Me"), "session user re-fetched")
	assert.Equal(t, 90, f.console.SessionUser().CreditsLeft)
}

func TestDeductCredits_InvalidInputMakesNoCall(t *testing.T) {
	for _, raw := range []string{"", "   ", "ten", "NaN", "Inf", "1e400", "2.5", "12.50", "3e2"} {
		t.Run(raw, func(t *testing.T) {
			f := setupConsole(t, Options{})
			ctx := context.Background()
			require.NoError(t, f.console.FetchSessionUser(ctx))

			_, err := f.console.DeductCredits(ctx, raw)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Zero(t, f.backend.count("DeductCredits"))
			assert.Equal(t, []string{MsgEnterAmount}, f.notifier.messages())
		})
	}
}

func TestDeductCredits_NoSessionUser(t *testing.T) {
	f := setupConsole(t, Options{})

	_, err := f.console.DeductCredits(context.Background(), "5")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Zero(t, f.backend.count("DeductCredits"))
	assert.Equal(t, []string{MsgDeductFailed}, f.notifier.messages())
}

func TestDeductCredits_BackendFailure(t *testing.T) {
	f := setupConsole(t, Options{})
	ctx := context.Background()
	require.NoError(t, f.console.FetchSessionUser(ctx))
	f.backend.fail("DeductCredits", errors.New("insufficient credits"))

	_, err := f.console.DeductCredits(ctx, "5")
	assert.Error(t, err)
	assert.Equal(t, []string{MsgDeductFailed}, f.notifier.messages())
	assert.Equal(t, 1, f.backend.count("Me"), "no re-fetch after failure")
}

func TestUpdateUser_SuccessRefetchesUsers(t *testing.T) {
	f := setupConsole(t, Options{})
	ctx := context.Background()
	credits := 50

	require.NoError(t, f.console.UpdateUser(ctx, "u1", client.UserPatch{CreditsLeft: &credits}))

	assert.Equal(t, []string{MsgUserUpdated}, f.notifier.messages())
	assert.Equal(t, 1, f.backend.count("ListUsers"))
	assert.Equal(t, 50, f.console.Users()[0].CreditsLeft)
}

func TestUpdateUser_Failure(t *testing.T) {
	f := setupConsole(t, Options{})
	f.backend.fail("UpdateUser", &client.APIError{StatusCode: 404, Message: "user not found"})
	credits := 1

	err := f.console.UpdateUser(context.Background(), "missing", client.UserPatch{CreditsLeft: &credits})
	assert.True(t, client.IsStatus(err, 404))
	assert.Equal(t, []string{MsgUpdateFailed}, f.notifier.messages())
	assert.Zero(t, f.backend.count("ListUsers"))
}

func TestUpdateUser_EmptyPatch(t *testing.T) {
	t.Run("sent by default", func(t *testing.T) {
		f := setupConsole(t, Options{})

		require.NoError(t, f.console.UpdateUser(context.Background(), "u1", client.UserPatch{}))
		require.Len(t, f.backend.patches, 1)
		assert.True(t, f.backend.patches[0].IsEmpty())
		assert.Equal(t, []string{MsgUserUpdated}, f.notifier.messages())
	})

	t.Run("skipped when configured", func(t *testing.T) {
		f := setupConsole(t, Options{SkipEmptyUpdate: true})

		err := f.console.UpdateUser(context.Background(), "u1", client.UserPatch{})
		assert.ErrorIs(t, err, ErrEmptyPatch)
		assert.Zero(t, f.backend.count("UpdateUser"))
		assert.Equal(t, []string{MsgNothingToUpdate}, f.notifier.messages())
	})
}

func TestDeleteUser_ConfirmedThenFetchOmitsID(t *testing.T) {
	f := setupConsole(t, Options{})
	ctx := context.Background()

	require.NoError(t, f.console.DeleteUser(ctx, "u1"))

	assert.Equal(t, []string{PromptDeleteUser}, f.confirmer.prompts)
	assert.Equal(t, []string{"u2"}, userIDs(f.console.Users()))
	assert.Empty(t, f.notifier.messages())
}

func TestDeleteUser_Declined(t *testing.T) {
	f := setupConsole(t, Options{})
	f.confirmer.answer = false

	assert.ErrorIs(t, f.console.DeleteUser(context.Background(), "u1"), ErrCanceled)
	assert.Zero(t, f.backend.totalCalls())
}

func TestDeleteUser_Failure(t *testing.T) {
	f := setupConsole(t, Options{})
	f.backend.fail("DeleteUser", errors.New("forbidden"))

	assert.Error(t, f.console.DeleteUser(context.Background(), "u1"))
	assert.Equal(t, []string{MsgDeleteUserFailed}, f.notifier.messages())
	assert.Zero(t, f.backend.count("ListUsers"))
}

func TestDeleteDocument(t *testing.T) {
	f := setupConsole(t, Options{})
	ctx := context.Background()

	require.NoError(t, f.console.DeleteDocument(ctx, "d1"))
	assert.Equal(t, []string{PromptDeleteDocument}, f.confirmer.prompts)

	docs := f.console.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "d2", docs[0].ID)

	f.backend.fail("DeleteDocument", errors.New("gone"))
	assert.Error(t, f.console.DeleteDocument(ctx, "d2"))
	assert.Equal(t, []string{MsgDeleteDocFailed}, f.notifier.messages())

	f.confirmer.answer = false
	assert.ErrorIs(t, f.console.DeleteDocument(ctx, "d2"), ErrCanceled)
}

func TestState_ReturnsCopies(t *testing.T) {
	f := setupConsole(t, Options{})
	f.console.Mount(context.Background())

	st := f.console.State()
	st.Users[0].CreditsLeft = 9999
	st.SessionUser.CreditsLeft = 9999

	assert.Equal(t, 5, f.console.Users()[0].CreditsLeft)
	assert.Equal(t, 100, f.console.SessionUser().CreditsLeft)
}

func TestGo_WaitsForBackgroundOperations(t *testing.T) {
	f := setupConsole(t, Options{})
	ctx := context.Background()

	f.console.Go(ctx, f.console.FetchAllUsers)
	f.console.Go(ctx, f.console.FetchDocuments)
	f.console.Go(ctx, f.console.FetchRecentChat)
	f.console.Wait()

	assert.Len(t, f.console.Users(), 2)
	assert.Len(t, f.console.Documents(), 2)
	assert.Equal(t, 3, f.backend.totalCalls())
}
