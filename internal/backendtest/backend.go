// ABOUTME: In-memory fake of the DigiStav backend REST API for tests
// ABOUTME: Serves every admin route over httptest with gorilla/mux and records requests

// Package backendtest provides a fake backend server for tests that exercise
// the HTTP client and the console end to end.
package backendtest

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/2389/digistav-admin/internal/client"
)

// Request is a recorded request as seen by the fake backend.
type Request struct {
	Method    string
	Path      string
	Body      []byte
	RequestID string
	Cookies   []*http.Cookie
}

// Backend is a fake backend. All state is guarded by mu.
type Backend struct {
	mu       sync.Mutex
	me       *client.User
	users    []client.User
	docs     []client.Document
	chat     []client.ChatMessage
	noChat   bool
	failures map[string]int
	requests []Request
	cookie   *http.Cookie

	server *httptest.Server
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{failures: make(map[string]int)}

	r := mux.NewRouter()
	r.Use(b.record)
	r.HandleFunc("/api/auth/me", b.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/users", b.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/deduct-credits", b.handleDeduct).Methods(http.MethodPut)
	r.HandleFunc("/api/auth/admin/user/{id}/update", b.handleUpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/api/auth/user/{id}", b.handleDeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/api/documents", b.handleListDocuments).Methods(http.MethodGet)
	r.HandleFunc("/api/documents/{id}", b.handleDeleteDocument).Methods(http.MethodDelete)
	r.HandleFunc("/api/chat/last", b.handleLastChat).Methods(http.MethodGet)

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base URL of the fake backend.
func (b *Backend) URL() string {
	return b.server.URL
}

// SetMe sets the session user returned by /api/auth/me. Nil answers 401.
func (b *Backend) SetMe(u *client.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u == nil {
		b.me = nil
		return
	}
	cp := *u
	b.me = &cp
}

// SetUsers replaces the user collection.
func (b *Backend) SetUsers(users ...client.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = slices.Clone(users)
}

// Users returns a copy of the current user collection.
func (b *Backend) Users() []client.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.users)
}

// SetDocuments replaces the document collection.
func (b *Backend) SetDocuments(docs ...client.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs = slices.Clone(docs)
}

// SetChat replaces the chat window.
func (b *Backend) SetChat(msgs ...client.ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chat = slices.Clone(msgs)
	b.noChat = false
}

// OmitChatMessages makes /api/chat/last answer without a messages field.
func (b *Backend) OmitChatMessages() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.noChat = true
}

// RequireCookie makes every route answer 401 unless the cookie is present.
func (b *Backend) RequireCookie(c *http.Cookie) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cookie = c
}

// Fail makes method+path answer with status until cleared with status 0.
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = status
}

// Requests returns every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// RequestsTo returns the requests received for method+path.
func (b *Backend) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// record stores the request, enforces the session cookie and applies
// injected failures before dispatching.
func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Body:      body,
			RequestID: r.Header.Get(client.RequestIDHeader),
			Cookies:   r.Cookies(),
		})
		status := b.failures[r.Method+" "+r.URL.Path]
		required := b.cookie
		b.mu.Unlock()

		if required != nil {
			c, err := r.Cookie(required.Name)
			if err != nil || c.Value != required.Value {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
		}
		if status != 0 {
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.me == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, b.me)
}

func (b *Backend) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := b.users
	if users == nil {
		users = []client.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (b *Backend) handleDeduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string  `json:"userId"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Amount != math.Trunc(req.Amount) {
		writeError(w, http.StatusBadRequest, "amount must be a whole number")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.me == nil || b.me.ID != req.UserID {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	b.me.CreditsLeft -= int(req.Amount)
	for i := range b.users {
		if b.users[i].ID == req.UserID {
			b.users[i].CreditsLeft = b.me.CreditsLeft
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"creditsLeft": b.me.CreditsLeft})
}

func (b *Backend) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch client.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.users {
		if b.users[i].ID != id {
			continue
		}
		if patch.CreditsLeft != nil {
			b.users[i].CreditsLeft = *patch.CreditsLeft
		}
		if patch.Subscription != nil {
			b.users[i].Subscription = *patch.Subscription
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "User updated"})
		return
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (b *Backend) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := slices.IndexFunc(b.users, func(u client.User) bool { return u.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	b.users = slices.Delete(b.users, idx, idx+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (b *Backend) handleListDocuments(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	docs := b.docs
	if docs == nil {
		docs = []client.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (b *Backend) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := slices.IndexFunc(b.docs, func(d client.Document) bool { return d.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	b.docs = slices.Delete(b.docs, idx, idx+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted"})
}

func (b *Backend) handleLastChat(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.noChat {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	msgs := b.chat
	if msgs == nil {
		msgs = []client.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
