// ABOUTME: SQLite-backed http.CookieJar that persists the admin session between runs
// ABOUTME: Stores host-only cookies with expiry using modernc.org/sqlite

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a stored cookie does not exist.
var ErrNotFound = errors.New("cookie not found")

// Cookie is a stored cookie row.
type Cookie struct {
	Host      string
	Name      string
	Value     string
	Path      string
	Secure    bool
	HTTPOnly  bool
	ExpiresAt *time.Time // nil for session cookies
	UpdatedAt time.Time
}

// Expired reports whether the cookie is past its expiry at now.
func (c Cookie) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// Jar implements http.CookieJar on top of SQLite. Cookies are host-only:
// the Domain attribute is ignored and ports are not part of the key.
type Jar struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ http.CookieJar = (*Jar)(nil)

// Open opens (or creates) the cookie database at path.
// Parent directories are created if needed.
func Open(path string) (*Jar, error) {
	logger := slog.Default().With("component", "session")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	j := &Jar{
		db:     db,
		logger: logger,
		now:    time.Now,
	}

	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("session store opened", "path", path)
	return j, nil
}

func (j *Jar) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS cookies (
			host TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			value TEXT NOT NULL,
			secure INTEGER NOT NULL DEFAULT 0,
			http_only INTEGER NOT NULL DEFAULT 0,
			expires_at TEXT,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (host, name, path)
		);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (j *Jar) Close() error {
	return j.db.Close()
}

// SetCookies stores cookies received from u. Cookies with a negative MaxAge
// or an Expires in the past are removed.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	ctx := context.Background()
	host := cookieHost(u)
	now := j.now()

	for _, c := range cookies {
		path := c.Path
		if path == "" || !strings.HasPrefix(path, "/") {
			path = "/"
		}

		var expires *time.Time
		switch {
		case c.MaxAge < 0:
			j.remove(ctx, host, c.Name, path)
			continue
		case c.MaxAge > 0:
			t := now.Add(time.Duration(c.MaxAge) * time.Second)
			expires = &t
		case !c.Expires.IsZero():
			if !c.Expires.After(now) {
				j.remove(ctx, host, c.Name, path)
				continue
			}
			t := c.Expires
			expires = &t
		}

		stored := Cookie{
			Host:      host,
			Name:      c.Name,
			Value:     c.Value,
			Path:      path,
			Secure:    c.Secure,
			HTTPOnly:  c.HttpOnly,
			ExpiresAt: expires,
			UpdatedAt: now,
		}
		if err := j.put(ctx, stored); err != nil {
			j.logger.Error("failed to store cookie", "host", host, "name", c.Name, "error", err)
		}
	}
}

// Cookies returns the unexpired cookies to send to u, most specific path first.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	stored, err := j.listHost(context.Background(), cookieHost(u))
	if err != nil {
		j.logger.Error("failed to load cookies", "host", u.Host, "error", err)
		return nil
	}

	now := j.now()
	reqPath := u.Path
	if reqPath == "" {
		reqPath = "/"
	}

	var matched []Cookie
	for _, c := range stored {
		if c.Expired(now) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		if !pathMatch(reqPath, c.Path) {
			continue
		}
		matched = append(matched, c)
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return len(matched[a].Path) > len(matched[b].Path)
	})

	out := make([]*http.Cookie, len(matched))
	for i, c := range matched {
		out[i] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	return out
}

// Seed stores a session cookie for baseURL's host, as if the server had set
// it. Used to bootstrap a session from a configured token.
func (j *Jar) Seed(baseURL, name, value string) error {
	if name == "" || value == "" {
		return fmt.Errorf("cookie name and value required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	return j.put(context.Background(), Cookie{
		Host:      cookieHost(u),
		Name:      name,
		Value:     value,
		Path:      "/",
		Secure:    u.Scheme == "https",
		UpdatedAt: j.now(),
	})
}

// Get returns the cookie stored for host and name on the root path.
func (j *Jar) Get(ctx context.Context, host, name string) (*Cookie, error) {
	cookies, err := j.listHost(ctx, strings.ToLower(host))
	if err != nil {
		return nil, err
	}
	for i := range cookies {
		if cookies[i].Name == name && cookies[i].Path == "/" {
			return &cookies[i], nil
		}
	}
	return nil, ErrNotFound
}

// List returns every stored cookie, including expired ones.
func (j *Jar) List(ctx context.Context) ([]Cookie, error) {
	return j.query(ctx, `
		SELECT host, name, path, value, secure, http_only, expires_at, updated_at
		FROM cookies
		ORDER BY host, name, path
	`)
}

// Clear removes every stored cookie.
func (j *Jar) Clear(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM cookies`); err != nil {
		return fmt.Errorf("clearing cookies: %w", err)
	}
	return nil
}

func (j *Jar) listHost(ctx context.Context, host string) ([]Cookie, error) {
	return j.query(ctx, `
		SELECT host, name, path, value, secure, http_only, expires_at, updated_at
		FROM cookies
		WHERE host = ?
		ORDER BY name, path
	`, host)
}

func (j *Jar) query(ctx context.Context, query string, args ...any) ([]Cookie, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying cookies: %w", err)
	}
	defer rows.Close()

	var cookies []Cookie
	for rows.Next() {
		var c Cookie
		var secure, httpOnly int
		var expiresAt sql.NullString
		var updatedAt string

		if err := rows.Scan(&c.Host, &c.Name, &c.Path, &c.Value, &secure, &httpOnly, &expiresAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning cookie: %w", err)
		}
		c.Secure = secure != 0
		c.HTTPOnly = httpOnly != 0

		if expiresAt.Valid {
			t, err := time.Parse(time.RFC3339, expiresAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing expires_at: %w", err)
			}
			c.ExpiresAt = &t
		}
		c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}

func (j *Jar) put(ctx context.Context, c Cookie) error {
	var expiresAt sql.NullString
	if c.ExpiresAt != nil {
		expiresAt = sql.NullString{String: c.ExpiresAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO cookies (host, name, path, value, secure, http_only, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(host, name, path) DO UPDATE SET
			value = excluded.value,
			secure = excluded.secure,
			http_only = excluded.http_only,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, c.Host, c.Name, c.Path, c.Value, boolToInt(c.Secure), boolToInt(c.HTTPOnly), expiresAt,
		c.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing cookie: %w", err)
	}
	return nil
}

func (j *Jar) remove(ctx context.Context, host, name, path string) {
	_, err := j.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`, host, name, path)
	if err != nil {
		j.logger.Error("failed to remove cookie", "host", host, "name", name, "error", err)
	}
}

// cookieHost returns the lowercased host without port.
func cookieHost(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}

// pathMatch implements the RFC 6265 path-match rule.
func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
