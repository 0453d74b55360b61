// Package session persists the admin's backend session between runs.
//
// # Overview
//
// The backend authenticates with cookies. A browser keeps them for us; a CLI
// has to store them itself. Jar is an http.CookieJar backed by SQLite so the
// session survives process restarts. Cookies are the only local state the
// admin console keeps.
//
// # Storage
//
// One table, keyed by (host, name, path):
//
//	cookies(host, name, path, value, secure, http_only, expires_at, updated_at)
//
// Timestamps are stored as RFC3339 text. Expired cookies are never returned
// by Cookies but remain listed until overwritten or cleared.
//
// # Bootstrapping
//
// A session token obtained elsewhere (for example from the web login) can be
// seeded into the jar:
//
//	jar, err := session.Open(path)
//	err = jar.Seed(baseURL, "token", token)
//
// # Token inspection
//
// Inspect decodes a JWT session cookie without verifying it, to display the
// subject and expiry.
package session
