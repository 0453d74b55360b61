// Package client implements the HTTP client for the DigiStav backend.
//
// # Overview
//
// Every backend route used by the admin console has one typed method on
// Client. Methods return decoded values or an error; they never touch view
// state. Reconciling state after a mutation is the console's job.
//
// # Routes
//
//   - Me: GET /api/auth/me
//   - ListUsers: GET /api/auth/users
//   - DeductCredits: PUT /api/auth/deduct-credits
//   - UpdateUser: PUT /api/auth/admin/user/{id}/update
//   - DeleteUser: DELETE /api/auth/user/{id}
//   - ListDocuments: GET /api/documents
//   - DeleteDocument: DELETE /api/documents/{id}
//   - LastChat: GET /api/chat/last
//
// # Session
//
// The backend authenticates with cookies. Pass a cookie jar in Options and
// every request carries the session cookie; cookies set by the server are
// stored back into the jar.
//
// # Errors
//
// Transport failures wrap ErrTransport. Non-2xx responses return *APIError
// with the status code, the server's error message and the request id sent
// in the X-Request-ID header.
//
// # Usage
//
//	c, err := client.New(client.Options{
//	    BaseURL: "https://api.example.com",
//	    Jar:     jar,
//	})
//	users, err := c.ListUsers(ctx)
package client
