// Package console implements the admin console: its view state and the
// synchronization of that state with the backend.
//
// # Sections
//
// The console shows exactly one Section at a time. Switching sections never
// triggers a fetch; data is loaded on Mount, on an explicit Refresh, and
// after every successful mutation.
//
// # Snapshots
//
// Each fetch replaces its snapshot wholesale. Mutations never edit snapshots
// locally; they call the backend and re-fetch the affected collection, so
// what the admin sees is always what the backend last returned. Concurrent
// fetches of the same resource are not ordered: the last response wins.
//
// # Drafts
//
// Pending user edits are kept per user id and turned into a partial update
// by SubmitDraft. Only the fields the admin touched are sent.
//
// # Prompts
//
// Destructive operations ask a Confirmer first; user-visible failures go to
// a Notifier. Prompter implements both for a terminal.
package console
