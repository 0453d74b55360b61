// Package render turns console state into something an admin can read.
//
// Text functions (Dashboard, Users, Documents, Chat, Settings) write one
// section each to a terminal, aligned with text/tabwriter and colored with
// fatih/color. Set color.NoColor to get plain output.
//
// WriteReport produces a standalone HTML page with every section, suitable
// for sharing. Chat content is treated as markdown.
package render
