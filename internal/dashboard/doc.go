// Package dashboard derives the admin dashboard's summary metrics.
//
// Summarize is a pure function over the current user snapshot: total users,
// total chats (sum of each user's last10 window) and a histogram over the
// four known subscription plans. Users on any other plan are counted in
// Other so the histogram plus Other always equals the user count.
package dashboard
