// ABOUTME: Derived dashboard metrics computed from a user snapshot
// ABOUTME: Pure projection with no state of its own: totals and plan histogram

package dashboard

import "github.com/2389/digistav-admin/internal/client"

// PlanCount is one bar of the subscription histogram.
type PlanCount struct {
	Plan  client.Plan
	Count int
}

// Summary is the dashboard's view of a user collection.
type Summary struct {
	TotalUsers int
	TotalChats int
	// Plans holds one entry per known plan, in client.Plans order.
	Plans []PlanCount
	// Other counts users whose plan is not one of the known plans.
	Other int
}

// Summarize computes the dashboard metrics for users. It reads the slice
// only and returns the same result for the same input.
func Summarize(users []client.User) Summary {
	counts := make(map[client.Plan]int, len(client.Plans))
	s := Summary{TotalUsers: len(users)}

	for _, u := range users {
		s.TotalChats += u.ChatCount()
		if u.Subscription.Known() {
			counts[u.Subscription]++
		} else {
			s.Other++
		}
	}

	s.Plans = make([]PlanCount, len(client.Plans))
	for i, p := range client.Plans {
		s.Plans[i] = PlanCount{Plan: p, Count: counts[p]}
	}
	return s
}

// Count returns the number of users on plan p.
func (s Summary) Count(p client.Plan) int {
	for _, pc := range s.Plans {
		if pc.Plan == p {
			return pc.Count
		}
	}
	return 0
}
