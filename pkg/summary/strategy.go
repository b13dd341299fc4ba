package summary

import "context"

// Strategy decides which supernodes to merge. The driver calls Initial once,
// then alternates Divide and Merge for each iteration. A Strategy only
// touches the partition through the Session it is handed.
type Strategy interface {
	Name() string

	// Initial runs before the first iteration. It may block on setup work
	// such as computing communities and should honour ctx.
	Initial(ctx context.Context, s *Session) error

	// Divide splits the current supernodes into candidate groups. Returning
	// no groups ends the run early.
	Divide(s *Session, iteration int) ([][]int, error)

	// Merge merges within the groups and returns the number of merges made.
	Merge(s *Session, groups [][]int, iteration int) (int, error)
}
