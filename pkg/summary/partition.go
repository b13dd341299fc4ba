package summary

import "fmt"

// none marks an absent list head or the end of a member list.
const none = -1

// Partition assigns every vertex in [0, n) to exactly one supernode. A
// supernode is named by its representative, the smallest vertex id it has
// absorbed. Members are threaded through an index-based singly linked list:
// head[r] is the first member of supernode r (none once r was absorbed) and
// next[v] is the member after v (none for the last one).
//
// Partition is not safe for concurrent mutation.
type Partition struct {
	owner []int
	head  []int
	next  []int
	count int
}

// NewPartition creates a partition of n singleton supernodes.
func NewPartition(n int) *Partition {
	if n < 0 {
		n = 0
	}
	p := &Partition{
		owner: make([]int, n),
		head:  make([]int, n),
		next:  make([]int, n),
		count: n,
	}
	for i := 0; i < n; i++ {
		p.owner[i] = i
		p.head[i] = i
		p.next[i] = none
	}
	return p
}

// Len returns the number of vertices.
func (p *Partition) Len() int { return len(p.owner) }

// Count returns the number of supernodes.
func (p *Partition) Count() int { return p.count }

// Owner returns the representative of the supernode containing v.
func (p *Partition) Owner(v int) (int, error) {
	if v < 0 || v >= len(p.owner) {
		return none, fmt.Errorf("%w: %d", ErrVertexOutOfRange, v)
	}
	return p.owner[v], nil
}

// ownerOf is the unchecked lookup used by hot loops over graph successors.
func (p *Partition) ownerOf(v int) int { return p.owner[v] }

// IsValid reports whether r currently heads a supernode.
func (p *Partition) IsValid(r int) bool {
	return r >= 0 && r < len(p.head) && p.head[r] != none
}

func (p *Partition) check(r int) error {
	if !p.IsValid(r) {
		return fmt.Errorf("%w: %d", ErrInvalidSupernode, r)
	}
	return nil
}

// Members returns the member vertices of supernode r in list order.
func (p *Partition) Members(r int) ([]int, error) {
	if err := p.check(r); err != nil {
		return nil, err
	}
	var nodes []int
	for v := p.head[r]; v != none; v = p.next[v] {
		nodes = append(nodes, v)
	}
	return nodes, nil
}

// Size counts the members of supernode r by walking its list. It is not
// cached; callers that need it repeatedly should keep their own copy.
func (p *Partition) Size(r int) (int, error) {
	if err := p.check(r); err != nil {
		return 0, err
	}
	counter := 0
	for v := p.head[r]; v != none; v = p.next[v] {
		counter++
	}
	return counter, nil
}

// Merge folds supernodes a and b into the one with the lower id and returns
// that id. The higher id stops being a valid supernode.
func (p *Partition) Merge(a, b int) (int, error) {
	if a == b {
		return none, fmt.Errorf("%w: %d", ErrSelfMerge, a)
	}
	if err := p.check(a); err != nil {
		return none, err
	}
	if err := p.check(b); err != nil {
		return none, err
	}
	lo, hi := min(a, b), max(a, b)

	last := p.head[lo]
	for p.next[last] != none {
		last = p.next[last]
	}
	p.next[last] = p.head[hi]
	p.head[hi] = none

	for v := p.head[lo]; v != none; v = p.next[v] {
		p.owner[v] = lo
	}
	p.count--
	return lo, nil
}

// Supernodes returns all valid representatives in ascending order.
func (p *Partition) Supernodes() []int {
	reps := make([]int, 0, p.count)
	for r, h := range p.head {
		if h != none {
			reps = append(reps, r)
		}
	}
	return reps
}

// Clone returns an independent copy of the partition.
func (p *Partition) Clone() *Partition {
	return &Partition{
		owner: append([]int(nil), p.owner...),
		head:  append([]int(nil), p.head...),
		next:  append([]int(nil), p.next...),
		count: p.count,
	}
}
