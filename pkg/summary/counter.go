package summary

// Counter is a sparse key -> count map. Weight vectors count edges per
// neighbour vertex; the encoders use a Counter of Edge as a literal edge set.
type Counter[K comparable] interface {
	// Add accumulates n onto the count of k, inserting k when absent.
	Add(k K, n int)
	// Get returns the count of k, or 0 when absent.
	Get(k K) int
	// Len returns the number of distinct keys.
	Len() int
	// Range calls fn for every key until fn returns false.
	Range(fn func(k K, n int) bool)
}

// HashCounter is a map-backed Counter.
type HashCounter[K comparable] map[K]int

// NewHashCounter returns an empty HashCounter with room for size keys.
func NewHashCounter[K comparable](size int) HashCounter[K] {
	return make(HashCounter[K], size)
}

func (c HashCounter[K]) Add(k K, n int) { c[k] += n }

func (c HashCounter[K]) Get(k K) int { return c[k] }

func (c HashCounter[K]) Len() int { return len(c) }

func (c HashCounter[K]) Range(fn func(k K, n int) bool) {
	for k, n := range c {
		if !fn(k, n) {
			return
		}
	}
}

// Total sums all counts in c.
func Total[K comparable](c Counter[K]) int {
	total := 0
	c.Range(func(_ K, n int) bool {
		total += n
		return true
	})
	return total
}
