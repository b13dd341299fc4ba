package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned when an edge-list line cannot be parsed.
var ErrMalformedLine = errors.New("graph: malformed edge-list line")

// ReadOptions controls how an edge list is turned into a Graph.
type ReadOptions struct {
	// Symmetric stores every line "u v" as the arcs u -> v and v -> u.
	Symmetric bool
	// Deduplicate removes parallel arcs and sorts each successor list.
	Deduplicate bool
	// NumVertices forces a minimum vertex count, for trailing isolated vertices.
	NumVertices int
}

// LoadEdgeList opens path and reads it with ReadEdgeList.
func LoadEdgeList(path string, opts ReadOptions) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g, err := ReadEdgeList(file, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return g, nil
}

// ReadEdgeList parses whitespace separated "src dst" lines. Blank lines and
// lines starting with '#' or '%' are skipped; extra columns are ignored.
func ReadEdgeList(r io.Reader, opts ReadOptions) (*Graph, error) {
	type arc struct{ u, v int }
	var arcs []arc
	maxNode := -1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedLine, lineNo, line)
		}
		src, err1 := strconv.Atoi(parts[0])
		dst, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || src < 0 || dst < 0 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedLine, lineNo, line)
		}

		arcs = append(arcs, arc{src, dst})
		if opts.Symmetric && src != dst {
			arcs = append(arcs, arc{dst, src})
		}
		if src > maxNode {
			maxNode = src
		}
		if dst > maxNode {
			maxNode = dst
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	n := maxNode + 1
	if opts.NumVertices > n {
		n = opts.NumVertices
	}
	g := NewGraph(n)
	for _, a := range arcs {
		if err := g.AddArc(a.u, a.v); err != nil {
			return nil, err
		}
	}
	if opts.Deduplicate {
		g.Deduplicate()
	}
	return g, nil
}

// Deduplicate removes parallel arcs and sorts every successor list.
func (g *Graph) Deduplicate() {
	g.Arcs = 0
	for u, neighbors := range g.Adjacency {
		if len(neighbors) == 0 {
			continue
		}
		sort.Ints(neighbors)
		j := 0
		for i := 1; i < len(neighbors); i++ {
			if neighbors[i] != neighbors[j] {
				j++
				neighbors[j] = neighbors[i]
			}
		}
		g.Adjacency[u] = neighbors[:j+1]
		g.Arcs += j + 1
	}
}

// FromPairs builds a graph from (src, dst) pairs under the same options as
// ReadEdgeList.
func FromPairs(pairs [][2]int, opts ReadOptions) (*Graph, error) {
	n := opts.NumVertices
	for i, p := range pairs {
		if p[0] < 0 || p[1] < 0 {
			return nil, fmt.Errorf("%w: pair %d: %v", ErrVertexOutOfRange, i, p)
		}
		n = max(n, p[0]+1, p[1]+1)
	}
	g := NewGraph(n)
	for _, p := range pairs {
		var err error
		if opts.Symmetric {
			err = g.AddEdge(p[0], p[1])
		} else {
			err = g.AddArc(p[0], p[1])
		}
		if err != nil {
			return nil, err
		}
	}
	if opts.Deduplicate {
		g.Deduplicate()
	}
	return g, nil
}

// WriteEdgeList writes every arc of v as a "u v" line.
func WriteEdgeList(w io.Writer, v View) error {
	bw := bufio.NewWriter(w)
	for u := 0; u < v.NumVertices(); u++ {
		for _, t := range v.Successors(u) {
			if _, err := fmt.Fprintf(bw, "%d %d\n", u, t); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
