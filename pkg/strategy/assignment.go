package strategy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrMalformedAssignment indicates an unparsable assignment line.
	ErrMalformedAssignment = errors.New("strategy: malformed assignment line")
	// ErrAssignmentSize indicates an assignment that does not cover the graph.
	ErrAssignmentSize = errors.New("strategy: assignment size mismatch")
)

// LoadAssignment reads a vertex -> group assignment file for n vertices.
func LoadAssignment(path string, n int) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open assignment: %w", err)
	}
	defer file.Close()
	return ReadAssignment(file, n)
}

// ReadAssignment parses "vertex group" lines. Vertices that never appear get
// group -1 and stay singletons. Blank lines and lines starting with '#' are
// skipped.
func ReadAssignment(r io.Reader, n int) ([]int, error) {
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedAssignment, lineNo, line)
		}
		v, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedAssignment, lineNo, err)
		}
		group, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedAssignment, lineNo, err)
		}
		if v < 0 || v >= n {
			return nil, fmt.Errorf("%w: line %d: vertex %d outside [0, %d)", ErrAssignmentSize, lineNo, v, n)
		}
		assignment[v] = group
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assignment: %w", err)
	}
	return assignment, nil
}

// groupBy collects, for every non-negative label, the distinct keys whose
// label it is. Groups come out in order of their smallest key.
func groupBy(keys []int, label func(k int) int) [][]int {
	index := make(map[int]int)
	var groups [][]int
	for _, k := range keys {
		l := label(k)
		if l < 0 {
			continue
		}
		i, ok := index[l]
		if !ok {
			i = len(groups)
			index[l] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], k)
	}
	return groups
}
