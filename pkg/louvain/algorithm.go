package louvain

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Result represents the algorithm output
type Result struct {
	Levels      []LevelInfo `json:"levels"`
	Communities []int       `json:"communities"` // communities[v] = final community of input node v
	Count       int         `json:"count"`
	Modularity  float64     `json:"modularity"`
	NumLevels   int         `json:"num_levels"`
	Statistics  Statistics  `json:"statistics"`
}

// LevelInfo contains information about each hierarchical level
type LevelInfo struct {
	Level             int     `json:"level"`
	Nodes             int     `json:"nodes"`
	NumCommunities    int     `json:"num_communities"`
	NumMoves          int     `json:"num_moves"`
	InitialModularity float64 `json:"initial_modularity"`
	Modularity        float64 `json:"modularity"`
	RuntimeMS         int64   `json:"runtime_ms"`
}

// Statistics contains algorithm performance metrics
type Statistics struct {
	TotalIterations int   `json:"total_iterations"`
	TotalMoves      int   `json:"total_moves"`
	RuntimeMS       int64 `json:"runtime_ms"`
}

// Community represents the state of communities
type Community struct {
	NodeToCommunity []int     // nodeToComm[i] = community ID of node i
	Total           []float64 // total[c] = sum of degrees in c
	Internal        []float64 // internal[c] = weight of links inside c, both directions
}

// NewCommunity initializes each node in its own community
func NewCommunity(graph *Graph) *Community {
	n := graph.NumNodes
	comm := &Community{
		NodeToCommunity: make([]int, n),
		Total:           make([]float64, n),
		Internal:        make([]float64, n),
	}
	for i := 0; i < n; i++ {
		comm.NodeToCommunity[i] = i
		comm.Total[i] = graph.Degrees[i]
		comm.Internal[i] = graph.SelfLoop(i)
	}
	return comm
}

// CalculateModularity computes Newman's modularity
func CalculateModularity(graph *Graph, comm *Community) float64 {
	m2 := graph.TotalWeight
	if m2 == 0 {
		return 0.0
	}
	modularity := 0.0
	for c := range comm.Total {
		if comm.Total[c] > 0 {
			modularity += comm.Internal[c]/m2 - (comm.Total[c]/m2)*(comm.Total[c]/m2)
		}
	}
	return modularity
}

func (comm *Community) remove(graph *Graph, node, c int, linksToC float64) {
	comm.Total[c] -= graph.Degrees[node]
	comm.Internal[c] -= 2*linksToC + graph.SelfLoop(node)
	comm.NodeToCommunity[node] = -1
}

func (comm *Community) insert(graph *Graph, node, c int, linksToC float64) {
	comm.Total[c] += graph.Degrees[node]
	comm.Internal[c] += 2*linksToC + graph.SelfLoop(node)
	comm.NodeToCommunity[node] = c
}

// neighborCommunities sums the weight from node into each neighbouring
// community, self-loops excluded. The node's own community is always listed
// first; the rest follow in ascending id order.
func neighborCommunities(graph *Graph, comm *Community, node int) ([]int, map[int]float64) {
	own := comm.NodeToCommunity[node]
	weights := map[int]float64{own: 0}
	for i, neighbor := range graph.Adjacency[node] {
		if neighbor == node {
			continue
		}
		weights[comm.NodeToCommunity[neighbor]] += graph.Weights[node][i]
	}
	order := make([]int, 0, len(weights))
	for c := range weights {
		if c != own {
			order = append(order, c)
		}
	}
	slices.Sort(order)
	return append([]int{own}, order...), weights
}

// OneLevel moves nodes between communities until a pass no longer improves
// modularity by more than MinModularityGain.
func OneLevel(graph *Graph, comm *Community, config *Config, logger zerolog.Logger) (bool, int, int, error) {
	improvement := false
	totalMoves := 0
	rng := rand.New(rand.NewSource(config.RandomSeed()))
	m2 := graph.TotalWeight

	nodes := make([]int, graph.NumNodes)
	for i := range nodes {
		nodes[i] = i
	}
	rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })

	current := CalculateModularity(graph, comm)
	iteration := 0
	for ; iteration < config.MaxIterations(); iteration++ {
		iterationMoves := 0
		for _, node := range nodes {
			oldComm := comm.NodeToCommunity[node]
			order, weights := neighborCommunities(graph, comm, node)
			comm.remove(graph, node, oldComm, weights[oldComm])

			degree := graph.Degrees[node]
			bestComm, bestGain := oldComm, 0.0
			for _, c := range order {
				gain := weights[c] - comm.Total[c]*degree/m2
				if gain > bestGain {
					bestComm, bestGain = c, gain
				}
			}
			comm.insert(graph, node, bestComm, weights[bestComm])
			if bestComm != oldComm {
				iterationMoves++
			}
		}
		totalMoves += iterationMoves

		next := CalculateModularity(graph, comm)
		if config.EnableProgress() {
			logger.Info().
				Int("iteration", iteration+1).
				Int("moves", iterationMoves).
				Float64("modularity", next).
				Msg("Local optimization progress")
		}
		if iterationMoves > 0 {
			improvement = true
		}
		gained := next - current
		current = next
		if iterationMoves == 0 || gained <= config.MinModularityGain() {
			logger.Debug().Int("iteration", iteration+1).Msg("Converged")
			iteration++
			break
		}
	}
	return improvement, totalMoves, iteration, nil
}

// Renumber maps community ids to dense ids in order of first appearance
// and returns the number of communities.
func Renumber(comm *Community) ([]int, int) {
	dense := make(map[int]int)
	out := make([]int, len(comm.NodeToCommunity))
	for i, c := range comm.NodeToCommunity {
		id, ok := dense[c]
		if !ok {
			id = len(dense)
			dense[c] = id
		}
		out[i] = id
	}
	return out, len(dense)
}

// AggregateGraph creates a super-graph whose node i is community i of
// labels. Links inside a community become a self-loop.
func AggregateGraph(graph *Graph, labels []int, count int, logger zerolog.Logger) (*Graph, error) {
	if count == 0 {
		return nil, fmt.Errorf("%w: no communities to aggregate", ErrInvalidGraph)
	}
	links := make([]map[int]float64, count)
	for i := range links {
		links[i] = make(map[int]float64)
	}
	for node := 0; node < graph.NumNodes; node++ {
		ci := labels[node]
		for i, neighbor := range graph.Adjacency[node] {
			links[ci][labels[neighbor]] += graph.Weights[node][i]
		}
	}

	superGraph := NewGraph(count)
	for ci, m := range links {
		targets := make([]int, 0, len(m))
		for cj := range m {
			targets = append(targets, cj)
		}
		slices.Sort(targets)
		for _, cj := range targets {
			superGraph.addLink(ci, cj, m[cj])
		}
	}

	logger.Debug().
		Int("original_nodes", graph.NumNodes).
		Int("super_nodes", count).
		Msg("Graph aggregation completed")
	return superGraph, nil
}

// Run executes the complete Louvain algorithm
func Run(graph *Graph, config *Config, ctx context.Context) (*Result, error) {
	startTime := time.Now()
	logger := config.CreateLogger()

	if err := graph.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Communities: make([]int, graph.NumNodes)}
	for i := range result.Communities {
		result.Communities[i] = i
	}
	result.Count = graph.NumNodes
	if graph.TotalWeight == 0 {
		result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()
		return result, nil
	}

	logger.Info().
		Int("nodes", graph.NumNodes).
		Float64("total_weight", graph.TotalWeight).
		Msg("Starting Louvain algorithm")

	result.Modularity = CalculateModularity(graph, NewCommunity(graph))
	current := graph
	for level := 0; level < config.MaxLevels(); level++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		levelStart := time.Now()
		comm := NewCommunity(current)
		initialMod := CalculateModularity(current, comm)

		improvement, moves, iterations, err := OneLevel(current, comm, config, logger)
		if err != nil {
			return nil, fmt.Errorf("local optimization failed at level %d: %w", level, err)
		}
		labels, count := Renumber(comm)

		result.Levels = append(result.Levels, LevelInfo{
			Level:             level,
			Nodes:             current.NumNodes,
			NumCommunities:    count,
			NumMoves:          moves,
			InitialModularity: initialMod,
			Modularity:        CalculateModularity(current, comm),
			RuntimeMS:         time.Since(levelStart).Milliseconds(),
		})
		result.Statistics.TotalMoves += moves
		result.Statistics.TotalIterations += iterations

		if !improvement {
			logger.Debug().Int("level", level).Msg("No improvement, stopping")
			break
		}
		for v, c := range result.Communities {
			result.Communities[v] = labels[c]
		}
		result.Count = count
		result.Modularity = result.Levels[len(result.Levels)-1].Modularity

		if count == 1 || count == current.NumNodes {
			break
		}
		current, err = AggregateGraph(current, labels, count, logger)
		if err != nil {
			return nil, fmt.Errorf("aggregation failed at level %d: %w", level, err)
		}
	}

	result.NumLevels = len(result.Levels)
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()

	logger.Info().
		Int("levels", result.NumLevels).
		Int("communities", result.Count).
		Float64("final_modularity", result.Modularity).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Louvain algorithm completed")
	return result, nil
}
