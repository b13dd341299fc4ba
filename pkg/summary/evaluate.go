package summary

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Evaluation reports how much an Encoding shrank the original graph.
type Evaluation struct {
	VerticesBefore   int     `json:"vertices_before" yaml:"vertices_before"`
	VerticesAfter    int     `json:"vertices_after" yaml:"vertices_after"`
	EdgesBefore      int     `json:"edges_before" yaml:"edges_before"`
	EdgesAfter       int     `json:"edges_after" yaml:"edges_after"`
	Superedges       int     `json:"superedges" yaml:"superedges"`
	CorrectionsPlus  int     `json:"corrections_plus" yaml:"corrections_plus"`
	CorrectionsMinus int     `json:"corrections_minus" yaml:"corrections_minus"`
	CompressionRatio float64 `json:"compression_ratio" yaml:"compression_ratio"`

	MeanSupernodeSize   float64 `json:"mean_supernode_size" yaml:"mean_supernode_size"`
	StdDevSupernodeSize float64 `json:"stddev_supernode_size" yaml:"stddev_supernode_size"`
	MaxSupernodeSize    float64 `json:"max_supernode_size" yaml:"max_supernode_size"`
}

// CompressionRatio is 1 - (|P| + |C+| + |C-|) / edges. A graph without
// edges has nothing to compress and reports 0.
func CompressionRatio(superedges, plus, minus, edges int) float64 {
	if edges == 0 {
		return 0
	}
	return 1 - float64(superedges+plus+minus)/float64(edges)
}

// Evaluate summarises enc against the arc count of the graph it encodes.
func Evaluate(enc *Encoding) Evaluation {
	eval := Evaluation{
		VerticesBefore:   enc.NumVertices,
		VerticesAfter:    enc.NumSupernodes,
		EdgesBefore:      enc.NumArcs,
		EdgesAfter:       enc.Size(),
		Superedges:       len(enc.P),
		CorrectionsPlus:  len(enc.CPlus),
		CorrectionsMinus: len(enc.CMinus),
		CompressionRatio: CompressionRatio(len(enc.P), len(enc.CPlus), len(enc.CMinus), enc.NumArcs),
	}

	if len(enc.Sizes) > 0 {
		sizes := make([]float64, len(enc.Sizes))
		for i, s := range enc.Sizes {
			sizes[i] = float64(s)
		}
		eval.MaxSupernodeSize = floats.Max(sizes)
		if len(sizes) > 1 {
			eval.MeanSupernodeSize, eval.StdDevSupernodeSize = stat.MeanStdDev(sizes, nil)
		} else {
			eval.MeanSupernodeSize = sizes[0]
		}
	}
	return eval
}

// Lines renders the evaluation as the three-line console summary.
func (e Evaluation) Lines() []string {
	return []string{
		fmt.Sprintf("@Compression: %.5f", e.CompressionRatio),
		fmt.Sprintf("@nodes: %d\t ===> \t%d", e.VerticesBefore, e.VerticesAfter),
		fmt.Sprintf("@edges: %d\t ===> \t%d(P:%d, C+:%d, C-:%d)",
			e.EdgesBefore, e.EdgesAfter, e.Superedges, e.CorrectionsPlus, e.CorrectionsMinus),
	}
}
