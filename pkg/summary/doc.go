// Package summary compresses a directed graph into supernodes, superedges
// and correction arcs.
//
// A Partition groups vertices into supernodes. Strategies score candidate
// merges with weight vectors, Jaccard similarity and the savings estimate,
// and commit them through a Session. Once merging stops an Encoder turns the
// partition into an Encoding: a superedge list P plus the arcs that must be
// added (C+) or removed (C-) to reconstruct the graph exactly. Evaluate
// reports the compression ratio and Drop trades exactness for size under a
// per-vertex error budget.
package summary
