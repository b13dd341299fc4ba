package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Report formats accepted by WriteReport.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Report is the printable outcome of a Run.
type Report struct {
	Strategy   string        `json:"strategy" yaml:"strategy"`
	Encoder    string        `json:"encoder" yaml:"encoder"`
	Evaluation Evaluation    `json:"evaluation" yaml:"evaluation"`
	Drop       *DropResult   `json:"drop,omitempty" yaml:"drop,omitempty"`
	Interim    []InterimEval `json:"interim,omitempty" yaml:"interim,omitempty"`
	Statistics Statistics    `json:"statistics" yaml:"statistics"`
}

// Report collects the printable parts of r.
func (r *Result) Report() Report {
	return Report{
		Strategy:   r.Strategy,
		Encoder:    r.Encoder,
		Evaluation: r.Evaluation,
		Drop:       r.Drop,
		Interim:    r.Interim,
		Statistics: r.Statistics,
	}
}

// WriteReport renders rep to w as text, json or yaml.
func WriteReport(w io.Writer, format string, rep Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, rep)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeText(w io.Writer, rep Report) error {
	for _, it := range rep.Interim {
		if _, err := fmt.Fprintf(w, "[iteration %d]\n", it.Iteration); err != nil {
			return err
		}
		for _, line := range it.Evaluation.Lines() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	for _, line := range rep.Evaluation.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if rep.Drop != nil {
		if _, err := fmt.Fprintf(w, "@Drop(%g): %.5f (dropped P:%d, C+:%d, C-:%d)\n",
			rep.Drop.ErrorBound, rep.Drop.UndirectedCompressionRatio,
			rep.Drop.DroppedSuperedges, rep.Drop.DroppedPlus, rep.Drop.DroppedMinus); err != nil {
			return err
		}
	}
	st := rep.Statistics
	_, err := fmt.Fprintf(w, "@time: total %s (initial %s, merge %s, encode %s, drop %s)\n",
		st.Total.Round(time.Microsecond), st.Initial.Round(time.Microsecond),
		st.Merge.Round(time.Microsecond), st.Encode.Round(time.Microsecond),
		st.Drop.Round(time.Microsecond))
	return err
}

// WriteEncoding writes enc as indented JSON.
func WriteEncoding(w io.Writer, enc *Encoding) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(enc)
}

// ReadEncoding reads an encoding written by WriteEncoding and rebuilds the
// vertex owners from the member lists.
func ReadEncoding(r io.Reader) (*Encoding, error) {
	var enc Encoding
	if err := json.NewDecoder(r).Decode(&enc); err != nil {
		return nil, err
	}
	enc.Owner = make([]int, enc.NumVertices)
	for i, members := range enc.Members {
		for _, v := range members {
			if v < 0 || v >= enc.NumVertices {
				return nil, fmt.Errorf("%w: member %d of supernode %d", ErrVertexOutOfRange, v, i)
			}
			enc.Owner[v] = i
		}
	}
	return &enc, nil
}
