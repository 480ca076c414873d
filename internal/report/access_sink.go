package report

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/fsracer/fsracer/internal/fsmodel"
)

type jsonAccessEntry struct {
	Block  string `json:"block"`
	Effect string `json:"effect"`
}

// JSONAccessWriter dumps the FS-access table as a JSON object
// mapping path to an array of {block, effect}.
type JSONAccessWriter struct {
	W        io.Writer
	Accesses *fsmodel.AccessTable
}

func (w *JSONAccessWriter) DumpOutput() error {
	out := make(map[string][]jsonAccessEntry)
	for _, p := range w.Accesses.Paths() {
		accs := w.Accesses.AccessesForPath(p)
		entries := make([]jsonAccessEntry, 0, len(accs))
		for _, a := range accs {
			entries = append(entries, jsonAccessEntry{Block: a.Task, Effect: a.Type.String()})
		}
		out[p] = entries
	}
	enc := json.NewEncoder(w.W)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (w *JSONAccessWriter) Close() error { return nil }

// CSVAccessWriter dumps the FS-access table as path,task,effect rows.
type CSVAccessWriter struct {
	w        *csv.Writer
	Accesses *fsmodel.AccessTable
}

func NewCSVAccessWriter(w io.Writer, accesses *fsmodel.AccessTable) *CSVAccessWriter {
	return &CSVAccessWriter{w: csv.NewWriter(w), Accesses: accesses}
}

func (w *CSVAccessWriter) DumpOutput() error {
	for _, p := range w.Accesses.Paths() {
		for _, a := range w.Accesses.AccessesForPath(p) {
			if err := w.w.Write([]string{p, a.Task, a.Type.String()}); err != nil {
				return err
			}
		}
	}
	w.w.Flush()
	return w.w.Error()
}

func (w *CSVAccessWriter) Close() error { return nil }
