package report

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/standardbeagle/smellscan/internal/engine"
	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/types"
)

// File names written by WriteFiles.
const (
	RecommendationsFile = "recommendations.csv"
	MetricsFile         = "metrics.csv"
	CouplingFile        = "coupling.csv"
)

// WriteFiles writes the recommendations, metrics and coupling of every
// result into dir, replacing earlier reports. It returns the paths written.
func WriteFiles(dir string, results []*engine.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, smerrors.NewFileError("mkdir", dir, err)
	}

	var (
		recs       []types.Recommendation
		collection []types.MetricCollection
		coupling   []types.ClassCouplingMetrics
	)
	for _, r := range results {
		recs = append(recs, r.Recommendations...)
		collection = append(collection, r.Metrics)
		coupling = append(coupling, r.Coupling...)
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{RecommendationsFile, func(w io.Writer) error { return WriteRecommendationsCSV(w, recs) }},
		{MetricsFile, func(w io.Writer) error { return WriteMetricsCSV(w, collection...) }},
		{CouplingFile, func(w io.Writer) error { return WriteCouplingCSV(w, coupling) }},
	}

	written := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := writeFile(path, out.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return smerrors.NewFileError("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = smerrors.NewFileError("close", path, cerr)
		}
	}()

	buf := bufio.NewWriter(f)
	if err := write(buf); err != nil {
		return smerrors.NewFileError("write", path, err)
	}
	if err := buf.Flush(); err != nil {
		return smerrors.NewFileError("write", path, err)
	}
	return nil
}
