package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

// LoadGraph reads the graph document at path.
func LoadGraph(path string, strict bool) (*graph.Graph, error) {
	g, err := graph.ReadGraphFile(path, graphOptions(strict)...)
	if err != nil {
		return nil, Classify(err)
	}
	return g, nil
}

// LoadOrCreate reads the graph document at path, or returns an empty graph
// when the file does not exist yet.
func LoadOrCreate(path string, strict bool) (*graph.Graph, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return graph.New(graphOptions(strict)...), nil
	}
	return LoadGraph(path, strict)
}

// SaveGraph writes g to path as a JSON document. The document is written to
// a temporary file in the same directory and renamed into place, so readers
// never observe a partial file.
func SaveGraph(g *graph.Graph, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := graph.WriteDocument(g, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func graphOptions(strict bool) []graph.Option {
	if strict {
		return []graph.Option{graph.WithStrictRelationships()}
	}
	return nil
}
