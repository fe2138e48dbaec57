package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/lattice/internal/matfile"
	"github.com/samcharles93/lattice/internal/matrix"
)

// loadMatrix reads a matrix from path, picking the codec by extension:
// .lmx for the binary container, .json for {"rows","cols","data"}.
func loadMatrix(path string) (matrix.Matrix[float64], error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lmx":
		return matfile.Open(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return matrix.Matrix[float64]{}, err
		}
		var m matrix.Matrix[float64]
		if err := json.Unmarshal(data, &m); err != nil {
			return matrix.Matrix[float64]{}, fmt.Errorf("%s: %w", path, err)
		}
		return m, nil
	default:
		return matrix.Matrix[float64]{}, fmt.Errorf("%s: unsupported matrix format (want .lmx or .json)", path)
	}
}

// writeMatrix stores m at path using the codec picked by extension.
func writeMatrix(path string, m matrix.Matrix[float64]) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lmx":
		return matfile.Write(path, m)
	case ".json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(data, '\n'), 0o644)
	default:
		return fmt.Errorf("%s: unsupported matrix format (want .lmx or .json)", path)
	}
}
