package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ArtifactPath returns where the formatting plugin writes results for the
// scenario file featurePath when invoked with --out resultsDir.
func ArtifactPath(resultsDir, featurePath string) string {
	return filepath.Join(resultsDir, featurePath+".json")
}

// Decode unmarshals an artifact and merges expected/actual diff row pairs.
func Decode(data []byte) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding result artifact: %w", err)
	}
	return MergeDiffRows(rows), nil
}

// Encode marshals rows into indented JSON bytes.
func Encode(rows []Row) ([]byte, error) {
	return json.MarshalIndent(rows, "", "  ")
}

// LoadImpl reads and decodes the artifact at path. The boolean is false when
// the file does not exist.
// This is an Impl function exempt from coverage requirements.
func LoadImpl(path string) ([]Row, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rows, err := Decode(data)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}
	return rows, true, nil
}

// WriteImpl encodes rows to path, creating directories as needed.
// This is an Impl function exempt from coverage requirements.
func WriteImpl(path string, rows []Row) error {
	data, err := Encode(rows)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
