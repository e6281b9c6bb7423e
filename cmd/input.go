package cmd

import (
	"context"
	"io"
	"os"
)

// InputReader reads command input files. The path "-" or "" reads stdin.
type InputReader interface {
	ReadInput(ctx context.Context, path string, stdin io.Reader) ([]byte, error)
}

// fileInputReader implements InputReader using OS file I/O.
type fileInputReader struct{}

func newDefaultInputReader() *fileInputReader {
	return &fileInputReader{}
}

func (r *fileInputReader) ReadInput(_ context.Context, path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
