package wiki

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/eykd/cukable-go/internal/logging"
	"github.com/eykd/cukable-go/internal/table"
)

// ErrNoWikiDir is returned when the conversion target is not an existing
// directory.
var ErrNoWikiDir = errors.New("wiki path must be an existing directory")

// Converted records one scenario file written as a wiki page.
type Converted struct {
	Feature string
	Page    string
}

// ConvertFeatures writes every .feature file under featuresDir as a test
// page under wikiDir, at the wikified form of its path relative to
// featuresDir. Missing ancestor pages get content stubs. Files are
// converted in lexical order.
func ConvertFeatures(featuresDir, wikiDir string, logger *zap.Logger) ([]Converted, error) {
	logger = logging.OrNop(logger)
	info, err := os.Stat(wikiDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoWikiDir, wikiDir)
	}

	files, err := doublestar.Glob(os.DirFS(featuresDir), "**/*.feature")
	if err != nil {
		return nil, fmt.Errorf("finding features in %s: %w", featuresDir, err)
	}
	sort.Strings(files)

	converted := make([]Converted, 0, len(files))
	for _, rel := range files {
		src := filepath.Join(featuresDir, filepath.FromSlash(rel))
		pageRel := WikifyPath(rel)
		page := filepath.Join(wikiDir, pageRel)

		data, err := os.ReadFile(src)
		if err != nil {
			return converted, fmt.Errorf("reading %s: %w", src, err)
		}
		lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		content := strings.Join(table.ScenarioToWiki(lines), "\n") + "\n"

		if err := CreateContentStubs(wikiDir, filepath.Dir(pageRel)); err != nil {
			return converted, err
		}
		if err := CreatePage(page, content, Test); err != nil {
			return converted, err
		}
		logger.Info("converted feature", zap.String("feature", src), zap.String("page", page))
		converted = append(converted, Converted{Feature: src, Page: page})
	}
	return converted, nil
}
