// Package accel runs whole wiki suites through the engine in one batch and
// serves each page's table from the batch results.
//
// A suite gets a page named AaaAccelerator (configurable) that sorts first.
// When it executes, Accelerate writes every Cuke table under the suite as a
// scenario file, runs the engine once, and records where each table's result
// artifact will be. When the suite's other pages execute, DoTable finds
// their tables by fingerprint and reconciles the stored results instead of
// running the engine again.
//
// A Controller is single-writer: one batch at a time per process, and the
// scratch directories are guarded by a lock file across processes.
package accel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eykd/cukable-go/internal/align"
	"github.com/eykd/cukable-go/internal/engine"
	"github.com/eykd/cukable-go/internal/feature"
	"github.com/eykd/cukable-go/internal/logging"
	"github.com/eykd/cukable-go/internal/results"
	"github.com/eykd/cukable-go/internal/table"
)

// singleFeature is the scenario file DoTable writes on a cache miss.
const singleFeature = "fitnesse_test.feature"

// pageFile is the wiki page content file inside each page directory.
const pageFile = "content.txt"

// Options configures a Controller.
type Options struct {
	WikiRoot        string
	FeaturesDir     string
	ResultsDir      string
	AcceleratorPage string
	// ExtraArgs is passed to every engine run ahead of per-call arguments.
	ExtraArgs string
}

// Controller owns the result cache and the batch-root marker.
type Controller struct {
	opts    Options
	runner  engine.Runner
	logger  *zap.Logger
	scratch *scratch

	mu        sync.Mutex
	cache     *Cache
	suiteRoot string
	hasRoot   bool
	args      string
}

// New returns a Controller with an empty cache. A nil logger discards logs.
func New(opts Options, runner engine.Runner, logger *zap.Logger) *Controller {
	return &Controller{
		opts:    opts,
		runner:  runner,
		logger:  logging.OrNop(logger),
		scratch: newScratch(opts.FeaturesDir, opts.ResultsDir),
		cache:   NewCache(),
	}
}

// Cache returns the controller's result cache.
func (c *Controller) Cache() *Cache {
	return c.cache
}

// BatchReport describes what Accelerate did.
type BatchReport struct {
	// Suite is the slash-separated suite path, empty for a pass-through page.
	Suite string
	// Ran is true when a batch was started for Suite.
	Ran bool
	// Nested is true when an earlier batch already covers Suite.
	Nested bool
	// Tables counts tables written as scenario files.
	Tables int
	// Malformed counts tables skipped because they cannot run.
	Malformed int
	// EngineErr holds the engine's *engine.ExitError when it exited
	// unsuccessfully. The cache is populated regardless.
	EngineErr error
}

// Accelerate handles the execution of the wiki page testName, a dotted page
// path such as "MySuite.AaaAccelerator". Pages other than the accelerator
// page, and accelerator pages below a suite an earlier call already ran,
// return immediately. Otherwise the whole suite is run as one batch.
//
// args is passed to the engine for this batch and for later DoTable misses.
// The returned error is reserved for failures to prepare or start the run;
// a table that cannot run is logged and skipped.
func (c *Controller) Accelerate(ctx context.Context, testName, args string) (*BatchReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	testName = table.RemoveCruft(testName)
	c.args = args

	parts := strings.Split(testName, ".")
	if parts[len(parts)-1] != c.opts.AcceleratorPage {
		return &BatchReport{}, nil
	}
	suitePath := strings.Join(parts[:len(parts)-1], "/")
	report := &BatchReport{Suite: suitePath}

	// Prefix, not equality: one top-level batch covers its whole subtree.
	if c.hasRoot && strings.HasPrefix(suitePath, c.suiteRoot) {
		c.logger.Debug("suite already covered by batch",
			zap.String("suite", suitePath), zap.String("root", c.suiteRoot))
		report.Nested = true
		return report, nil
	}
	c.suiteRoot, c.hasRoot = suitePath, true
	c.cache.Reset()
	report.Ran = true

	if err := c.runBatch(ctx, report); err != nil {
		// A failed batch must not cover later attempts at the same suite.
		c.suiteRoot, c.hasRoot = "", false
		return report, err
	}
	return report, nil
}

// suiteTable is one table extracted from a page, with the scenario file it
// was written to.
type suiteTable struct {
	table   table.Table
	feature string
}

func (c *Controller) runBatch(ctx context.Context, report *BatchReport) error {
	logger := c.logger.With(zap.String("batch", uuid.NewString()), zap.String("suite", report.Suite))

	unlock, err := c.scratch.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := c.scratch.recreate(); err != nil {
		return err
	}

	suiteDir := filepath.Join(c.opts.WikiRoot, filepath.FromSlash(report.Suite))
	pages, err := findPages(suiteDir)
	if err != nil {
		return err
	}
	logger.Info("starting batch", zap.Int("pages", len(pages)))

	var written []suiteTable
	stems := make(map[string]bool, len(pages))
	for _, page := range pages {
		tables, err := c.writePageTables(logger, suiteDir, page, uniqueStem(stems, pageName(report.Suite, page)), report)
		if err != nil {
			return err
		}
		written = append(written, tables...)
	}
	if len(written) == 0 {
		logger.Info("no runnable tables in suite")
		return nil
	}

	files := make([]string, len(written))
	for i, st := range written {
		files[i] = st.feature
	}
	runErr := c.runner.Run(ctx, files, c.opts.ResultsDir, c.engineArgs())
	var exitErr *engine.ExitError
	switch {
	case errors.As(runErr, &exitErr):
		logger.Warn("engine exited unsuccessfully", zap.Int("code", exitErr.Code), zap.Error(runErr))
		report.EngineErr = runErr
	case runErr != nil:
		return fmt.Errorf("running suite %s: %w", report.Suite, runErr)
	}

	for _, st := range written {
		c.cache.Store(table.Digest(st.table), results.ArtifactPath(c.opts.ResultsDir, st.feature))
	}
	logger.Info("batch finished", zap.Int("tables", report.Tables), zap.Int("malformed", report.Malformed))
	return nil
}

// writePageTables writes each Cuke table on page as its own scenario file,
// named <name>_<n>.feature. Malformed tables are logged and skipped.
func (c *Controller) writePageTables(logger *zap.Logger, suiteDir, page, name string, report *BatchReport) ([]suiteTable, error) {
	lines, err := readLines(filepath.Join(suiteDir, filepath.FromSlash(page)))
	if err != nil {
		return nil, err
	}

	var out []suiteTable
	for n, tbl := range table.WikiToTables(lines) {
		featurePath := filepath.Join(c.opts.FeaturesDir, fmt.Sprintf("%s_%d.feature", name, n))
		err := feature.WriteImpl(featurePath, tbl)
		if errors.Is(err, feature.ErrMalformedTable) {
			logger.Warn("skipping table", zap.String("page", page), zap.Int("table", n), zap.Error(err))
			report.Malformed++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", featurePath, err)
		}
		out = append(out, suiteTable{table: tbl, feature: featurePath})
		report.Tables++
	}
	return out, nil
}

// TableResult is the outcome of DoTable.
type TableResult struct {
	// Rows has the engine's status-tagged rows, aligned with the submitted
	// table.
	Rows []results.Row
	// Cached is true when the rows came from a batch run.
	Cached bool
	// Degraded is true when no result artifact existed, so every cell of the
	// submitted table was tagged ignore.
	Degraded bool
	// EngineErr holds the engine's *engine.ExitError from a run made for
	// this table, if it exited unsuccessfully.
	EngineErr error
}

// DoTable returns results for one submitted table: from the batch cache when
// the table's fingerprint is there and its artifact exists, otherwise by
// running the engine on the table alone. A malformed table is returned as
// feature.ErrMalformedTable.
func (c *Controller) DoTable(ctx context.Context, t table.Table) (*TableResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := &TableResult{}
	fp := table.Digest(t)
	var rows []results.Row
	var found bool
	if artifact, ok := c.cache.Lookup(fp); ok {
		var err error
		rows, found, err = results.LoadImpl(artifact)
		if err != nil {
			return nil, err
		}
		res.Cached = found
	}

	if !found {
		var err error
		rows, found, err = c.runSingle(ctx, t, res)
		if err != nil {
			return nil, err
		}
	}

	if !found {
		c.logger.Warn("no results for table", zap.String("fingerprint", string(fp)))
		res.Degraded = true
		res.Rows = make([]results.Row, len(t))
		for i, row := range t {
			res.Rows[i] = results.IgnoreRow(row)
		}
		return res, nil
	}
	res.Rows = align.Rows(t, rows)
	return res, nil
}

func (c *Controller) runSingle(ctx context.Context, t table.Table, res *TableResult) ([]results.Row, bool, error) {
	unlock, err := c.scratch.lock(ctx)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	featurePath := filepath.Join(c.opts.FeaturesDir, singleFeature)
	if err := feature.WriteImpl(featurePath, t); err != nil {
		return nil, false, err
	}
	artifact := results.ArtifactPath(c.opts.ResultsDir, featurePath)
	if err := os.Remove(artifact); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("removing stale results: %w", err)
	}

	runErr := c.runner.Run(ctx, []string{featurePath}, c.opts.ResultsDir, c.engineArgs())
	var exitErr *engine.ExitError
	switch {
	case errors.As(runErr, &exitErr):
		c.logger.Warn("engine exited unsuccessfully", zap.Int("code", exitErr.Code), zap.Error(runErr))
		res.EngineErr = runErr
	case runErr != nil:
		return nil, false, fmt.Errorf("running table: %w", runErr)
	}
	return results.LoadImpl(artifact)
}

func (c *Controller) engineArgs() string {
	return strings.TrimSpace(c.opts.ExtraArgs + " " + c.args)
}

// findPages returns the content files under suiteDir, relative to it, in
// lexical order.
func findPages(suiteDir string) ([]string, error) {
	pages, err := doublestar.Glob(os.DirFS(suiteDir), "**/"+pageFile)
	if err != nil {
		return nil, fmt.Errorf("finding pages in %s: %w", suiteDir, err)
	}
	sort.Strings(pages)
	return pages, nil
}

// pageName turns a content file path relative to the suite into a scenario
// file stem: "Sub/Page/content.txt" becomes "Sub_Page". The suite's own page
// is named after the suite.
func pageName(suite, page string) string {
	dir := path.Dir(page)
	if dir == "." {
		dir = path.Base(suite)
		if dir == "." || dir == "/" || dir == "" {
			dir = "Root"
		}
	}
	return strings.ReplaceAll(dir, "/", "_")
}

// uniqueStem returns name, or name with a "~<k>" suffix when an earlier page
// in the batch already took it, and records the result in used. Page
// directories "Login" and "Login/Login" would otherwise both write
// Login_0.feature.
func uniqueStem(used map[string]bool, name string) string {
	stem := name
	for k := 2; used[stem]; k++ {
		stem = fmt.Sprintf("%s~%d", name, k)
	}
	used[stem] = true
	return stem
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}
