package accel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/cukable-go/internal/engine"
	"github.com/eykd/cukable-go/internal/feature"
	"github.com/eykd/cukable-go/internal/results"
	"github.com/eykd/cukable-go/internal/table"
)

// fakeRunner stands in for the engine. It passes every step and writes one
// artifact per scenario file, optionally keeping only the first rows.
type fakeRunner struct {
	calls    [][]string
	args     []string
	keepRows int
	noOutput bool
	exitCode int
}

func (f *fakeRunner) Run(_ context.Context, files []string, outDir, extraArgs string) error {
	f.calls = append(f.calls, append([]string(nil), files...))
	f.args = append(f.args, extraArgs)
	if !f.noOutput {
		for _, file := range files {
			if err := f.writeArtifact(file, outDir); err != nil {
				return err
			}
		}
	}
	if f.exitCode != 0 {
		return &engine.ExitError{Code: f.exitCode}
	}
	return nil
}

func (f *fakeRunner) writeArtifact(file, outDir string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var rows []results.Row
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") {
			row := results.Row{"report: "}
			for _, cell := range table.SplitRow(trimmed) {
				row = append(row, results.StatusPass.Cell(cell))
			}
			rows = append(rows, row)
			continue
		}
		rows = append(rows, results.Row{results.StatusPass.Cell(trimmed + ` <span class="source_file">x</span>`)})
	}
	if f.keepRows > 0 && f.keepRows < len(rows) {
		rows = rows[:f.keepRows]
	}
	return results.WriteImpl(results.ArtifactPath(outDir, file), rows)
}

type fixture struct {
	root   string
	opts   Options
	runner *fakeRunner
	ctrl   *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	opts := Options{
		WikiRoot:        filepath.Join(root, "FitNesseRoot"),
		FeaturesDir:     filepath.Join(root, "features", "fitnesse"),
		ResultsDir:      filepath.Join(root, "slim_results"),
		AcceleratorPage: "AaaAccelerator",
	}
	runner := &fakeRunner{}
	return &fixture{root: root, opts: opts, runner: runner, ctrl: New(opts, runner, nil)}
}

func (f *fixture) page(t *testing.T, name string, lines ...string) {
	t.Helper()
	dir := filepath.Join(f.opts.WikiRoot, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.txt"), []byte(content), 0o644))
}

var loginPage = []string{
	"Some introduction",
	"!| Table: Cuke |",
	"| Feature: Login |",
	"| Scenario: Good password |",
	"| Given a step passes |",
}

var loginTable = table.Table{{"Feature: Login"}, {"Scenario: Good password"}, {"Given a step passes"}}

func TestAccelerate_PassThroughForOrdinaryPages(t *testing.T) {
	f := newFixture(t)
	report, err := f.ctrl.Accelerate(context.Background(), "Suite.LoginTest", "")
	require.NoError(t, err)
	assert.False(t, report.Ran)
	assert.Empty(t, f.runner.calls)
	assert.NoDirExists(t, f.opts.FeaturesDir)
}

func TestAccelerate_RunsSuiteOnce(t *testing.T) {
	f := newFixture(t)
	f.page(t, "Suite/LoginTest", loginPage...)
	f.page(t, "Suite/Sub/OtherTest",
		"!| Table: Cuke |",
		"| Feature: Other |",
		"| Scenario: One |",
		"| Given a step passes |",
		"",
		"!| Table: Cuke |",
		"| Feature: Another |",
		"| Scenario: Two |",
		"| Given a step passes |",
	)

	report, err := f.ctrl.Accelerate(context.Background(), "Suite.AaaAccelerator", "--tags @fast")
	require.NoError(t, err)
	assert.True(t, report.Ran)
	assert.Equal(t, "Suite", report.Suite)
	assert.Equal(t, 3, report.Tables)
	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, []string{
		filepath.Join(f.opts.FeaturesDir, "LoginTest_0.feature"),
		filepath.Join(f.opts.FeaturesDir, "Sub_OtherTest_0.feature"),
		filepath.Join(f.opts.FeaturesDir, "Sub_OtherTest_1.feature"),
	}, f.runner.calls[0])
	assert.Equal(t, []string{"--tags @fast"}, f.runner.args)
	assert.Equal(t, 3, f.ctrl.Cache().Len())

	res, err := f.ctrl.DoTable(context.Background(), loginTable)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Len(t, f.runner.calls, 1, "cache hit must not run the engine")
	require.Len(t, res.Rows, 3)
	assert.True(t, strings.HasPrefix(res.Rows[2][0], "pass:Given a step passes"))
}

func TestAccelerate_NestedSuiteRunsOnce(t *testing.T) {
	f := newFixture(t)
	f.page(t, "A/B/C/LoginTest", loginPage...)

	_, err := f.ctrl.Accelerate(context.Background(), "A.B.AaaAccelerator", "")
	require.NoError(t, err)
	report, err := f.ctrl.Accelerate(context.Background(), "A.B.C.AaaAccelerator", "")
	require.NoError(t, err)

	assert.True(t, report.Nested)
	assert.Len(t, f.runner.calls, 1)
	assert.Equal(t, 1, f.ctrl.Cache().Len(), "nested accelerator must keep the cache")
}

func TestAccelerate_SiblingSuiteStartsNewBatch(t *testing.T) {
	f := newFixture(t)
	f.page(t, "A/B/LoginTest", loginPage...)
	f.page(t, "A/X/LoginTest", loginPage...)

	_, err := f.ctrl.Accelerate(context.Background(), "A.B.AaaAccelerator", "")
	require.NoError(t, err)
	report, err := f.ctrl.Accelerate(context.Background(), "A.X.AaaAccelerator", "")
	require.NoError(t, err)

	assert.True(t, report.Ran)
	assert.Len(t, f.runner.calls, 2)
}

func TestAccelerate_StripsWikiCruft(t *testing.T) {
	f := newFixture(t)
	f.page(t, "Suite/LoginTest", loginPage...)

	report, err := f.ctrl.Accelerate(context.Background(), `<a href="Suite">Suite</a>.AaaAccelerator[?]`, "")
	require.NoError(t, err)
	assert.True(t, report.Ran)
	assert.Equal(t, "Suite", report.Suite)
}

func TestAccelerate_SkipsMalformedTables(t *testing.T) {
	f := newFixture(t)
	f.page(t, "Suite/BadTest",
		"!| Table: Cuke |",
		"| Feature: One |",
		"| Feature: Two |",
		"| Scenario: S |",
		"",
		"!| Table: Cuke |",
		"| Feature: Fine |",
		"| Scenario: S |",
	)

	report, err := f.ctrl.Accelerate(context.Background(), "Suite.AaaAccelerator", "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Malformed)
	assert.Equal(t, 1, report.Tables)
	assert.NoFileExists(t, filepath.Join(f.opts.FeaturesDir, "BadTest_0.feature"))
	assert.FileExists(t, filepath.Join(f.opts.FeaturesDir, "BadTest_1.feature"))
	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, []string{filepath.Join(f.opts.FeaturesDir, "BadTest_1.feature")}, f.runner.calls[0])
}

func TestAccelerate_RecreatesScratchDirectories(t *testing.T) {
	f := newFixture(t)
	f.page(t, "Suite/LoginTest", loginPage...)
	stale := filepath.Join(f.opts.ResultsDir, "stale.json")
	require.NoError(t, os.MkdirAll(f.opts.ResultsDir, 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("[]"), 0o644))

	_, err := f.ctrl.Accelerate(context.Background(), "Suite.AaaAccelerator", "")
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestAccelerate_EmptySuiteDoesNotRunEngine(t *testing.T) {
	f := newFixture(t)
	f.page(t, "Suite/Notes", "no tables here")

	report, err := f.ctrl.Accelerate(context.Background(), "Suite.AaaAccelerator", "")
	require.NoError(t, err)
	assert.True(t, report.Ran)
	assert.Empty(t, f.runner.calls)
}

func TestAccelerate_SurfacesEngineExitStatus(t *testing.T) {
	f := newFixture(t)
	f.page(t, "Suite/LoginTest", loginPage...)
	f.runner.exitCode = 1

	report, err := f.ctrl.Accelerate(context.Background(), "Suite.AaaAccelerator", "")
	require.NoError(t, err)
	var exitErr *engine.ExitError
	require.ErrorAs(t, report.EngineErr, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Equal(t, 1, f.ctrl.Cache().Len())
}

func TestDoTable_MissRunsSingleTable(t *testing.T) {
	f := newFixture(t)
	res, err := f.ctrl.DoTable(context.Background(), loginTable)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, []string{filepath.Join(f.opts.FeaturesDir, "fitnesse_test.feature")}, f.runner.calls[0])
	assert.Len(t, res.Rows, len(loginTable))
}

func TestDoTable_UsesArgsFromLastAccelerate(t *testing.T) {
	f := newFixture(t)
	f.opts.ExtraArgs = "--strict"
	f.ctrl = New(f.opts, f.runner, nil)

	_, err := f.ctrl.Accelerate(context.Background(), "Suite.LoginTest", "--tags @ci")
	require.NoError(t, err)
	_, err = f.ctrl.DoTable(context.Background(), loginTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"--strict --tags @ci"}, f.runner.args)
}

func TestDoTable_MalformedTablePropagates(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.DoTable(context.Background(), table.Table{{"Feature: A"}, {"Feature: B"}, {"Scenario: C"}})
	require.ErrorIs(t, err, feature.ErrMalformedTable)
	assert.Empty(t, f.runner.calls)
	assert.NoFileExists(t, filepath.Join(f.opts.FeaturesDir, "fitnesse_test.feature"))
}

func TestDoTable_NoArtifactIgnoresEveryCell(t *testing.T) {
	f := newFixture(t)
	f.runner.noOutput = true
	f.runner.exitCode = 2

	tbl := table.Table{{"Feature: X"}, {"Scenario: Y"}, {"", "a", "b"}}
	res, err := f.ctrl.DoTable(context.Background(), tbl)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, []results.Row{{"ignore:Feature: X"}, {"ignore:Scenario: Y"}, {"ignore:", "ignore:a", "ignore:b"}}, res.Rows)
	var exitErr *engine.ExitError
	assert.ErrorAs(t, res.EngineErr, &exitErr)
}

func TestDoTable_StaleSingleArtifactIsNotReused(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.DoTable(context.Background(), loginTable)
	require.NoError(t, err)

	f.runner.noOutput = true
	res, err := f.ctrl.DoTable(context.Background(), table.Table{{"Feature: New"}, {"Scenario: Other"}})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
}

func TestDoTable_TruncatedOutputIsAligned(t *testing.T) {
	f := newFixture(t)
	f.runner.keepRows = 3

	tbl := table.Table{
		{"Feature: F"},
		{"Scenario: S1"},
		{"Given a step passes"},
		{"Scenario: S2"},
		{"Given a step passes"},
	}
	res, err := f.ctrl.DoTable(context.Background(), tbl)
	require.NoError(t, err)
	require.Len(t, res.Rows, 5)
	assert.Equal(t, results.Row{"ignore:Scenario: S2"}, res.Rows[3])
	assert.Equal(t, results.Row{"ignore:Given a step passes"}, res.Rows[4])
}

func TestAccelerate_PageNamedLikeSuiteGetsOwnFile(t *testing.T) {
	f := newFixture(t)
	f.page(t, "Login",
		"!| Table: Cuke |",
		"| Feature: Suite page |",
		"| Scenario: Outer |",
		"| Given the outer step |",
	)
	f.page(t, "Login/Login",
		"!| Table: Cuke |",
		"| Feature: Child page |",
		"| Scenario: Inner |",
		"| Given the inner step |",
	)

	_, err := f.ctrl.Accelerate(context.Background(), "Login.AaaAccelerator", "")
	require.NoError(t, err)
	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, []string{
		filepath.Join(f.opts.FeaturesDir, "Login_0.feature"),
		filepath.Join(f.opts.FeaturesDir, "Login~2_0.feature"),
	}, f.runner.calls[0])

	outer, err := f.ctrl.DoTable(context.Background(), table.Table{{"Feature: Suite page"}, {"Scenario: Outer"}, {"Given the outer step"}})
	require.NoError(t, err)
	inner, err := f.ctrl.DoTable(context.Background(), table.Table{{"Feature: Child page"}, {"Scenario: Inner"}, {"Given the inner step"}})
	require.NoError(t, err)
	assert.True(t, outer.Cached)
	assert.True(t, inner.Cached)
	assert.True(t, strings.HasPrefix(outer.Rows[2][0], "pass:Given the outer step"))
	assert.True(t, strings.HasPrefix(inner.Rows[2][0], "pass:Given the inner step"))
}

func TestAccelerate_FailedBatchDoesNotCoverRetry(t *testing.T) {
	f := newFixture(t)
	f.page(t, "Suite/LoginTest", loginPage...)
	blocker := filepath.Join(f.root, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))
	f.opts.ResultsDir = filepath.Join(blocker, "slim_results")
	f.ctrl = New(f.opts, f.runner, nil)

	_, err := f.ctrl.Accelerate(context.Background(), "Suite.AaaAccelerator", "")
	require.Error(t, err)

	require.NoError(t, os.Remove(blocker))
	report, err := f.ctrl.Accelerate(context.Background(), "Suite.AaaAccelerator", "")
	require.NoError(t, err)
	assert.False(t, report.Nested)
	assert.True(t, report.Ran)
	assert.Len(t, f.runner.calls, 1)
}

func TestUniqueStem(t *testing.T) {
	used := map[string]bool{}
	for _, tt := range []struct{ in, want string }{
		{"Login", "Login"},
		{"Login", "Login~2"},
		{"Login", "Login~3"},
		{"Other", "Other"},
	} {
		if got := uniqueStem(used, tt.in); got != tt.want {
			t.Errorf("uniqueStem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPageName(t *testing.T) {
	tests := []struct {
		suite, page, want string
	}{
		{"Suite", "LoginTest/content.txt", "LoginTest"},
		{"Suite", "Sub/Page/content.txt", "Sub_Page"},
		{"A/Suite", "content.txt", "Suite"},
		{"", "content.txt", "Root"},
	}
	for _, tt := range tests {
		if got := pageName(tt.suite, tt.page); got != tt.want {
			t.Errorf("pageName(%q, %q) = %q, want %q", tt.suite, tt.page, got, tt.want)
		}
	}
}
