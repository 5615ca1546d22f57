package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/parser"
	"github.com/standardbeagle/smellscan/internal/rules"
	"github.com/standardbeagle/smellscan/internal/symbollinker"
	"github.com/standardbeagle/smellscan/internal/types"
)

const storeSource = `namespace Shop
{
    public class Store
    {
        public object Find() { return null; }
        public int Code() { return -1; }
    }
}
`

const rowSource = `namespace Shop.Data
{
    public class Row
    {
        public int Id;
        public void Touch() { }
    }
}
`

func loadCodebase(t *testing.T, name string, sources map[string]string, order ...string) *model.Codebase {
	t.Helper()
	p := parser.NewCSharpParser()
	files := make([]symbollinker.File, 0, len(order))
	for i, path := range order {
		id := types.FileID(i + 1)
		tree, err := p.Parse(id, path, []byte(sources[path]))
		require.NoError(t, err)
		files = append(files, symbollinker.File{ID: id, Path: path, Tree: tree})
	}
	return symbollinker.Link(name, "", files)
}

func shop(t *testing.T) *model.Codebase {
	return loadCodebase(t, "Shop", map[string]string{
		"Store.cs": storeSource,
		"Row.cs":   rowSource,
	}, "Store.cs", "Row.cs")
}

func kinds(recs []types.Recommendation) []types.RuleKind {
	out := make([]types.RuleKind, len(recs))
	for i, r := range recs {
		out[i] = r.Kind
	}
	return out
}

func TestAnalyze(t *testing.T) {
	e := New(rules.NewRegistry(rules.DefaultOptions()), Options{Workers: 2})
	res, err := e.Analyze(context.Background(), shop(t))
	require.NoError(t, err)

	assert.Equal(t, "Shop", res.Codebase)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []types.RuleKind{
		types.RuleNullReturn,
		types.RuleErrorFlag,
		types.RuleHybridDataStructure,
	}, kinds(res.Recommendations))
	assert.Equal(t, "Store.cs", res.Recommendations[0].Occurrences[0].File)
	assert.Equal(t, "Row.cs", res.Recommendations[2].Occurrences[0].File)
	assert.Equal(t, 3, res.Occurrences())
	assert.Len(t, res.ByKind(types.RuleErrorFlag), 1)

	assert.Equal(t, "Shop", res.Metrics.Codebase)
	assert.Equal(t, 2, res.Metrics.NOC)
	assert.Equal(t, 3, res.Metrics.NOM)
	assert.Equal(t, 2, res.Metrics.NOP)
	assert.Equal(t, 3, res.Metrics.CYCLO)
	assert.Positive(t, res.Metrics.LOC)

	require.Len(t, res.Coupling, 2)
	assert.Equal(t, "Store", res.Coupling[0].Class)
	assert.Equal(t, "Row", res.Coupling[1].Class)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	reg := rules.NewRegistry(rules.DefaultOptions())
	serial, err := New(reg, Options{Workers: 1}).Analyze(context.Background(), shop(t))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		parallel, err := New(reg, Options{Workers: 8}).Analyze(context.Background(), shop(t))
		require.NoError(t, err)
		assert.Equal(t, serial.Recommendations, parallel.Recommendations)
		assert.Equal(t, serial.Metrics, parallel.Metrics)
	}
}

func TestAnalyzeSkipMetrics(t *testing.T) {
	e := New(rules.NewRegistry(rules.DefaultOptions()), Options{SkipMetrics: true})
	res, err := e.Analyze(context.Background(), shop(t))
	require.NoError(t, err)
	assert.True(t, res.Metrics.IsEmpty())
	assert.Empty(t, res.Coupling)
	assert.Len(t, res.Recommendations, 3)
}

func TestAnalyzeRecordsFailedUnits(t *testing.T) {
	cb := shop(t)
	cb.Units = append(cb.Units, model.FailedUnit(99, "Broken.cs", assert.AnError))

	res, err := New(rules.NewRegistry(rules.DefaultOptions()), Options{}).Analyze(context.Background(), cb)
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, 3)
	require.Len(t, res.Errors, 1)

	var analysisErr *smerrors.AnalysisError
	require.True(t, errors.As(res.Errors[0], &analysisErr))
	assert.Equal(t, "Broken.cs", analysisErr.FilePath)
	assert.Equal(t, types.FileID(99), analysisErr.FileID)
	assert.ErrorIs(t, res.Errors[0], assert.AnError)
}

type panicRule struct{ kind types.RuleKind }

func (r panicRule) Kind() types.RuleKind { return r.kind }

func (r panicRule) Check(*model.SourceUnit) types.Recommendation { panic("boom") }

func (r panicRule) CheckCodebase(*model.Codebase) []types.Recommendation { panic("boom") }

type ruleSet struct {
	file     []rules.FileRule
	codebase []rules.CodebaseRule
}

func (s ruleSet) FileRules() []rules.FileRule         { return s.file }
func (s ruleSet) CodebaseRules() []rules.CodebaseRule { return s.codebase }

func TestAnalyzeIsolatesPanickingRules(t *testing.T) {
	errorFlag := rules.NewRegistry(rules.DefaultOptions()).Only(types.RuleErrorFlag).FileRules()
	set := ruleSet{
		file:     append([]rules.FileRule{panicRule{types.RuleNullReturn}}, errorFlag...),
		codebase: []rules.CodebaseRule{panicRule{types.RuleInheritanceDependency}},
	}

	res, err := New(set, Options{Workers: 2}).Analyze(context.Background(), shop(t))
	require.NoError(t, err)
	assert.Equal(t, []types.RuleKind{types.RuleErrorFlag}, kinds(res.Recommendations))

	// one per unit for the file rule, one for the codebase rule
	require.Len(t, res.Errors, 3)
	for _, e := range res.Errors {
		var analysisErr *smerrors.AnalysisError
		require.True(t, errors.As(e, &analysisErr))
		assert.True(t, analysisErr.Panicked)
		assert.Contains(t, e.Error(), "boom")
	}

	var first *smerrors.AnalysisError
	require.True(t, errors.As(res.Errors[0], &first))
	assert.Equal(t, "NullReturn", first.Rule)
	assert.Equal(t, "Store.cs", first.FilePath)

	var last *smerrors.AnalysisError
	require.True(t, errors.As(res.Errors[2], &last))
	assert.Equal(t, "InheritanceDependency", last.Rule)
	assert.Empty(t, last.FilePath)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(rules.NewRegistry(rules.DefaultOptions()), Options{}).Analyze(ctx, shop(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestAnalyzeAll(t *testing.T) {
	other := loadCodebase(t, "Other", map[string]string{"Row.cs": rowSource}, "Row.cs")
	e := New(rules.NewRegistry(rules.DefaultOptions()), Options{})

	results, err := e.AnalyzeAll(context.Background(), []*model.Codebase{shop(t), nil, other})
	require.Error(t, err)
	var cbErr *smerrors.CodebaseError
	assert.True(t, errors.As(err, &cbErr))

	require.Len(t, results, 2)
	assert.Equal(t, "Shop", results[0].Codebase)
	assert.Equal(t, "Other", results[1].Codebase)
	assert.Equal(t, []types.RuleKind{types.RuleHybridDataStructure}, kinds(results[1].Recommendations))
}

func TestAnalyzeAllNoFailures(t *testing.T) {
	e := New(rules.NewRegistry(rules.DefaultOptions()), Options{})
	results, err := e.AnalyzeAll(context.Background(), []*model.Codebase{shop(t)})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestNewDefaultsWorkers(t *testing.T) {
	assert.Positive(t, New(rules.NewRegistry(rules.DefaultOptions()), Options{}).Workers())
	assert.Equal(t, 3, New(rules.NewRegistry(rules.DefaultOptions()), Options{Workers: 3}).Workers())
}
