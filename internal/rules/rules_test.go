package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/parser"
	"github.com/standardbeagle/smellscan/internal/symbollinker"
	"github.com/standardbeagle/smellscan/internal/types"
)

type source struct {
	path string
	text string
}

func load(t *testing.T, sources ...source) *model.Codebase {
	t.Helper()
	p := parser.NewCSharpParser()
	files := make([]symbollinker.File, 0, len(sources))
	for i, s := range sources {
		id := types.FileID(i + 1)
		tree, err := p.Parse(id, s.path, []byte(s.text))
		require.NoError(t, err)
		files = append(files, symbollinker.File{ID: id, Path: s.path, Tree: tree})
	}
	return symbollinker.Link("test", "", files)
}

func fileRule(t *testing.T, r *Registry, kind types.RuleKind) FileRule {
	t.Helper()
	for _, rule := range r.FileRules() {
		if rule.Kind() == kind {
			return rule
		}
	}
	require.Failf(t, "rule not registered", "%s", kind)
	return nil
}

func runWith(t *testing.T, opts Options, kind types.RuleKind, src string) []types.Occurrence {
	t.Helper()
	cb := load(t, source{"Test.cs", src})
	rec := fileRule(t, NewRegistry(opts), kind).Check(cb.Units[0])
	assert.Equal(t, kind, rec.Kind)
	assert.Equal(t, kind.Message(), rec.Message)
	return rec.Occurrences
}

func run(t *testing.T, kind types.RuleKind, src string) []types.Occurrence {
	t.Helper()
	return runWith(t, DefaultOptions(), kind, src)
}

func lines(occ []types.Occurrence) []string {
	out := make([]string, len(occ))
	for i, o := range occ {
		out[i] = o.Line
	}
	return out
}

func fragments(occ []types.Occurrence) []string {
	out := make([]string, len(occ))
	for i, o := range occ {
		out[i] = o.CodeFragment
	}
	return out
}

func TestTooManyArguments(t *testing.T) {
	occ := run(t, types.RuleFunctionWithTooManyArguments, `class Calc
{
    void Few(int a, int b) { }
    void Many(int a, int b, int c, int d) { }
    void Exactly(int a, int b, int c) { }
}
`)
	assert.Equal(t, []string{"4"}, lines(occ))
	assert.Equal(t, []string{"(int a, int b, int c, int d)"}, fragments(occ))
	assert.Equal(t, "Test.cs", occ[0].File)
}

func TestTooManyArgumentsThreshold(t *testing.T) {
	occ := runWith(t, Options{MaxParameters: 1}, types.RuleFunctionWithTooManyArguments, `class Calc
{
    void One(int a) { }
    void Two(int a, int b) { }
}
`)
	assert.Equal(t, []string{"4"}, lines(occ))
}

func TestNumberSeriesNames(t *testing.T) {
	occ := run(t, types.RuleVariableNameIsNumberSeries, `class C
{
    void M()
    {
        int a1 = 0;
        var total = 1;
        string x1234 = "";
        int b22 = 2, ok = 3;
    }
}
`)
	assert.Equal(t, []string{"5", "8"}, lines(occ))
	assert.Equal(t, []string{"a1 = 0", "b22 = 2"}, fragments(occ))
}

func TestFunctionIsTooBig(t *testing.T) {
	occ := runWith(t, Options{MaxFunctionLines: 3}, types.RuleFunctionIsTooBig, `class C
{
    void Small()
    {
        Do();
    }

    void Big()
    {
        int a = 1;
        int b = 2;
        // comment
        int c = 3;
        int d = 4;
    }
}
`)
	assert.Equal(t, []string{"8"}, lines(occ))
	assert.Equal(t, []string{"void Big()"}, fragments(occ))
}

func TestFlagArguments(t *testing.T) {
	occ := run(t, types.RuleFlagArgument, `class C
{
    void Render(bool fancy) { }
    void Mode(int mode)
    {
        switch (mode)
        {
            case 1: break;
        }
    }
    void Plain(int count, bool? maybe) { }
}
`)
	assert.Equal(t, []string{"3", "4", "11"}, lines(occ))
	assert.Equal(t, []string{"bool fancy", "int mode", "bool? maybe"}, fragments(occ))
}

func TestCodeInComment(t *testing.T) {
	occ := run(t, types.RuleCodeInComment, `class C
{
    // int x = 1;
    // explains things
    /* old(); */
    void M() { } // trailing();
}
`)
	assert.Equal(t, []string{"3", "6"}, lines(occ))
	assert.Equal(t, []string{"// int x = 1;", "// trailing();"}, fragments(occ))
}

func TestCommentHeadline(t *testing.T) {
	occ := run(t, types.RuleCommentHeadline, `class C
{
    void M()
    {
        // load
        var a = 1;
        var b = 2;

        // save
        Save(a, b);
    }
}
`)
	assert.Equal(t, []string{"5"}, lines(occ))
	assert.Equal(t, []string{"// load"}, fragments(occ))
}

func TestDocumentationOnPrivate(t *testing.T) {
	occ := run(t, types.RuleDocumentationOnPrivateSoftwareUnits, `class C
{
    /// <summary>Secret.</summary>
    private int hidden;

    /// <summary>Visible.</summary>
    public int Shown;

    /// <summary>Helper.</summary>
    private void Help() { }
}
`)
	assert.Equal(t, []string{"3", "9"}, lines(occ))
	assert.Equal(t, "/// <summary>Secret.</summary>", occ[0].CodeFragment)
}

const errorHandlingSource = `class C
{
    object Find() { return null; }
    int Code() { return -1; }
    int Count() { return 42; }
    int Sum(int a) { return a + 1; }
    void Call() { Use(null, 1); Use(2, 3); Log(null); }
}
`

func TestNullReturn(t *testing.T) {
	occ := run(t, types.RuleNullReturn, errorHandlingSource)
	assert.Equal(t, []string{"3"}, lines(occ))
	assert.Equal(t, []string{"return null;"}, fragments(occ))
}

func TestErrorFlag(t *testing.T) {
	occ := run(t, types.RuleErrorFlag, errorHandlingSource)
	assert.Equal(t, []string{"4", "5"}, lines(occ))
	assert.Equal(t, []string{"return -1;", "return 42;"}, fragments(occ))
}

func TestNullArgument(t *testing.T) {
	occ := run(t, types.RuleNullArgument, errorHandlingSource)
	assert.Equal(t, []string{"7", "7"}, lines(occ))
	assert.Equal(t, []string{"(null, 1)", "(null)"}, fragments(occ))
}

func TestDemeterViolations(t *testing.T) {
	occ := run(t, types.RuleLODViolation, `namespace Shop
{
    public class Engine
    {
        public void Start() { }
    }

    public class Car
    {
        private Engine engine;
        public Engine GetEngine() { return engine; }
        public void Drive() { engine.Start(); }
    }

    public class Driver
    {
        public void Go(Car car)
        {
            car.Drive();
            car.GetEngine().Start();
        }
    }
}
`)
	assert.Equal(t, []string{"20"}, lines(occ))
	assert.Equal(t, []string{"car.GetEngine().Start()"}, fragments(occ))
}

func TestHybridDataStructures(t *testing.T) {
	occ := run(t, types.RuleHybridDataStructure, `public class Hybrid
{
    public int Count;
    public void Bump() { Count++; }
}
public class Data
{
    public int Count;
    public string Name { get; set; }
}
public class Frozen
{
    public readonly int Count;
    public void Bump() { }
}
`)
	assert.Equal(t, []string{"1"}, lines(occ))
	assert.Equal(t, []string{"public class Hybrid"}, fragments(occ))
}

func TestLimitConditions(t *testing.T) {
	occ := run(t, types.RuleLimitCondition, `class Range
{
    int Last(int[] items, int count)
    {
        var end = count - 1;
        if (items.Length > count - 1) { }
        return count + 1;
    }
}
`)
	assert.Equal(t, []string{"5 & 6"}, lines(occ))
	assert.Equal(t, []string{"count - 1"}, fragments(occ))
}

func TestInheritanceDependency(t *testing.T) {
	cb := load(t,
		source{"Animal.cs", `namespace Zoo
{
    public class Animal
    {
        public static Animal Create() { return new Dog(); }
        public void Speak() { Dog.Bark(); }
    }
}
`},
		source{"Dog.cs", `namespace Zoo
{
    public class Dog : Animal
    {
        public static void Bark() { }
    }
}
`},
	)

	rules := NewRegistry(DefaultOptions()).CodebaseRules()
	require.Len(t, rules, 1)
	recs := rules[0].CheckCodebase(cb)
	require.Len(t, recs, 1)
	assert.Equal(t, types.RuleInheritanceDependency, recs[0].Kind)
	assert.Equal(t, []string{"5", "6"}, lines(recs[0].Occurrences))
	assert.Equal(t, []string{"new Dog()", "Dog.Bark()"}, fragments(recs[0].Occurrences))
	assert.Equal(t, "Animal.cs", recs[0].Occurrences[0].File)
}

func TestRulesSkipFailedUnits(t *testing.T) {
	unit := model.FailedUnit(9, "Broken.cs", assert.AnError)
	for _, rule := range NewRegistry(DefaultOptions()).FileRules() {
		rec := rule.Check(unit)
		assert.True(t, rec.IsEmpty(), rule.Kind().String())
		assert.Equal(t, rule.Kind().Message(), rec.Message)
	}
}
