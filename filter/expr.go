package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/s0up4200/omdbfilm/omdb"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newProgramCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.extra, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		extra: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	extra map[string]any
	cache *programCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// The zero film gives the checker every variable and helper with its type,
	// so unknown names and non-boolean results are rejected here
	env := createRuntimeEnvironment(omdb.Film{}, c.extra)

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		extra:      c.extra,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// CompileFilter compiles expression with a default, uncached compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return NewExprCompiler().Compile(expression)
}

// Evaluate evaluates the filter against a film. Evaluation errors count as no match.
func (f *exprFilter) Evaluate(film omdb.Film) bool {
	ok, err := f.Match(film)
	return err == nil && ok
}

// Match evaluates the filter against a film
func (f *exprFilter) Match(film omdb.Film) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(film, f.extra))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			FilmTitle:  film.Title(),
			Err:        err,
		}
	}

	// AsBool() at compile time guarantees the type
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// Apply returns the films matching filter, in input order
func Apply(ctx context.Context, filter CompiledFilter, films []omdb.Film) ([]omdb.Film, error) {
	matches := make([]omdb.Film, 0, len(films))
	for _, film := range films {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ok, err := filter.Match(film)
		if err != nil {
			return nil, fmt.Errorf("failed to apply filter: %w", err)
		}
		if ok {
			matches = append(matches, film)
		}
	}
	return matches, nil
}

// addHelperFunctions adds the film-independent helpers to env. Substring
// tests use the contains, startsWith and endsWith operators, with lower()
// for a case-insensitive match.
func addHelperFunctions(env map[string]any) {
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
}

// createRuntimeEnvironment creates the environment a filter is evaluated in
func createRuntimeEnvironment(film omdb.Film, extra map[string]any) map[string]any {
	env := make(map[string]any, 32+len(extra))

	addHelperFunctions(env)
	maps.Copy(env, extra)

	env["Film"] = film

	env["year"] = createIntFunc(film.YearInt())
	env["runtimeMinutes"] = createIntFunc(film.RuntimeMinutes())
	env["hasGenre"] = createListMatchFunc(film.Genres())
	env["hasActor"] = createListMatchFunc(film.ActorList())
	env["directedBy"] = createContainsFunc(film.Director())

	env["Title"] = film.Title()
	env["Year"] = film.Year()
	env["Rated"] = film.Rated()
	env["Released"] = film.Released()
	env["Runtime"] = film.Runtime()
	env["Genre"] = film.Genre()
	env["Director"] = film.Director()
	env["Writer"] = film.Writer()
	env["Actors"] = film.Actors()
	env["Plot"] = film.Plot()
	env["Language"] = film.Language()
	env["IMDbID"] = film.IMDbID()
	env["Type"] = film.Type()

	return env
}

func createIntFunc(n int) func() int {
	return func() int {
		return n
	}
}

func createListMatchFunc(items []string) func(string) bool {
	lower := make([]string, len(items))
	for i, item := range items {
		lower[i] = strings.ToLower(item)
	}
	return func(name string) bool {
		return slices.Contains(lower, strings.ToLower(name))
	}
}

func createContainsFunc(text string) func(string) bool {
	lower := strings.ToLower(text)
	return func(name string) bool {
		return name != "" && strings.Contains(lower, strings.ToLower(name))
	}
}
