package filter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/s0up4200/omdbfilm/omdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFilms() []omdb.Film {
	return []omdb.Film{
		omdb.NewFilm(omdb.Details{
			Title: "Shrek", Year: "2001", Runtime: "90 min", Rated: "PG",
			Genre: "Animation, Adventure, Comedy", Director: "Andrew Adamson, Vicky Jenson",
			Actors: "Mike Myers, Eddie Murphy, Cameron Diaz", Language: "English", Type: "movie",
		}),
		omdb.NewFilm(omdb.Details{
			Title: "Shrek 2", Year: "2004", Runtime: "93 min", Rated: "PG",
			Genre: "Animation, Adventure, Comedy", Director: "Andrew Adamson, Kelly Asbury, Conrad Vernon",
			Actors: "Mike Myers, Eddie Murphy, Cameron Diaz", Language: "English", Type: "movie",
		}),
		omdb.NewFilm(omdb.Details{
			Title: "Shrek the Halls", Year: "2007", Runtime: "21 min", Rated: "TV-PG",
			Genre: "Animation, Short, Comedy", Director: "Gary Trousdale",
			Actors: "Mike Myers, Eddie Murphy", Language: "English", Type: "movie",
		}),
		omdb.NewFilm(omdb.Details{
			Title: "Shrek: The Musical", Year: "2013", Runtime: "N/A", Rated: "N/A",
			Genre: "Musical", Director: "Michael John Warren",
			Actors: "Brian d'Arcy James, Sutton Foster", Language: "English", Type: "movie",
		}),
	}
}

func matchedTitles(films []omdb.Film) []string {
	out := make([]string, 0, len(films))
	for _, f := range films {
		out = append(out, f.Title())
	}
	return out
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasGenre("comedy")`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasGenre("unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown variable",
			expression: `Budget > 100`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `Title`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `hasGenre("animation") and year() >= 2004 and runtimeMinutes() > 60`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.True(t, errors.As(err, &compErr))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.expression), filter.Expression())
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	shrek := testFilms()[0]

	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{"title equality", `Title == "Shrek"`, true},
		{"year text equality", `Year == "2001"`, true},
		{"year helper", `year() == 2001`, true},
		{"runtime helper", `runtimeMinutes() >= 100`, false},
		{"has genre case insensitive", `hasGenre("COMEDY")`, true},
		{"has genre needs whole entry", `hasGenre("Comed")`, false},
		{"has actor", `hasActor("eddie murphy")`, true},
		{"directed by partial name", `directedBy("Adamson")`, true},
		{"contains operator", `Actors contains "Diaz"`, true},
		{"contains operator is case sensitive", `Actors contains "diaz"`, false},
		{"lower for case insensitive match", `lower(Actors) contains "diaz" and lower(Title) startsWith "sh"`, true},
		{"ends with operator", `Title endsWith "2"`, false},
		{"film methods", `Film.Rated() == "PG"`, true},
		{"negation", `not hasGenre("Horror")`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter.Evaluate(shrek), "expression %q", tt.expression)
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	films := testFilms()

	filter, err := CompileFilter(`hasGenre("Comedy") and runtimeMinutes() > 60`)
	require.NoError(t, err)

	matches, err := Apply(ctx, filter, films)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shrek", "Shrek 2"}, matchedTitles(matches))

	filter, err = CompileFilter(`Rated == "N/A" or year() == 0`)
	require.NoError(t, err)

	matches, err = Apply(ctx, filter, films)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shrek: The Musical"}, matchedTitles(matches))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Apply(cancelled, filter, films)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStringOperatorNamesAreNotFunctions(t *testing.T) {
	for _, expression := range []string{
		`contains(Title, "Shrek")`,
		`startsWith(Title, "Sh")`,
		`endsWith(Title, "2")`,
	} {
		_, err := CompileFilter(expression)
		var compErr *CompilationError
		assert.ErrorAs(t, err, &compErr, "expression %q", expression)
	}

	for _, expression := range []string{
		`Title contains "Shrek"`,
		`Title startsWith "Sh"`,
		`Title endsWith "2"`,
	} {
		_, err := CompileFilter(expression)
		assert.NoError(t, err, "expression %q", expression)
	}
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isFeature": func(minutes int) bool { return minutes >= 40 },
	}))

	filter, err := compiler.Compile(`isFeature(runtimeMinutes())`)
	require.NoError(t, err)

	matches, err := Apply(context.Background(), filter, testFilms())
	require.NoError(t, err)
	assert.Equal(t, []string{"Shrek", "Shrek 2"}, matchedTitles(matches))
}

func TestEvaluationError(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"explode": func() (bool, error) { return false, errors.New("boom") },
	}))

	filter, err := compiler.Compile(`explode()`)
	require.NoError(t, err)

	film := testFilms()[0]
	assert.False(t, filter.Evaluate(film))

	_, err = filter.Match(film)
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "Shrek", evalErr.FilmTitle)

	_, err = Apply(context.Background(), filter, []omdb.Film{film})
	assert.ErrorAs(t, err, &evalErr)
}

func TestCompilerCache(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile(`hasGenre("Comedy")`)
	require.NoError(t, err)
	again, err := compiler.Compile(`  hasGenre("Comedy")  `)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, compiler.Size())

	_, err = compiler.Compile(`year() > 2000`)
	require.NoError(t, err)
	_, err = compiler.Compile(`year() > 2005`)
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Size())

	// the first entry was least recently used and has been evicted
	evicted, err := compiler.Compile(`hasGenre("Comedy")`)
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)

	compiler.Clear()
	assert.Equal(t, 0, compiler.Size())
	assert.Equal(t, 0, NewExprCompiler().Size())
}

func TestManager(t *testing.T) {
	m := NewManager()

	err := m.RegisterFilters(map[string]string{
		"features": `runtimeMinutes() >= 40`,
		"sequels":  `Title endsWith "2"`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"features", "sequels"}, m.ListFilters())

	matches, err := m.ApplyFilter(context.Background(), "sequels", testFilms())
	require.NoError(t, err)
	assert.Equal(t, []string{"Shrek 2"}, matchedTitles(matches))

	_, err = m.ApplyFilter(context.Background(), "missing", testFilms())
	assert.ErrorContains(t, err, "filter 'missing' not found")

	err = m.RegisterFilters(map[string]string{
		"good": `hasGenre("Musical")`,
		"bad":  `hasGenre(`,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'bad'")
	_, exists := m.GetFilter("good")
	assert.False(t, exists)

	require.NoError(t, m.RegisterFilter("musicals", `hasGenre("Musical")`))
	_, exists = m.GetFilter("musicals")
	assert.True(t, exists)
}
