package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/s0up4200/omdbfilm/omdb"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printFilm writes the full details of a film
func printFilm(w io.Writer, format string, film omdb.Film) error {
	if format == "json" {
		return printJSON(w, film)
	}

	writeDetails(w, film)
	return nil
}

// printFilms writes search results, one block per film or one line each in summary mode
func printFilms(w io.Writer, format string, films []omdb.Film, summary bool) error {
	if format == "json" {
		if films == nil {
			films = []omdb.Film{}
		}
		return printJSON(w, films)
	}

	if len(films) == 0 {
		fmt.Fprintln(w, "No films found matching the criteria.")
		return nil
	}

	fmt.Fprintf(w, "Found %d films:\n", len(films))
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for i, film := range films {
		if summary {
			fmt.Fprintf(w, "• %s\n", headline(film))
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeDetails(w, film)
	}

	return nil
}

func headline(film omdb.Film) string {
	line := fmt.Sprintf("%s (%s)", film.Title(), film.Year())
	if film.IMDbID() != "" {
		line += " [" + film.IMDbID() + "]"
	}
	return line
}

func writeDetails(w io.Writer, film omdb.Film) {
	fmt.Fprintln(w, headline(film))

	fields := []struct {
		label string
		value string
	}{
		{"Rated", film.Rated()},
		{"Released", film.Released()},
		{"Runtime", film.Runtime()},
		{"Genre", film.Genre()},
		{"Director", film.Director()},
		{"Writer", film.Writer()},
		{"Actors", film.Actors()},
		{"Language", film.Language()},
		{"Plot", film.Plot()},
	}

	for _, field := range fields {
		if field.value == "" || field.value == "N/A" {
			continue
		}
		fmt.Fprintf(w, "  %-9s %s\n", field.label+":", field.value)
	}
}
