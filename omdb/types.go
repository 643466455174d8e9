package omdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// notAvailable is what OMDb puts in fields it has no data for
const notAvailable = "N/A"

// Details carries the text fields of a film, keyed by the names OMDb uses
type Details struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Rated    string `json:"Rated"`
	Released string `json:"Released"`
	Runtime  string `json:"Runtime"`
	Genre    string `json:"Genre"`
	Director string `json:"Director"`
	Writer   string `json:"Writer"`
	Actors   string `json:"Actors"`
	Plot     string `json:"Plot"`
	Language string `json:"Language"`
	IMDbID   string `json:"imdbID,omitempty"`
	Type     string `json:"Type,omitempty"`
}

// Film is one movie record as returned by OMDb. It cannot be modified after
// construction; the accessors return copies of the stored text.
type Film struct {
	d Details
}

// NewFilm builds a Film from the given details
func NewFilm(d Details) Film {
	return Film{d: d}
}

// Title returns the film title
func (f Film) Title() string { return f.d.Title }

// Year returns the release year as reported by OMDb, e.g. "2001" or "2005–2013"
func (f Film) Year() string { return f.d.Year }

// Rated returns the content rating, e.g. "PG"
func (f Film) Rated() string { return f.d.Rated }

// Released returns the release date text, e.g. "18 May 2001"
func (f Film) Released() string { return f.d.Released }

// Runtime returns the runtime text, e.g. "90 min"
func (f Film) Runtime() string { return f.d.Runtime }

// Genre returns the comma separated genre list
func (f Film) Genre() string { return f.d.Genre }

// Director returns the director text
func (f Film) Director() string { return f.d.Director }

// Writer returns the writer text
func (f Film) Writer() string { return f.d.Writer }

// Actors returns the comma separated actor list
func (f Film) Actors() string { return f.d.Actors }

// Plot returns the plot summary
func (f Film) Plot() string { return f.d.Plot }

// Language returns the language text
func (f Film) Language() string { return f.d.Language }

// IMDbID returns the IMDb identifier, if the response carried one
func (f Film) IMDbID() string { return f.d.IMDbID }

// Type returns the media type ("movie", "series", "episode"), if known
func (f Film) Type() string { return f.d.Type }

// Details returns a copy of every field
func (f Film) Details() Details { return f.d }

// RuntimeMinutes parses Runtime into minutes, returning 0 when unknown
func (f Film) RuntimeMinutes() int {
	runtime := strings.TrimSpace(strings.TrimSuffix(f.d.Runtime, "min"))
	minutes, err := strconv.Atoi(runtime)
	if err != nil {
		return 0
	}
	return minutes
}

// YearInt returns the first year in Year, or 0 when it cannot be parsed
func (f Film) YearInt() int {
	year := f.d.Year
	if len(year) < 4 {
		return 0
	}
	n, err := strconv.Atoi(year[:4])
	if err != nil {
		return 0
	}
	return n
}

// Genres splits Genre into its entries
func (f Film) Genres() []string {
	return splitList(f.d.Genre)
}

// ActorList splits Actors into its entries
func (f Film) ActorList() []string {
	return splitList(f.d.Actors)
}

// MarshalJSON encodes the film with the OMDb field names
func (f Film) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.d)
}

func splitList(s string) []string {
	if s == "" || s == notAvailable {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// rawObject holds the members of a JSON object by their exact key. Unlike
// struct decoding, lookups never fold case.
type rawObject map[string]json.RawMessage

func decodeObject(body []byte) (rawObject, error) {
	var obj rawObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// field returns the string stored under key. A missing key or a null value
// reports present as false.
func (o rawObject) field(key string) (value string, present bool, err error) {
	raw, ok := o[key]
	if !ok || string(raw) == "null" {
		return "", false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", true, fmt.Errorf("field %s: %w", key, err)
	}
	return value, true, nil
}

// requiredFields pairs every key a film record must carry with its destination
func requiredFields(d *Details) []struct {
	name string
	dst  *string
} {
	return []struct {
		name string
		dst  *string
	}{
		{"Title", &d.Title},
		{"Year", &d.Year},
		{"Rated", &d.Rated},
		{"Released", &d.Released},
		{"Runtime", &d.Runtime},
		{"Genre", &d.Genre},
		{"Director", &d.Director},
		{"Writer", &d.Writer},
		{"Actors", &d.Actors},
		{"Plot", &d.Plot},
		{"Language", &d.Language},
	}
}

// remoteError returns the not-found error for an error-shaped body, or nil
func remoteError(obj rawObject) (*Error, error) {
	response, _, err := obj.field("Response")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(response, "False") {
		return nil, nil
	}
	message, _, _ := obj.field("Error")
	return &Error{Op: "parse", Kind: KindNotFound, Message: message}, nil
}

// ParseFilm decodes a single-record OMDb response body. Keys are matched
// case-sensitively.
//
// An error-shaped body ({"Response":"False",...}) yields a KindNotFound error.
// A body that is not a JSON object, or that lacks any of the required fields,
// yields a KindDecode error. Both match ErrNotFound.
func ParseFilm(body []byte) (Film, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return Film{}, &Error{Op: "parse", Kind: KindDecode, Err: err}
	}

	notFound, err := remoteError(obj)
	if err != nil {
		return Film{}, &Error{Op: "parse", Kind: KindDecode, Err: err}
	}
	if notFound != nil {
		return Film{}, notFound
	}

	var (
		d       Details
		missing []string
	)
	for _, f := range requiredFields(&d) {
		value, present, err := obj.field(f.name)
		if err != nil {
			return Film{}, &Error{Op: "parse", Kind: KindDecode, Err: err}
		}
		if !present {
			missing = append(missing, f.name)
			continue
		}
		*f.dst = value
	}

	if len(missing) > 0 {
		return Film{}, &Error{
			Op:      "parse",
			Kind:    KindDecode,
			Message: "missing fields: " + strings.Join(missing, ", "),
		}
	}

	if d.IMDbID, _, err = obj.field("imdbID"); err != nil {
		return Film{}, &Error{Op: "parse", Kind: KindDecode, Err: err}
	}
	if d.Type, _, err = obj.field("Type"); err != nil {
		return Film{}, &Error{Op: "parse", Kind: KindDecode, Err: err}
	}

	return NewFilm(d), nil
}

// SearchResult is one entry of a search response
type SearchResult struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster,omitempty"`
}

// decodeSearchResult reads one entry of the Search list by exact key
func decodeSearchResult(obj rawObject) (SearchResult, error) {
	var r SearchResult
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"Title", &r.Title},
		{"Year", &r.Year},
		{"imdbID", &r.IMDbID},
		{"Type", &r.Type},
		{"Poster", &r.Poster},
	} {
		value, _, err := obj.field(f.name)
		if err != nil {
			return SearchResult{}, err
		}
		*f.dst = value
	}
	if r.Title == "" && r.IMDbID == "" {
		return SearchResult{}, errors.New("search entry without Title or imdbID")
	}
	return r, nil
}
