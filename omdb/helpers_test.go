package omdb

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

// fakeOMDb is an in-memory stand-in for the OMDb API
type fakeOMDb struct {
	films    []Details
	searches map[string]string

	requests atomic.Int32

	mu    sync.Mutex
	calls []string
}

func shrekFilms() []Details {
	base := Details{
		Rated:    "PG",
		Runtime:  "90 min",
		Genre:    "Animation, Adventure, Comedy",
		Director: "Andrew Adamson, Vicky Jenson",
		Writer:   "William Steig, Ted Elliott, Terry Rossio",
		Actors:   "Mike Myers, Eddie Murphy, Cameron Diaz",
		Plot:     "A mean lord exiles fairytale creatures to the swamp of a grumpy ogre.",
		Language: "English",
		Type:     "movie",
	}

	films := []Details{
		{Title: "Shrek", Year: "2001", Released: "18 May 2001", IMDbID: "tt0126029"},
		{Title: "Shrek 2", Year: "2004", Released: "19 May 2004", IMDbID: "tt0298148"},
		{Title: "Shrek the Third", Year: "2007", Released: "18 May 2007", IMDbID: "tt0413267"},
		{Title: "Shrek Forever After", Year: "2010", Released: "21 May 2010", IMDbID: "tt0892791"},
	}
	for i := range films {
		d := base
		d.Title, d.Year, d.Released, d.IMDbID = films[i].Title, films[i].Year, films[i].Released, films[i].IMDbID
		films[i] = d
	}
	return films
}

// searchResponse is the wire shape of a search page
type searchResponse struct {
	Search       []SearchResult `json:"Search"`
	TotalResults string         `json:"totalResults"`
	Response     string         `json:"Response"`
}

func searchBody(t *testing.T, films ...Details) string {
	t.Helper()

	results := make([]SearchResult, 0, len(films))
	for _, f := range films {
		results = append(results, SearchResult{Title: f.Title, Year: f.Year, IMDbID: f.IMDbID, Type: "movie", Poster: "N/A"})
	}
	body, err := json.Marshal(searchResponse{Search: results, TotalResults: "4", Response: "True"})
	require.NoError(t, err)
	return string(body)
}

func newFakeOMDb(t *testing.T) *fakeOMDb {
	films := shrekFilms()
	return &fakeOMDb{
		films: films,
		searches: map[string]string{
			"shrek": searchBody(t, films...),
		},
	}
}

func (f *fakeOMDb) find(match func(Details) bool) (Details, bool) {
	for _, d := range f.films {
		if match(d) {
			return d, true
		}
	}
	return Details{}, false
}

func (f *fakeOMDb) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	q := r.URL.Query()

	f.mu.Lock()
	f.calls = append(f.calls, r.URL.RawQuery)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if q.Get("apikey") != testAPIKey {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
		return
	}

	switch {
	case q.Has("t"):
		if d, ok := f.find(func(d Details) bool { return d.Title == q.Get("t") }); ok {
			json.NewEncoder(w).Encode(withResponse(d))
			return
		}
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	case q.Has("i"):
		if d, ok := f.find(func(d Details) bool { return d.IMDbID == q.Get("i") }); ok {
			json.NewEncoder(w).Encode(withResponse(d))
			return
		}
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	case q.Has("s"):
		if body, ok := f.searches[q.Get("s")]; ok {
			w.Write([]byte(body))
			return
		}
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	default:
		w.Write([]byte(`{"Response":"False","Error":"No API key provided."}`))
	}
}

func (f *fakeOMDb) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// withResponse adds the success marker OMDb puts on every record
func withResponse(d Details) map[string]string {
	return map[string]string{
		"Title": d.Title, "Year": d.Year, "Rated": d.Rated, "Released": d.Released,
		"Runtime": d.Runtime, "Genre": d.Genre, "Director": d.Director, "Writer": d.Writer,
		"Actors": d.Actors, "Plot": d.Plot, "Language": d.Language, "imdbID": d.IMDbID,
		"Type": d.Type, "Poster": "N/A", "Response": "True",
	}
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, testAPIKey, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client, server
}
