// Package omdb provides a client for the OMDb movie metadata API.
//
// Films can be looked up by title or by IMDb identifier, and a title search
// can be expanded into the full record of every hit.
//
// # Usage
//
// Create a client with your API key:
//
//	logger := zerolog.New(os.Stderr)
//	client, err := omdb.NewClient("", os.Getenv("OMDB_API_KEY"), logger,
//		omdb.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	film, err := client.LookupByTitle(ctx, "Shrek")
//	if errors.Is(err, omdb.ErrNotFound) {
//		// no such film
//	}
//	fmt.Println(film.Title(), film.Year())
//
// # Search
//
// SearchByTitle issues one search request and then one lookup per hit. In
// SearchModeStructured (the default) hits are decoded from the result list
// and looked up by IMDb ID. SearchModeScrape instead extracts every
// "Title":"..." value from the raw body and looks each one up by title.
//
// # Error Handling
//
// Every request made through a Client fails with *Error, whose Kind
// classifies the failure. NewClient and the package-level LookupByTitle,
// LookupByID and SearchByTitle reject a missing API key or a malformed base
// URL before any request with an error wrapping ErrInvalidConfig. The
// sentinels ErrNotFound, ErrDecode, ErrTransport, ErrTimeout, ErrUnauthorized
// and ErrAPI can be matched with errors.Is. A body that cannot be decoded
// matches both ErrDecode and ErrNotFound.
package omdb
