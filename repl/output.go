package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	mirage "github.com/Paranoid-AF/mirage"
)

// entry is one logged query.
type entry struct {
	Request requestEntry          `toml:"request"`
	Result  *mirage.SearchResults `toml:"result,omitempty"`
	Error   *mirage.ErrorBody     `toml:"error,omitempty"`
}

type requestEntry struct {
	Timestamp time.Time `toml:"timestamp"`
	Query     string    `toml:"query"`
	Cached    bool      `toml:"cached"`
	Duration  string    `toml:"duration"`
}

func newEntry(query string, cached bool, elapsed time.Duration, result *mirage.SearchResults, err error) *entry {
	e := &entry{
		Request: requestEntry{
			Timestamp: time.Now().Truncate(time.Second),
			Query:     query,
			Cached:    cached,
			Duration:  elapsed.Round(time.Millisecond).String(),
		},
	}
	if err != nil {
		e.Error = mirage.NewErrorBody(err)
	} else {
		e.Result = result
	}
	return e
}

// writeEntry writes a single TOML-formatted entry to w, preceded by a rule.
func writeEntry(w io.Writer, e *entry) error {
	fmt.Fprintf(w, "# %s\n\n", strings.Repeat("═", 60))
	if err := toml.NewEncoder(w).Encode(e); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
