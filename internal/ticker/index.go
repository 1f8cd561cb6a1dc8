// Package ticker provides the reference ticker list: loading it from the
// backend, a broker or a file, caching the last good copy, and answering
// autocomplete queries over it.
package ticker

import "strings"

// MaxResults caps the number of suggestions returned by Search.
const MaxResults = 10

// Record is one entry of the reference list.
type Record struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title"`

	tickerLower string
	titleLower  string
}

// NewRecord returns a record with its lowercase projections prepared.
func NewRecord(ticker, title string) Record {
	return Record{
		Ticker:      ticker,
		Title:       title,
		tickerLower: strings.ToLower(ticker),
		titleLower:  strings.ToLower(title),
	}
}

// Label is the suggestion text shown for the record.
func (r Record) Label() string {
	return r.Ticker + " — " + r.Title
}

// Result is the outcome of a Search. Visible is false whenever the
// suggestion list must be hidden, including an empty query.
type Result struct {
	Query   string
	Matches []Record
	Visible bool
}

// Index is an immutable, search-ready view over the reference list. The
// zero value and a nil *Index are empty indexes.
type Index struct {
	records []Record
}

// NewIndex prepares records for searching. Input order is kept and is the
// order of search results.
func NewIndex(records []Record) *Index {
	prepared := make([]Record, len(records))
	for i, r := range records {
		prepared[i] = NewRecord(r.Ticker, r.Title)
	}
	return &Index{records: prepared}
}

// Len returns the number of records.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// Records returns a copy of the indexed records in order.
func (ix *Index) Records() []Record {
	if ix == nil {
		return nil
	}
	return append([]Record(nil), ix.records...)
}

// Search returns up to MaxResults records whose ticker or title contains the
// query, case-insensitively, in index order. See Query for how the query is
// taken from input.
func (ix *Index) Search(input string) Result {
	q := Query(input)
	res := Result{Query: q}
	if q == "" || ix == nil {
		return res
	}
	for _, r := range ix.records {
		if strings.Contains(r.tickerLower, q) || strings.Contains(r.titleLower, q) {
			res.Matches = append(res.Matches, r)
			if len(res.Matches) == MaxResults {
				break
			}
		}
	}
	res.Visible = len(res.Matches) > 0
	return res
}

// Query extracts the search term from the input line: the text after the
// last '#' if there is one, otherwise the whole line, trimmed and
// lowercased.
func Query(input string) string {
	if i := strings.LastIndexByte(input, '#'); i >= 0 {
		input = input[i+1:]
	}
	return strings.ToLower(strings.TrimSpace(input))
}

// ApplySelection returns the input after choosing ticker from the
// suggestions. Everything from the last '#' on is replaced by the uppercased
// ticker and a trailing space; without a '#' the whole input is replaced.
func ApplySelection(input, ticker string) string {
	chosen := strings.ToUpper(ticker) + " "
	if i := strings.LastIndexByte(input, '#'); i >= 0 {
		return input[:i] + chosen
	}
	return chosen
}
