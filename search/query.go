package search

import (
	"strconv"
	"strings"
)

// Query represents the structured parameters of a history search. It
// decouples the raw chat input from the index engine requirements.
type Query struct {
	RawInput string // the original line from the user
	Terms    string // the actual text to match against message content
	RoomID   string // target room for the search
	Limit    int    // number of results
}

// ParseQuery extracts command-line style arguments from a raw line.
// Example: /find 전시 추천 --room lobby --limit 5
func ParseQuery(input string) *Query {
	query := &Query{RawInput: input, Limit: 10}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "room":
				query.RoomID = val
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++ // skip the value part in the next iteration
			continue
		}

		// If it's not a flag, it's a search term.
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, part)
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
