package domain

import "regexp"

// queryPattern matches [[query]] and [[alias|query]]. The query capture is
// non-greedy, so the first well-formed ]] closes the match, and a single
// trailing pipe before the close is absorbed.
var queryPattern = regexp.MustCompile(`\[\[(?:(?P<alias>.+)\|)?(?P<query>.+?)\|?\]\]`)

// QueryRequest is one bracketed query lifted from a chat message. Alias is
// empty when the message did not name an endpoint, in which case the
// tenant's default endpoint is used.
type QueryRequest struct {
	Alias string
	Query string
}

// HasAlias reports whether the request named an endpoint alias.
func (q QueryRequest) HasAlias() bool {
	return q.Alias != ""
}

// ParseQueries scans text for bracketed queries and returns them in order
// of first appearance. Malformed or unbalanced brackets are simply not
// matched; a message without queries yields nil.
func ParseQueries(text string) []QueryRequest {
	matches := queryPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	requests := make([]QueryRequest, 0, len(matches))
	for _, m := range matches {
		requests = append(requests, QueryRequest{
			Alias: m[1],
			Query: m[2],
		})
	}
	return requests
}
