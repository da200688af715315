package services

import (
	"regexp"
	"strconv"
	"strings"
)

// Field extraction is pattern-based on purpose: the search and extract
// calls return compact JSON and the page fetch returns HTML, and the
// patterns below are tuned to the exact shape the MediaWiki API emits.
var (
	titlePattern = regexp.MustCompile(`"title":"(?P<title>.+?)"`)

	// The optional backslash before the closing quote keeps a truncated
	// escape at the end of the excerpt out of the capture.
	excerptPattern = regexp.MustCompile(`"extract":"(?P<summary>.+?)\\?"`)

	thumbnailPattern = regexp.MustCompile(`<meta property="og:image" content="(?P<thumbnail>.+?)"`)
)

// ExtractTitle pulls the best-match title out of a search response body.
func ExtractTitle(body string) (string, bool) {
	m := titlePattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractSummary pulls the plain-text excerpt out of an extract response body.
func ExtractSummary(body string) (string, bool) {
	m := excerptPattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractThumbnail pulls the og:image URL out of an article page body.
func ExtractThumbnail(body string) (string, bool) {
	m := thumbnailPattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// decodeEscapes turns literal escape sequences (\n, \t, \uXXXX, \" and
// friends) into the characters they name. JSON's \/ is normalized first
// since strconv does not accept it.
func decodeEscapes(s string) (string, error) {
	s = strings.ReplaceAll(s, `\/`, "/")
	return strconv.Unquote(`"` + s + `"`)
}
