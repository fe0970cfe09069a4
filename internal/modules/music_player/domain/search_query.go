package domain

import (
	"net/url"
	"strings"
)

// SearchSource is the audio engine's search prefix for free-text queries.
type SearchSource string

const (
	SourceYouTube      SearchSource = "ytsearch"
	SourceYouTubeMusic SearchSource = "ytmsearch"
	SourceSoundCloud   SearchSource = "scsearch"
	// SourceDirect marks a link that is loaded as-is.
	SourceDirect SearchSource = ""
)

// SearchQuery is a track link classified as either a direct URL or a search.
type SearchQuery struct {
	Query  string
	Source SearchSource
}

// ParseSearchQuery classifies link, searching YouTube for anything that is not a URL.
func ParseSearchQuery(link string) SearchQuery {
	return ParseSearchQueryWithSource(link, SourceYouTube)
}

// ParseSearchQueryWithSource is ParseSearchQuery with a custom search source.
func ParseSearchQueryWithSource(link string, source SearchSource) SearchQuery {
	link = strings.TrimSpace(link)
	if isURL(link) {
		return SearchQuery{Query: link, Source: SourceDirect}
	}
	return SearchQuery{Query: link, Source: source}
}

// IsURL reports whether the query is loaded directly.
func (q SearchQuery) IsURL() bool {
	return q.Source == SourceDirect
}

// Identifier returns the string the audio engine loads.
func (q SearchQuery) Identifier() string {
	if q.IsURL() {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

func isURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
