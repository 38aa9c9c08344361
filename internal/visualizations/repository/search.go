package repository

import (
	"strings"

	"github.com/google/shlex"
)

// searchTerm is one whitespace-separated term of a search string. Key is
// empty for free text.
type searchTerm struct {
	Key   string
	Value string
}

var searchAliases = map[string]string{
	"title": "title",
	"slug":  "slug",
	"tag":   "tag",
	"user":  "user",
	"u":     "user",
	"is":    "is",
}

// parseSearch splits a search string into terms. "key:value" terms with a
// known key become filters; quotes group words ("title:'my plot'"). A string
// with an unterminated quote falls back to plain whitespace splitting.
func parseSearch(search string) []searchTerm {
	tokens, err := shlex.Split(search)
	if err != nil {
		tokens = strings.Fields(strings.NewReplacer(`"`, "", "'", "").Replace(search))
	}

	var terms []searchTerm
	for _, tok := range tokens {
		if i := strings.IndexByte(tok, ':'); i > 0 {
			if key, ok := searchAliases[strings.ToLower(tok[:i])]; ok {
				if value := strings.TrimSpace(tok[i+1:]); value != "" {
					terms = append(terms, searchTerm{Key: key, Value: value})
				}
				continue
			}
		}
		if tok != "" {
			terms = append(terms, searchTerm{Value: tok})
		}
	}
	return terms
}
