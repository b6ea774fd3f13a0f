package filter

import (
	"regexp"
)

// Title accepts or rejects postings on their title text. Matching is
// substring-based: "intern" in the exclusion list rejects "internship" and
// "international" alike.
type Title struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// NewTitle builds the filter from patterns compiled at config load. exclude
// may be nil, in which case nothing is excluded.
func NewTitle(include, exclude *regexp.Regexp) *Title {
	return &Title{include: include, exclude: exclude}
}

func (t *Title) Accepts(title string) bool {
	if !t.include.MatchString(title) {
		return false
	}
	if t.exclude != nil && t.exclude.MatchString(title) {
		return false
	}
	return true
}
