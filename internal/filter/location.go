package filter

import (
	"regexp"
	"strings"

	"github.com/JPrier/JobSearch/internal/models"
)

var usStateAbbrevs = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

var cityStatePattern = regexp.MustCompile(`,\s*([A-Z]{2})$`)

// Location accepts postings that look US-based and, when requireRemote is
// set, carry an affirmative remote flag.
type Location struct {
	requireRemote bool
}

func NewLocation(requireRemote bool) *Location {
	return &Location{requireRemote: requireRemote}
}

func (l *Location) Accepts(location string, remote models.RemoteFlag) bool {
	if l.requireRemote && remote != models.RemoteYes {
		return false
	}
	return isUSLocation(location)
}

// isUSLocation is permissive: an absent location passes. Otherwise the text
// must contain an explicit US marker or end in ", XX" with XX a valid state
// abbreviation.
func isUSLocation(location string) bool {
	loc := strings.TrimSpace(location)
	if loc == "" {
		return true
	}

	lower := strings.ToLower(loc)
	if strings.Contains(lower, "usa") || strings.Contains(lower, "united states") {
		return true
	}

	if match := cityStatePattern.FindStringSubmatch(loc); match != nil {
		return usStateAbbrevs[match[1]]
	}

	return false
}
