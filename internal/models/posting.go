package models

import (
	"encoding/json"
	"strings"
	"time"
)

// RemoteFlag is the tri-state remote indicator for a posting. Boards do not
// always report remote status, so "unknown" is distinct from "no".
type RemoteFlag int8

const (
	RemoteUnknown RemoteFlag = iota
	RemoteYes
	RemoteNo
)

// RemoteFromPtr maps an optional boolean from a board payload onto the enum.
func RemoteFromPtr(b *bool) RemoteFlag {
	if b == nil {
		return RemoteUnknown
	}
	if *b {
		return RemoteYes
	}
	return RemoteNo
}

func (f RemoteFlag) String() string {
	switch f {
	case RemoteYes:
		return "true"
	case RemoteNo:
		return "false"
	default:
		return ""
	}
}

type Posting struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	JobURL      string     `json:"job_url"`
	SalaryMin   *float64   `json:"salary_min,omitempty"`
	SalaryMax   *float64   `json:"salary_max,omitempty"`
	Remote      RemoteFlag `json:"remote"`
	DatePosted  *time.Time `json:"date_posted,omitempty"`

	// Score is set exactly once, after a posting has passed every filter.
	Score  float64 `json:"score"`
	Scored bool    `json:"scored"`

	// FetchIndex is the posting's position in the fetched collection and is
	// the final tie-break when date and score are equal.
	FetchIndex int `json:"fetch_index"`
}

// Key returns the deduplication key: the job URL when present, otherwise
// title plus company.
func (p Posting) Key() string {
	if p.JobURL != "" {
		return strings.ToLower(p.JobURL)
	}
	return strings.ToLower(p.Title + "|" + p.Company)
}

// PostingList exists so fetched board results can round-trip through the
// cache as a single value.
type PostingList []Posting

func (l PostingList) MarshalBinary() ([]byte, error) {
	return json.Marshal(l)
}

func (l *PostingList) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, l)
}

// SearchParams is everything a board needs to run one search.
type SearchParams struct {
	Term          string
	Location      string
	ResultsWanted int
	MaxAgeHours   int
	RemoteOnly    bool
}
