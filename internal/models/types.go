package models

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// UnknownHours marks a shift duration that could not be parsed.
// It sorts last under ascending-duration order.
const UnknownHours = 9999

// Wage represents the wage range of a listing in yen. Zero means unknown.
type Wage struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// JobRecord represents the structured data extracted from one listing table
type JobRecord struct {
	Salary Wage `json:"salary"`
	Hours  int  `json:"hours"`
}

// ScrapedItem is the persisted form of a listing: its markup plus the record
type ScrapedItem struct {
	HTML string    `json:"html"`
	Data JobRecord `json:"data"`
}

// DisplayedJob is a listing that is live in the current document
type DisplayedJob struct {
	Element *goquery.Selection
	Data    JobRecord
}

// SortKey selects the ordering applied by the sort engine
type SortKey string

const (
	SortSalaryMax SortKey = "salary_max"
	SortSalaryMin SortKey = "salary_min"
	SortHours     SortKey = "hours"
)

// SortKeys lists the supported keys in menu order
var SortKeys = []SortKey{SortSalaryMax, SortSalaryMin, SortHours}

// ParseSortKey validates a user supplied sort key
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q (want salary_max, salary_min or hours)", s)
}

// Label returns the button caption shown for the key
func (k SortKey) Label() string {
	switch k {
	case SortSalaryMax:
		return "賃金順 (上限が高い順)"
	case SortSalaryMin:
		return "賃金順 (下限が高い順)"
	case SortHours:
		return "就業時間順 (短い順)"
	}
	return string(k)
}
