package models

import "strings"

// Resource is one catalog row pointing at a stored study document.
type Resource struct {
	ID          string `db:"id" json:"id"`
	Faculty     string `db:"faculty" json:"faculty"`
	Subject     string `db:"subject" json:"subject"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	Semester    string `db:"semester" json:"semester"`
	Module      string `db:"module" json:"module"`
	Link        string `db:"resource_link" json:"resource_link"`
}

// AllValue marks semester or module as intentionally unconstrained.
const AllValue = "all"

// Criteria captures the search constraints extracted from one utterance.
type Criteria struct {
	Faculty     string `json:"faculty"`
	Subject     string `json:"subject"`
	SubjectCode string `json:"subject_code"`
	Semester    string `json:"semester"`
	Module      string `json:"module"`
}

// DefaultCriteria returns the fully unconstrained record.
func DefaultCriteria() Criteria {
	return Criteria{Semester: AllValue, Module: AllValue}
}

// IsSearch reports whether any primary search field was provided. Semester
// and module alone are not enough to run a search.
func (c Criteria) IsSearch() bool {
	return c.Faculty != "" || c.Subject != "" || c.SubjectCode != ""
}

// Unconstrained reports whether a semester/module value places no restriction.
func Unconstrained(value string) bool {
	return value == "" || strings.EqualFold(value, AllValue)
}
