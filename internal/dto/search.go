package dto

import "github.com/noah-isme/study-resource-bot/internal/models"

// SearchRequest is the structured search accepted by the REST API and CLI.
type SearchRequest struct {
	Faculty     string `json:"faculty" form:"faculty" validate:"max=120"`
	Subject     string `json:"subject" form:"subject" validate:"max=120"`
	SubjectCode string `json:"subject_code" form:"subject_code" validate:"omitempty,alphanum,max=20"`
	Semester    string `json:"semester" form:"semester" validate:"omitempty,max=10"`
	Module      string `json:"module" form:"module" validate:"omitempty,max=10"`
	Query       string `json:"query" form:"query" validate:"max=500"`
}

// SearchResponse lists the matching resources.
type SearchResponse struct {
	Criteria  models.Criteria   `json:"criteria"`
	Count     int               `json:"count"`
	Resources []models.Resource `json:"resources"`
}

// SubjectsResponse lists canonical subject names in catalog order.
type SubjectsResponse struct {
	Subjects []string `json:"subjects"`
}
