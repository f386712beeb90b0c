package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-resource-bot/internal/dto"
	"github.com/noah-isme/study-resource-bot/internal/service"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
	"github.com/noah-isme/study-resource-bot/pkg/response"
)

type searchService interface {
	Subjects() dto.SubjectsResponse
	Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error)
	Export(ctx context.Context, req dto.SearchRequest, format string) (*service.ExportFile, error)
}

// SearchHandler exposes the catalog over HTTP.
type SearchHandler struct {
	service searchService
}

// NewSearchHandler constructs a search handler.
func NewSearchHandler(svc searchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// Subjects godoc
// @Summary List catalog subjects
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/subjects [get]
func (h *SearchHandler) Subjects(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Subjects())
}

// Search godoc
// @Summary Search study resources
// @Tags Resources
// @Accept json
// @Produce json
// @Param payload body dto.SearchRequest true "Search filters or free-text query"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources/search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	result, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"count": result.Count})
}

// Export godoc
// @Summary Export search results
// @Tags Resources
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param subject query string false "Subject name"
// @Param subject_code query string false "Subject code"
// @Param semester query string false "Semester"
// @Param module query string false "Module"
// @Param faculty query string false "Faculty"
// @Param query query string false "Free-text query"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /resources/export [get]
func (h *SearchHandler) Export(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), req, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
