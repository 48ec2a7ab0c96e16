package server

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/norra/internal/report/domain"
)

func (s *Server) ImportReport(c *gin.Context) {
	if s.importer == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	imp, err := s.importUpload(c, "file")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.AddReportRowsSkipped(imp.SkippedRows)

	c.JSON(http.StatusOK, gin.H{
		"import":            imp,
		"reference_figures": imp.ReferenceFigures(),
	})
}

func (s *Server) ComputeMovement(c *gin.Context) {
	if s.importer == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	current, err := s.importUpload(c, "current")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	previous, err := s.importUpload(c, "previous")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	movement, err := reportdomain.ComputeMovement(current, previous)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		writeCSV(c, "mrr_movement.csv", movement)
		return
	}

	c.JSON(http.StatusOK, movement)
}

func (s *Server) importUpload(c *gin.Context, field string) (*reportdomain.Import, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, newValidationError(field, "file_required", "multipart file "+field+" is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, reportdomain.ErrSourceUnavailable
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	return s.importer.Import(file)
}
