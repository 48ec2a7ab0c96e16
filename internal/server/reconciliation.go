package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) RunReconciliation(c *gin.Context) {
	if s.importer == nil || s.reconcileSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	persistValue, err := parseOptionalBool(c.PostForm("persist"))
	if err != nil {
		AbortWithError(c, newValidationError("persist", "invalid_persist", "invalid persist flag"))
		return
	}
	persist := persistValue != nil && *persistValue

	imp, err := s.importUpload(c, "file")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.AddReportRowsSkipped(imp.SkippedRows)

	run, err := s.reconcileSvc.Run(c.Request.Context(), imp, persist)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	for _, result := range run.Results {
		s.metrics.IncReconcileOutcome(string(result.Classification))
	}

	if c.Query("format") == "csv" {
		writeCSV(c, "reconciliation.csv", run)
		return
	}

	c.JSON(http.StatusOK, run)
}
