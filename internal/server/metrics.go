package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
)

type mrrMetricsResponse struct {
	AsOf                time.Time       `json:"as_of"`
	Period              string          `json:"period"`
	MRR                 decimal.Decimal `json:"mrr"`
	ARR                 decimal.Decimal `json:"arr"`
	ARPU                decimal.Decimal `json:"arpu"`
	ActiveSubscriptions int             `json:"active_subscriptions"`
	TotalCustomers      int             `json:"total_customers"`
	SkippedRecords      int             `json:"skipped_records"`
	Source              string          `json:"source"`
}

func (s *Server) GetMRR(c *gin.Context) {
	if s.mrrSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	asOfValue, err := parseOptionalTime(c.Query("as_of"), true)
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_time", "invalid as_of time"))
		return
	}
	asOf := s.clock.Now()
	if asOfValue != nil {
		asOf = asOfValue.UTC()
	}

	source := mrrdomain.SourceCalculated
	switch strings.TrimSpace(c.Query("source")) {
	case "", string(mrrdomain.SourceCalculated):
	case string(mrrdomain.SourceImported):
		source = mrrdomain.SourceImported
	default:
		AbortWithError(c, newValidationError("source", "invalid_source", "invalid snapshot source"))
		return
	}

	ctx := c.Request.Context()
	snap, err := s.mrrSvc.LatestSnapshot(ctx, asOf, source)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := &mrrMetricsResponse{
		AsOf:                asOf,
		Period:              snap.Month(),
		MRR:                 snap.MRR,
		ARR:                 snap.ARR,
		ActiveSubscriptions: snap.ActiveSubscriptions,
		TotalCustomers:      snap.TotalCustomers,
		SkippedRecords:      snap.SkippedRecords,
		Source:              string(snap.Source),
	}
	if snap.TotalCustomers > 0 {
		resp.ARPU = snap.MRR.DivRound(decimal.NewFromInt(int64(snap.TotalCustomers)), 2)
	}

	if c.Query("format") == "csv" {
		writeCSV(c, "mrr.csv", resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetChurn(c *gin.Context) {
	if s.mrrSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	startValue, err := parseOptionalTime(c.Query("start"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start", "invalid_time", "invalid start time"))
		return
	}
	endValue, err := parseOptionalTime(c.Query("end"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end", "invalid_time", "invalid end time"))
		return
	}

	now := s.clock.Now()
	end := now
	if endValue != nil {
		end = endValue.UTC()
	}
	start := end.AddDate(0, -1, 0)
	if startValue != nil {
		start = startValue.UTC()
	}

	report, err := s.mrrSvc.Churn(c.Request.Context(), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		writeCSV(c, "churn.csv", report)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) ListSnapshots(c *gin.Context) {
	if s.mrrSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	startValue, err := parseOptionalTime(c.Query("start"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start", "invalid_time", "invalid start time"))
		return
	}
	endValue, err := parseOptionalTime(c.Query("end"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end", "invalid_time", "invalid end time"))
		return
	}

	end := s.clock.Now()
	if endValue != nil {
		end = endValue.UTC()
	}
	start := end.AddDate(-1, 0, 0)
	if startValue != nil {
		start = startValue.UTC()
	}

	snapshots, err := s.mrrSvc.ListSnapshots(c.Request.Context(), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		writeCSV(c, "snapshots.csv", snapshots)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

func (s *Server) ComputeSnapshot(c *gin.Context) {
	if s.mrrSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req struct {
		AsOf string `json:"as_of"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	asOfValue, err := parseOptionalTime(req.AsOf, true)
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_time", "invalid as_of time"))
		return
	}
	asOf := s.clock.Now()
	if asOfValue != nil {
		asOf = asOfValue.UTC()
	}

	snap, err := s.mrrSvc.ComputeSnapshot(c.Request.Context(), asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snap)
}
