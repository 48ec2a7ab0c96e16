package server

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	reconciledomain "github.com/smallbiznis/norra/internal/reconcile/domain"
)

func writeCSV(c *gin.Context, filename string, data interface{}) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	switch v := data.(type) {
	case *mrrMetricsResponse:
		_ = writer.Write([]string{"Period", "MRR", "ARR", "ARPU", "Active Subscriptions", "Customers", "Skipped", "Source"})
		_ = writer.Write([]string{
			v.Period,
			v.MRR.StringFixed(2),
			v.ARR.StringFixed(2),
			v.ARPU.StringFixed(2),
			strconv.Itoa(v.ActiveSubscriptions),
			strconv.Itoa(v.TotalCustomers),
			strconv.Itoa(v.SkippedRecords),
			v.Source,
		})
	case []mrrdomain.Snapshot:
		_ = writer.Write([]string{"Period", "MRR", "ARR", "Active Subscriptions", "Customers", "Skipped", "Source"})
		for _, snap := range v {
			_ = writer.Write([]string{
				snap.Month(),
				snap.MRR.StringFixed(2),
				snap.ARR.StringFixed(2),
				strconv.Itoa(snap.ActiveSubscriptions),
				strconv.Itoa(snap.TotalCustomers),
				strconv.Itoa(snap.SkippedRecords),
				string(snap.Source),
			})
		}
	case *mrrdomain.ChurnReport:
		_ = writer.Write([]string{"Metric", "Value"})
		_ = writer.Write([]string{"Churned Customers", strconv.Itoa(v.ChurnedCustomers)})
		_ = writer.Write([]string{"Churned MRR", v.ChurnedMRR.StringFixed(2)})
		_ = writer.Write([]string{"Customer Churn Rate", v.CustomerChurnRate.String()})
		_ = writer.Write([]string{"Revenue Churn Rate", v.RevenueChurnRate.String()})
	case *mrrdomain.Movement:
		_ = writer.Write([]string{"Metric", "Value"})
		_ = writer.Write([]string{"New MRR", v.NewMRR.StringFixed(2)})
		_ = writer.Write([]string{"Churned MRR", v.ChurnedMRR.StringFixed(2)})
		_ = writer.Write([]string{"Net MRR Change", v.NetChange.StringFixed(2)})
		_ = writer.Write([]string{"New Subscriptions", strconv.Itoa(v.NewCount)})
		_ = writer.Write([]string{"Churned Subscriptions", strconv.Itoa(v.ChurnedCount)})
	case *reconciledomain.RunResult:
		_ = writer.Write([]string{"Period", "Calculated MRR", "Reference MRR", "Absolute Delta", "Relative Delta", "Classification"})
		for _, result := range v.Results {
			relative := "N/A"
			if result.RelativeDelta != nil {
				relative = result.RelativeDelta.String()
			}
			_ = writer.Write([]string{
				result.Period,
				result.CalculatedMRR.StringFixed(2),
				result.ReferenceMRR.StringFixed(2),
				result.AbsoluteDelta.StringFixed(2),
				relative,
				string(result.Classification),
			})
		}
	default:
		// Fallback for unknown types or just empty CSV
	}
}
