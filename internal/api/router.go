package api

import (
	"continuum-report/internal/api/handler"
	"continuum-report/pkg/router"

	_ "continuum-report/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RegisterRoutes wires the report API onto r.
func RegisterRoutes(r *router.Router, h *handler.ReportHandler) {
	r.POST("/api/v1/reports", h.CreateReport)
	r.GET("/api/v1/reports", h.ListReports)
	// More specific routes first
	r.GET("/api/v1/reports/*/artifacts", h.GetReportArtifacts)
	r.GET("/api/v1/reports/*/stages", h.GetReportStages)
	r.GET("/api/v1/reports/*/errors", h.GetReportErrors)
	// Generic report route last
	r.GET("/api/v1/reports/*", h.GetReport)

	r.GET("/api/v1/charts/*", h.GetChart)
	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
