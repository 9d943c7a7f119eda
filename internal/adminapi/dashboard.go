package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/webserver"
	"github.com/AvalonLA/atelier/pkg/metrics"
)

// registerDashboardRoutes registers the console overview endpoints
func registerDashboardRoutes() {
	webserver.ApiGET("/store/dashboard", getDashboard)
	webserver.ApiGET("/store/dashboard/metrics/:name", getDashboardMetrics)
}

type dashboardSummary struct {
	Products             int64   `json:"products"`
	LowStockProducts     int64   `json:"low_stock_products"`
	Orders               int64   `json:"orders"`
	PendingOrders        int64   `json:"pending_orders"`
	PendingConsultations int64   `json:"pending_consultations"`
	Revenue              float64 `json:"revenue"`
	MeanOrderValue       float64 `json:"mean_order_value"`
	MedianOrderValue     float64 `json:"median_order_value"`
}

func getDashboard(c echo.Context) error {
	db := GetDB(c)
	var sum dashboardSummary

	db.Model(&domain.Product{}).Where("deleted_at IS NULL").Count(&sum.Products)
	db.Model(&domain.Product{}).
		Where("deleted_at IS NULL AND stock < ?", domain.LowStockThreshold).
		Count(&sum.LowStockProducts)
	db.Model(&domain.Order{}).Count(&sum.Orders)
	db.Model(&domain.Order{}).Where("status = ?", domain.OrderPending).Count(&sum.PendingOrders)
	db.Model(&domain.Consultation{}).Where("status = ?", domain.ConsultationPending).Count(&sum.PendingConsultations)

	revenue, err := GetApp(c).Orders().Revenue(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute revenue", err.Error())
	}
	sum.Revenue = revenue

	var totals []float64
	db.Model(&domain.SaleItem{}).
		Joins("JOIN orders ON orders.id = sale_items.order_id").
		Where("orders.status <> ?", domain.OrderCancelled).
		Group("sale_items.order_id").
		Select("SUM(sale_items.price * sale_items.quantity)").
		Scan(&totals)
	if len(totals) > 0 {
		sum.MeanOrderValue, _ = stats.Mean(totals)
		sum.MedianOrderValue, _ = stats.Median(totals)
	}

	return ok(c, sum)
}

type metricPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

func getDashboardMetrics(c echo.Context) error {
	name := c.Param("name")
	switch name {
	case metrics.SystemCPUUse, metrics.SystemMemUse, metrics.AtelierCPUUse, metrics.AtelierMemUse:
	default:
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown metric", name)
	}

	end := time.Now()
	start := end.Add(-24 * time.Hour)
	points, err := metrics.GaugeRange(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to read metric", err.Error())
	}

	out := make([]metricPoint, 0, len(points))
	for _, p := range points {
		out = append(out, metricPoint{Timestamp: p.Timestamp, Value: p.Value})
	}
	return ok(c, out)
}
