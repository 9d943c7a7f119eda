package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/internal/app"
	"github.com/AvalonLA/atelier/internal/webserver"
)

// Boot registers every admin console route group.
func Boot() {
	registerProductRoutes()
	registerOrderRoutes()
	registerConsultationRoutes()
	registerSettingsRoutes()
	registerDashboardRoutes()
	registerUploadRoutes()
	registerEventRoutes()
}

// GetApp extracts the application container from the request context.
func GetApp(c echo.Context) *app.Application {
	return webserver.GetApp(c)
}

// GetDB extracts the database handle from the request context.
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetApp(c).DB()
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, apiError{Code: code, Message: message, Detail: detail})
}

type pagedResult struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedResult{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}
