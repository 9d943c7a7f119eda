package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/internal/consultation"
	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/webserver"
	"github.com/AvalonLA/atelier/pkg/common"
)

// registerConsultationRoutes registers the design consultation endpoints
func registerConsultationRoutes() {
	webserver.ApiGET("/store/consultations", listConsultations)
	webserver.ApiGET("/store/consultations/products", suggestConsultationProducts)
	webserver.ApiPOST("/store/consultations", createAdminConsultation)
	webserver.ApiPUT("/store/consultations/:id", updateConsultation)
	webserver.ApiPUT("/store/consultations/:id/status", updateConsultationStatus)
	webserver.ApiDELETE("/store/consultations/:id", deleteConsultation)
}

func listConsultations(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Consultation{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		if !domain.ValidConsultationStatus(status) {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown consultation status", status)
		}
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query consultations", err.Error())
	}

	var rows []domain.Consultation
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query consultations", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

// suggestConsultationProducts autocompletes product names for the
// consultation form.
func suggestConsultationProducts(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	limit := 10
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 50 {
		limit = v
	}
	names := GetApp(c).Catalog().SearchNames(c.Request().Context(), q, limit)
	return ok(c, names)
}

type consultationPayload struct {
	CustomerName string `json:"customerName"`
	ProductName  string `json:"productName"`
	Query        string `json:"query"`
	Status       string `json:"status"`
}

func createAdminConsultation(c echo.Context) error {
	var payload consultationPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse consultation", err.Error())
	}
	cons := domain.Consultation{
		CustomerName: payload.CustomerName,
		ProductName:  payload.ProductName,
		Query:        payload.Query,
		Status:       payload.Status,
	}
	if err := GetApp(c).Consultations().Create(c.Request().Context(), &cons); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to create consultation", err.Error())
	}
	return ok(c, cons)
}

func updateConsultation(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid consultation ID", nil)
	}
	var patch consultation.Patch
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse consultation", err.Error())
	}
	updated, err := GetApp(c).Consultations().Update(c.Request().Context(), id, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Consultation not found", nil)
		}
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to update consultation", err.Error())
	}
	return ok(c, updated)
}

type consultationStatusPayload struct {
	Status string `json:"status"`
}

func updateConsultationStatus(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid consultation ID", nil)
	}
	var payload consultationStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	if err := GetApp(c).Consultations().UpdateStatus(c.Request().Context(), id, payload.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Consultation not found", nil)
		}
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to update consultation status", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id, "status": payload.Status})
}

func deleteConsultation(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid consultation ID", nil)
	}
	if err := GetApp(c).Consultations().Delete(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete consultation", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
