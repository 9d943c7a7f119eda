package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/order"
	"github.com/AvalonLA/atelier/internal/webserver"
	"github.com/AvalonLA/atelier/pkg/common"
)

// registerOrderRoutes registers the fulfillment console endpoints
func registerOrderRoutes() {
	webserver.ApiGET("/store/orders", listStoreOrders)
	webserver.ApiPOST("/store/orders", createStoreOrder)
	webserver.ApiGET("/store/orders/:id", getStoreOrder)
	webserver.ApiPUT("/store/orders/:id", updateStoreOrder)
	webserver.ApiPUT("/store/orders/:id/status", updateStoreOrderStatus)
	webserver.ApiDELETE("/store/orders/:id", deleteStoreOrder)
}

func listStoreOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := order.Query{
		Status: strings.TrimSpace(c.QueryParam("status")),
		From:   strings.TrimSpace(c.QueryParam("from")),
		To:     strings.TrimSpace(c.QueryParam("to")),
		Email:  strings.TrimSpace(c.QueryParam("email")),
	}
	if q.Status != "" && !domain.ValidOrderStatus(q.Status) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown order status", q.Status)
	}

	total, rows, err := GetApp(c).Orders().List(c.Request().Context(), q, (page-1)*pageSize, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

type orderItemPayload struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Note         string  `json:"note"`
}

type orderPayload struct {
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Email     string             `json:"email"`
	Address   string             `json:"address"`
	Status    string             `json:"status"`
	Items     []orderItemPayload `json:"items"`
}

func createStoreOrder(c echo.Context) error {
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.Address) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and address are required", nil)
	}

	ord := domain.Order{
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Email:     strings.TrimSpace(payload.Email),
		Address:   strings.TrimSpace(payload.Address),
		Status:    payload.Status,
	}
	for _, it := range payload.Items {
		item := domain.SaleItem{
			ProductName:  strings.TrimSpace(it.ProductName),
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			Price:        it.Price,
			Note:         it.Note,
		}
		if it.ProductID != "" {
			pid := it.ProductID
			item.ProductID = &pid
		}
		ord.Items = append(ord.Items, item)
	}

	created, err := GetApp(c).Orders().Create(c.Request().Context(), &ord)
	if err != nil {
		if order.IsValidation(err) {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to create order", err.Error())
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create order", err.Error())
	}
	return ok(c, created)
}

func updateStoreOrder(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}

	ord := domain.Order{
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Email:     strings.TrimSpace(payload.Email),
		Address:   strings.TrimSpace(payload.Address),
		Status:    payload.Status,
	}
	for _, it := range payload.Items {
		item := domain.SaleItem{
			ProductName:  strings.TrimSpace(it.ProductName),
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			Price:        it.Price,
			Note:         it.Note,
		}
		if it.ProductID != "" {
			pid := it.ProductID
			item.ProductID = &pid
		}
		ord.Items = append(ord.Items, item)
	}

	updated, err := GetApp(c).Orders().Replace(c.Request().Context(), id, &ord)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		case order.IsValidation(err):
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to update order", err.Error())
		default:
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order", err.Error())
		}
	}
	return ok(c, updated)
}

func getStoreOrder(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	ord, err := GetApp(c).Orders().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	return ok(c, ord)
}

type orderStatusPayload struct {
	Status string `json:"status"`
}

func updateStoreOrderStatus(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	if err := GetApp(c).Orders().UpdateStatus(c.Request().Context(), id, payload.Status); err != nil {
		return fail(c, http.StatusBadRequest, "STATUS_UPDATE_FAILED", "Failed to update order status", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id, "status": payload.Status})
}

func deleteStoreOrder(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	if err := GetApp(c).Orders().Delete(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete order", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
