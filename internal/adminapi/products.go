package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/inventory"
	"github.com/AvalonLA/atelier/internal/webserver"
	"github.com/AvalonLA/atelier/pkg/common"
)

type productPayload struct {
	Name            string        `json:"name"`
	Category        string        `json:"category"`
	Description     string        `json:"description"`
	LongDescription string        `json:"long_description"`
	Price           *float64      `json:"price"`
	SalePrice       *float64      `json:"sale_price"`
	Stock           int           `json:"stock"`
	Featured        bool          `json:"featured"`
	Visible         *bool         `json:"visible"`
	Gallery         []string      `json:"gallery"`
	Tag             string        `json:"tag"`
	Specs           []domain.Spec `json:"specs"`
}

func (p *productPayload) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "Name is required"
	}
	if !domain.ValidCategory(p.Category) {
		return fmt.Sprintf("Unknown category %q", p.Category)
	}
	if p.Price == nil || *p.Price < 0 {
		return "Price is required and must not be negative"
	}
	if p.SalePrice != nil && *p.SalePrice < 0 {
		return "Sale price must not be negative"
	}
	if p.Stock < 0 {
		return "Stock must not be negative"
	}
	return ""
}

func (p *productPayload) apply(dst *domain.Product) {
	dst.Name = p.Name
	dst.Category = p.Category
	dst.Description = strings.TrimSpace(p.Description)
	dst.LongDescription = strings.TrimSpace(p.LongDescription)
	dst.Price = *p.Price
	dst.SalePrice = p.SalePrice
	dst.Stock = p.Stock
	dst.Featured = p.Featured
	if p.Visible != nil {
		dst.Visible = *p.Visible
	} else {
		dst.Visible = true
	}
	dst.Gallery = p.Gallery
	dst.Tag = strings.TrimSpace(p.Tag)
	dst.Specs = p.Specs
}

// registerProductRoutes registers the inventory console endpoints
func registerProductRoutes() {
	webserver.ApiGET("/store/products", listStoreProducts)
	webserver.ApiGET("/store/products/lowstock", listLowStockProducts)
	webserver.ApiGET("/store/products/export", exportStoreProducts)
	webserver.ApiGET("/store/products/:id", getStoreProduct)
	webserver.ApiPOST("/store/products", createStoreProduct)
	webserver.ApiPUT("/store/products/:id", updateStoreProduct)
	webserver.ApiDELETE("/store/products/:id", deleteStoreProduct)
	webserver.ApiPOST("/store/products/bulkprice", bulkAdjustProductPrices)
	webserver.ApiPUT("/store/products/:id/gallery", reorderProductGallery)
}

func listStoreProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	category := strings.TrimSpace(c.QueryParam("category"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	allowed := map[string]string{
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, found := allowed[sortField]
	if !found {
		sortCol = "created_at"
	}

	db := GetDB(c).Model(&domain.Product{}).Where("deleted_at IS NULL")
	if q != "" {
		if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
			db = db.Where("name ILIKE ?", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if c.QueryParam("featured") == "true" {
		db = db.Where("featured = ?", true)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func listLowStockProducts(c echo.Context) error {
	rows, err := GetApp(c).Inventory().LowStock(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query low stock", err.Error())
	}
	return ok(c, rows)
}

func exportStoreProducts(c echo.Context) error {
	inv := GetApp(c).Inventory()
	stamp := time.Now().Format("20060102")
	switch c.QueryParam("format") {
	case "xlsx":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=products-%s.xlsx", stamp))
		c.Response().Header().Set(echo.HeaderContentType,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Response().WriteHeader(http.StatusOK)
		return inv.ExportExcel(c.Request().Context(), c.Response())
	default:
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=products-%s.csv", stamp))
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().WriteHeader(http.StatusOK)
		return inv.ExportCSV(c.Request().Context(), c.Response())
	}
}

func getStoreProduct(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ? AND deleted_at IS NULL", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createStoreProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	var p domain.Product
	payload.apply(&p)
	if err := GetApp(c).Inventory().Create(c.Request().Context(), &p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateStoreProduct(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg := payload.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	p := domain.Product{ID: id}
	payload.apply(&p)
	if err := GetApp(c).Inventory().Update(c.Request().Context(), &p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, p)
}

func deleteStoreProduct(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetApp(c).Inventory().Delete(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

type bulkPricePayload struct {
	IDs       []string `json:"ids"`
	Mode      string   `json:"mode"`
	Direction string   `json:"direction"`
	Value     float64  `json:"value"`
}

func bulkAdjustProductPrices(c echo.Context) error {
	var payload bulkPricePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse adjustment", err.Error())
	}
	adj := inventory.PriceAdjustment{
		Mode:      payload.Mode,
		Direction: payload.Direction,
		Value:     payload.Value,
	}
	err := GetApp(c).Inventory().BulkAdjustPrices(c.Request().Context(), payload.IDs, adj)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "BULK_PRICE_FAILED",
			"Bulk price adjustment failed, reload the product list", err.Error())
	}
	return ok(c, map[string]interface{}{"updated": len(payload.IDs)})
}

type reorderPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func reorderProductGallery(c echo.Context) error {
	id := c.Param("id")
	if !common.IsStoreID(id) {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload reorderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse reorder", err.Error())
	}
	p, err := GetApp(c).Inventory().ReorderGallery(c.Request().Context(), id, payload.From, payload.To)
	if err != nil {
		return fail(c, http.StatusBadRequest, "REORDER_FAILED", "Failed to reorder gallery", err.Error())
	}
	return ok(c, p)
}
