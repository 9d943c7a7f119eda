package shopapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/order"
	"github.com/AvalonLA/atelier/internal/webserver"
	"github.com/AvalonLA/atelier/pkg/common"
)

// Boot registers the public storefront routes.
func Boot() {
	webserver.ShopGET("/catalog", listCatalog)
	webserver.ShopGET("/catalog/:id", getCatalogProduct)
	webserver.ShopGET("/config", getShopConfig)

	webserver.ShopGET("/cart", getCart)
	webserver.ShopPOST("/cart/items", addCartItem)
	webserver.ShopPUT("/cart/items/:id", updateCartItem)
	webserver.ShopDELETE("/cart/items/:id", removeCartItem)
	webserver.ShopDELETE("/cart", clearCart)
	webserver.ShopPOST("/cart/close", closeCart)

	webserver.ShopPOST("/checkout", checkout)
	webserver.ShopPOST("/consultations", createConsultation)

	webserver.ShopPOST("/advice", getAdvice)
	webserver.ShopPOST("/visualize", visualizeRoom)
}

type catalogResponse struct {
	Products []domain.Product `json:"products"`
	Degraded bool             `json:"degraded"`
}

func listCatalog(c echo.Context) error {
	res := webserver.GetApp(c).Catalog().List(c.Request().Context(), false)
	return c.JSON(http.StatusOK, catalogResponse{Products: res.Products, Degraded: res.Degraded})
}

func getCatalogProduct(c echo.Context) error {
	p, err := webserver.GetApp(c).Catalog().Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, p)
}

func getShopConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, webserver.GetApp(c).Settings().Current())
}

// cartID returns the session cart identity, creating one on first use.
func cartID(c echo.Context) string {
	sess, err := session.Get(webserver.SessionName, c)
	if err != nil {
		return common.NewID()
	}
	if id, found := sess.Values["cart_id"].(string); found && id != "" {
		return id
	}
	id := common.NewID()
	sess.Values["cart_id"] = id
	sess.Options.MaxAge = 86400 * 30
	sess.Options.HttpOnly = true
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		zap.L().Warn("failed to save cart session", zap.Error(err))
	}
	return id
}

func getCart(c echo.Context) error {
	ct := webserver.GetApp(c).Carts().Get(cartID(c))
	return c.JSON(http.StatusOK, ct)
}

type addItemPayload struct {
	ProductID string `json:"product_id"`
}

func addCartItem(c echo.Context) error {
	var payload addItemPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to parse request")
	}
	appl := webserver.GetApp(c)
	p, err := appl.Catalog().Get(c.Request().Context(), payload.ProductID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	ct := appl.Carts().Get(cartID(c))
	ct.AddItem(*p)
	if err := appl.Carts().Save(ct); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save cart")
	}
	return c.JSON(http.StatusOK, ct)
}

type quantityPayload struct {
	Quantity int `json:"quantity"`
}

func updateCartItem(c echo.Context) error {
	var payload quantityPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to parse request")
	}
	appl := webserver.GetApp(c)
	ct := appl.Carts().Get(cartID(c))
	ct.UpdateQuantity(c.Param("id"), payload.Quantity)
	if err := appl.Carts().Save(ct); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save cart")
	}
	return c.JSON(http.StatusOK, ct)
}

func removeCartItem(c echo.Context) error {
	appl := webserver.GetApp(c)
	ct := appl.Carts().Get(cartID(c))
	ct.RemoveItem(c.Param("id"))
	if err := appl.Carts().Save(ct); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save cart")
	}
	return c.JSON(http.StatusOK, ct)
}

func clearCart(c echo.Context) error {
	appl := webserver.GetApp(c)
	ct := appl.Carts().Get(cartID(c))
	ct.Clear()
	if err := appl.Carts().Save(ct); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save cart")
	}
	return c.JSON(http.StatusOK, ct)
}

func closeCart(c echo.Context) error {
	appl := webserver.GetApp(c)
	ct := appl.Carts().Get(cartID(c))
	ct.Open = false
	if err := appl.Carts().Save(ct); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save cart")
	}
	return c.JSON(http.StatusOK, ct)
}

// checkout submits the cart as an order. The cart is only cleared after
// the order is safely stored, so a failed submit loses nothing.
func checkout(c echo.Context) error {
	var form order.Checkout
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to parse checkout form")
	}

	appl := webserver.GetApp(c)
	ct := appl.Carts().Get(cartID(c))

	ord, err := appl.Orders().Submit(c.Request().Context(), form, ct)
	if err != nil {
		if order.IsValidation(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		zap.L().Error("checkout persist failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "order could not be stored, please retry")
	}

	ct.Clear()
	ct.Open = false
	if err := appl.Carts().Save(ct); err != nil {
		zap.L().Warn("failed to clear cart after checkout",
			zap.String("order_id", ord.ID), zap.Error(err))
	}
	return c.JSON(http.StatusOK, ord)
}

type consultationPayload struct {
	CustomerName string `json:"customer_name"`
	ProductName  string `json:"product_name"`
	Query        string `json:"query"`
}

func createConsultation(c echo.Context) error {
	var payload consultationPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to parse request")
	}
	payload.CustomerName = strings.TrimSpace(payload.CustomerName)
	payload.Query = strings.TrimSpace(payload.Query)
	if payload.CustomerName == "" || payload.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "customer name and query are required")
	}

	cons := domain.Consultation{
		CustomerName: payload.CustomerName,
		ProductName:  payload.ProductName,
		Query:        payload.Query,
	}
	if err := webserver.GetApp(c).Consultations().Create(c.Request().Context(), &cons); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save consultation")
	}
	return c.JSON(http.StatusOK, cons)
}

type advicePayload struct {
	Prompt      string `json:"prompt"`
	ProductName string `json:"product_name"`
}

func getAdvice(c echo.Context) error {
	var payload advicePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to parse request")
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}
	answer := webserver.GetApp(c).Assistant().
		Advise(c.Request().Context(), payload.Prompt, payload.ProductName)
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

func visualizeRoom(c echo.Context) error {
	fh, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing photo field")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read photo")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read photo")
	}

	out := webserver.GetApp(c).Assistant().
		Visualize(c.Request().Context(), data, c.FormValue("product_name"), c.FormValue("style"))
	return c.Blob(http.StatusOK, "image/jpeg", out)
}
