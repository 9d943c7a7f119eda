package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AvalonLA/atelier/internal/webserver"
)

// registerSettingsRoutes registers the site configuration endpoints
func registerSettingsRoutes() {
	webserver.ApiGET("/store/settings", getSiteSettings)
	webserver.ApiPATCH("/store/settings", patchSiteSettings)
}

func getSiteSettings(c echo.Context) error {
	return ok(c, GetApp(c).Settings().Current())
}

// patchSiteSettings applies a partial settings update. Only the keys
// present in the body are changed.
func patchSiteSettings(c echo.Context) error {
	var patch map[string]interface{}
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings patch", err.Error())
	}
	next, err := GetApp(c).Settings().Update(patch)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Settings patch rejected", err.Error())
	}
	return ok(c, next)
}
