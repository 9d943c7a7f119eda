package adminapi

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AvalonLA/atelier/internal/imaging"
	"github.com/AvalonLA/atelier/internal/storage"
	"github.com/AvalonLA/atelier/internal/webserver"
)

const maxUploadBytes = 20 << 20

// registerUploadRoutes registers the product image upload endpoint
func registerUploadRoutes() {
	webserver.ApiPOST("/store/uploads", uploadProductImage)
	webserver.ApiDELETE("/store/uploads", deleteProductImage)
}

// uploadProductImage optimizes the uploaded image and stores it under
// the products bucket, returning the public URL.
func uploadProductImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing file field", nil)
	}
	if fh.Size > maxUploadBytes {
		return fail(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image exceeds the upload limit", nil)
	}

	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to read upload", err.Error())
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to read upload", err.Error())
	}

	optimized, err := imaging.Optimize(data)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_IMAGE", "File is not a supported image", err.Error())
	}

	name := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename)) + ".jpg"
	url, err := GetApp(c).Files().Upload(storage.BucketProducts, name, optimized)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store image", err.Error())
	}
	return ok(c, map[string]string{"url": url})
}

type deleteUploadPayload struct {
	URL string `json:"url"`
}

func deleteProductImage(c echo.Context) error {
	var payload deleteUploadPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if strings.TrimSpace(payload.URL) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "URL is required", nil)
	}
	if err := GetApp(c).Files().Remove(storage.BucketProducts, payload.URL); err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to remove image", err.Error())
	}
	return ok(c, map[string]string{"url": payload.URL})
}
