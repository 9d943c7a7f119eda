package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/pkg/common"
)

const tokenTTL = 24 * time.Hour

type loginPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Level    string `json:"level"`
}

func loginHandler(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to parse login request")
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	appl := GetApp(c)
	var opr domain.SysOpr
	err := appl.DB().Where("username = ? AND status = ?",
		payload.Username, common.ENABLED).First(&opr).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(opr.Password), []byte(payload.Password)) != nil {
		zap.L().Warn("failed login attempt",
			zap.String("username", payload.Username), zap.String("ip", c.RealIP()))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	claims := jwt.MapClaims{
		"uid": opr.ID,
		"usr": opr.Username,
		"lvl": opr.Level,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(appl.Config().Web.Secret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign token")
	}

	appl.DB().Model(&domain.SysOpr{}).Where("id = ?", opr.ID).
		Update("last_login", time.Now())
	appl.DB().Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   opr.Username,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "console login",
		OptTime:   time.Now(),
	})

	return c.JSON(http.StatusOK, loginResponse{
		Token:    signed,
		Username: opr.Username,
		Level:    opr.Level,
	})
}
