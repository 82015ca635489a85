package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stockpos/stockpos/internal/domain"
	"github.com/stockpos/stockpos/internal/webserver"
)

type tokenPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// registerAuthRoutes registers the public token endpoint
func registerAuthRoutes() {
	webserver.PubPOST("/token", issueToken)
}

func issueToken(c echo.Context) error {
	var payload tokenPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}

	user, err := findUserByLogin(GetDB(c), payload.Username)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
	}

	cfg := GetApp(c).Config().Web
	expire := time.Duration(cfg.JwtExpireHr) * time.Hour
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"sub":   user.Username,
		"level": user.Level,
		"exp":   time.Now().Add(expire).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JwtSecret))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token", err.Error())
	}

	GetDB(c).Model(&domain.SysUser{}).Where("id = ?", user.ID).Update("last_login", time.Now())
	zap.L().Info("operator login", zap.String("username", user.Username))

	return ok(c, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// findUserByLogin resolves a login that may be either a username or an
// email address.
func findUserByLogin(db *gorm.DB, login string) (*domain.SysUser, error) {
	var user domain.SysUser
	var err error
	if strings.Contains(login, "@") {
		err = db.Where("email = ?", login).First(&user).Error
	} else {
		err = db.Where("username = ?", login).First(&user).Error
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
