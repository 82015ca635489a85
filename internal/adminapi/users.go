package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stockpos/stockpos/internal/domain"
	"github.com/stockpos/stockpos/internal/webserver"
	"github.com/stockpos/stockpos/pkg/common"
)

type userPayload struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Level    string `json:"level"`
}

type userUpdatePayload struct {
	Fullname *string `json:"fullname"`
	Password *string `json:"password"`
	Level    *string `json:"level"`
}

// registerUserRoutes registers operator account endpoints
func registerUserRoutes() {
	webserver.ApiGET("/users", listUsers)
	webserver.ApiPOST("/users", createUser)
	webserver.ApiPUT("/users/:login", updateUser)
	webserver.ApiDELETE("/users/:login", deleteUser)
}

func listUsers(c echo.Context) error {
	var users []domain.SysUser
	if err := GetDB(c).Order("id").Find(&users).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}
	return ok(c, users)
}

func createUser(c echo.Context) error {
	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", nil)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username, email and password are required", nil)
	}
	if payload.Level == "" {
		payload.Level = "viewer"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
	}

	user := domain.SysUser{
		ID:       common.UUIDint64(),
		Username: payload.Username,
		Fullname: payload.Fullname,
		Email:    payload.Email,
		Password: string(hashed),
		Level:    payload.Level,
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "USER_EXISTS", "Username or email already exists", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", err.Error())
	}
	return ok(c, user)
}

func updateUser(c echo.Context) error {
	user, err := findUserByLogin(GetDB(c), c.Param("login"))
	if err != nil {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	}

	var payload userUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", nil)
	}

	if payload.Fullname != nil {
		user.Fullname = *payload.Fullname
	}
	if payload.Level != nil {
		user.Level = *payload.Level
	}
	if payload.Password != nil && *payload.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
		}
		user.Password = string(hashed)
	}
	user.UpdatedAt = time.Now()

	if err := GetDB(c).Save(user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user", err.Error())
	}
	return ok(c, user)
}

func deleteUser(c echo.Context) error {
	user, err := findUserByLogin(GetDB(c), c.Param("login"))
	if err != nil {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	}
	if err := GetDB(c).Delete(&domain.SysUser{}, user.ID).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete user", err.Error())
	}
	return ok(c, map[string]interface{}{"id": user.ID})
}
