package http

import (
	"net/http"

	"github.com/labstack/gommon/log"
	"github.com/xenocrm/crm-gateway/internal/repository"
	echo "github.com/labstack/echo/v4"
)

func fetchUserHandler(users repository.UsersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := users.FindByID(c.Request().Context(), c.Param("userId"))
		if err != nil {
			log.Errorf("user fetch failed: %v", err)
			return c.JSON(http.StatusInternalServerError, errJSON("Failed to fetch user"))
		}
		if u == nil {
			return c.JSON(http.StatusNotFound, errJSON("User not found"))
		}

		return c.JSON(http.StatusOK, map[string]any{
			"_id":    u.ID,
			"name":   u.Name,
			"email":  u.Email,
			"avatar": u.Avatar,
		})
	}
}
