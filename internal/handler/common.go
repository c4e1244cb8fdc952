package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

var errNoUser = errors.New("no authenticated user in context")

// getUserID reads the authenticated user id placed by the JWT
// middleware.
func getUserID(c echo.Context) (string, error) {
	v := c.Get("user_id")
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errNoUser
	}
	return s, nil
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"message": msg,
	})
}

// ok sends the success envelope, merging any extra fields into it.
func ok(c echo.Context, status int, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(status, body)
}
