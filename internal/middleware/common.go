package middleware

import (
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
)

// Common is the middleware stack every route runs behind.
func Common(bodyLimit string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		ecM.Secure(),
		ecM.BodyLimit(bodyLimit),
	}
}
