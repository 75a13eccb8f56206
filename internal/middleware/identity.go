package middleware

import "github.com/labstack/echo/v4"

// OperatorID returns the authenticated operator stored by JWTAuth, or
// "anon" for unauthenticated requests.  Rate limit keys and the import
// handler's logs use it.
func OperatorID(c echo.Context) string {
	if s, ok := c.Get(ctxOperator).(string); ok && s != "" {
		return s
	}
	return "anon"
}
