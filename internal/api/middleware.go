package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abdoElHodaky/exchange-core/internal/errs"
	"github.com/abdoElHodaky/exchange-core/internal/users"
)

const userContextKey = "exchange_user"

// authenticate resolves the Authorization: TOKEN <api_key> header of
// spec §6 into the caller's identity.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondErr(c, errs.New(errs.AuthMissing, "authorization header is required"))
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "TOKEN" || parts[1] == "" {
			respondErr(c, errs.New(errs.AuthMalformed, "authorization header must be 'TOKEN <api_key>'"))
			c.Abort()
			return
		}
		u, ok := s.Users.ByAPIKey(parts[1])
		if !ok {
			respondErr(c, errs.New(errs.AuthUnknown, "unknown api key"))
			c.Abort()
			return
		}
		c.Set(userContextKey, u)
		c.Next()
	}
}

// requireAdmin rejects non-admin callers on admin routes (spec §6:
// non-admin hitting admin route → 403). Must run after authenticate.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u.Role != users.RoleAdmin {
			respondErr(c, errs.New(errs.Forbidden, "admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) users.User {
	v, _ := c.Get(userContextKey)
	u, _ := v.(users.User)
	return u
}

// respondErr maps a coded error to its spec §7 status and {detail}
// body. Uncoded errors are treated as Internal.
func respondErr(c *gin.Context, err error) {
	e, ok := errs.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}
	c.JSON(errs.HTTPStatus(e.Code), ErrorResponse{Detail: e.Message})
}
