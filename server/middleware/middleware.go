// Package middleware holds the net/http middleware installed in front of the
// server mux, plus a bridge for mounting the same middleware on Gin routes.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Middleware func(http.Handler) http.Handler

// Chain composes mws so that mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range mws {
			h = mws[len(mws)-1-i](h)
		}
		return h
	}
}

// GinWrap runs mw inside a Gin handler chain. When mw writes a response
// without calling its next handler, the remaining Gin handlers are skipped.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}
