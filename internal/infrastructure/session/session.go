package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
)

// HeaderUserID carries the authenticated user id resolved by the API gateway
// from the finance app's session token. The chat service trusts it as-is.
const HeaderUserID = "X-User-ID"

const contextKeyUserID = "session.user_id"

// Middleware extracts the session identity and rejects requests without one.
// Handlers read the id back with CurrentUserID and pass it into use cases
// explicitly; nothing below the presentation layer touches ambient state.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := conversation.NormalizeUserID(c.GetHeader(HeaderUserID))
		if uid == "" {
			// Websocket clients can't always set headers; accept a query
			// fallback for them.
			uid = conversation.NormalizeUserID(c.Query("user_id"))
		}
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session identity"})
			return
		}
		c.Set(contextKeyUserID, uid)
		c.Next()
	}
}

// CurrentUserID returns the normalized session user id set by Middleware.
func CurrentUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(contextKeyUserID)
	return uid, uid != ""
}
