package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-management/backend/internal/actor"
)

// ActorHeader names the caller recorded in audit fields. Authentication
// happens upstream; the value is trusted as given.
const ActorHeader = "X-User-Id"

const maxActorLength = 256

// Actor copies ActorHeader into the request context.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.GetHeader(ActorHeader))
		if len(name) > maxActorLength {
			name = name[:maxActorLength]
		}
		if name != "" {
			c.Request = c.Request.WithContext(actor.NewContext(c.Request.Context(), name))
		}
		c.Next()
	}
}
