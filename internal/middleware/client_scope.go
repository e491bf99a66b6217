package middleware

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientIDKey    = "clientId"
)

// ClientScope resolves the client namespace from X-Client-ID. Requests
// without a valid id get a fresh one, echoed back in the response header.
func ClientScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(ClientIDHeader))
		id, err := uuid.Parse(raw)
		if err != nil {
			if raw != "" {
				log.Println("[CLIENT] [WARN] invalid client id, issuing a new one")
			}
			id = uuid.New()
		}

		clientID := id.String()
		c.Set(ClientIDKey, clientID)
		c.Header(ClientIDHeader, clientID)
		c.Next()
	}
}

// ClientID returns the namespace set by ClientScope.
func ClientID(c *gin.Context) string {
	return c.GetString(ClientIDKey)
}
