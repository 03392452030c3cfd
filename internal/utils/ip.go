package utils

import (
	"github.com/gin-gonic/gin"
)

// RemoteIPHeaders are the proxy headers consulted for the client address, in
// order. gin only honours them when the peer is in the trusted proxy list.
var RemoteIPHeaders = []string{"X-Real-IP", "X-Forwarded-For"}

// GetRealIP returns the client IP. Proxy headers count only when the request
// came through a proxy set with SetTrustedProxies; otherwise it is the peer address.
func GetRealIP(c *gin.Context) string {
	return c.ClientIP()
}
