package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminKeyHeader = "X-Admin-API-Key"

// AdminKeyMiddleware compara el SHA-256 de la clave recibida contra el hash
// configurado, en tiempo constante. Sin hash configurado el grupo admin
// queda cerrado.
func AdminKeyMiddleware(keyHash string) gin.HandlerFunc {
	keyHash = strings.ToLower(strings.TrimSpace(keyHash))
	return func(c *gin.Context) {
		if keyHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin access not configured"})
			c.Abort()
			return
		}

		got := strings.TrimSpace(c.GetHeader(adminKeyHeader))
		if got == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing admin key"})
			c.Abort()
			return
		}

		sum := sha256.Sum256([]byte(got))
		gotHash := hex.EncodeToString(sum[:])
		if subtle.ConstantTimeCompare([]byte(gotHash), []byte(keyHash)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
