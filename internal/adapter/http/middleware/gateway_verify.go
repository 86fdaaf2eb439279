package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/LakLN/Book-Garden-Server-v2/internal/security"
	"github.com/gin-gonic/gin"
)

// GatewayVerify authenticates payment-gateway callbacks. The gateway signs
// every callback with an HMAC secure hash over the payload fields; requests
// with a missing or wrong hash never reach the handler.
type GatewayVerify struct {
	sig security.SignatureService
}

func NewGatewayVerify(sig security.SignatureService) *GatewayVerify {
	return &GatewayVerify{sig: sig}
}

func (gv *GatewayVerify) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		defer c.Request.Body.Close()

		var fields map[string]string
		if err := json.Unmarshal(rawBody, &fields); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid callback format"})
			return
		}

		hash, ok := fields["secureHash"]
		if !ok || hash == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing secure hash"})
			return
		}
		// The hash covers every field except itself.
		delete(fields, "secureHash")

		if err := gv.sig.Verify(fields, hash); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
			return
		}

		// Restore the body for the handler.
		c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))
		c.Request.ContentLength = int64(len(rawBody))

		c.Next()
	}
}
