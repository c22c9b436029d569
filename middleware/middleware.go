package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	// Ethereum address: 0x followed by 40 hex characters
	ethAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	// dYdX chain address: bech32 with the dydx1 prefix
	dydxAddressRegex = regexp.MustCompile(`^dydx1[a-z0-9]{38,58}$`)
)

// CORS attaches permissive cross-origin headers to every response and
// short-circuits preflight requests with no body.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ValidateWallet rejects requests whose :wallet parameter is neither an EVM
// hex address nor a dYdX address. The normalized (trimmed) wallet is stored
// on the context for handlers.
func ValidateWallet() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet := strings.TrimSpace(c.Param("wallet"))
		if wallet == "" {
			c.Next()
			return
		}

		if !IsValidWallet(wallet) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"message": "wallet must be an EVM hex address or a dydx1 address",
			})
			return
		}

		c.Set("validatedWallet", wallet)
		c.Next()
	}
}

// IsValidWallet checks whether a string is a wallet in either supported
// address family.
func IsValidWallet(wallet string) bool {
	return ethAddressRegex.MatchString(wallet) || dydxAddressRegex.MatchString(strings.ToLower(wallet))
}
