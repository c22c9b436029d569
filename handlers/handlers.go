package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/models"
	"github.com/Athena-GenAI/api-testing/service"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests.
type Handler struct {
	cfg     *config.Config
	service *service.Service
	hub     *Hub
}

// NewHandler creates a new handler and wires the live-update hub to the
// service's refresh notifications.
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	h := &Handler{
		cfg:     cfg,
		service: svc,
		hub:     NewHub(),
	}
	svc.AddRefreshListener(h.hub.Broadcast)
	return h
}

// GetTokenStats returns the bounded aggregate list, cached or freshly
// computed depending on staleness.
func (h *Handler) GetTokenStats(c *gin.Context) {
	stats, err := h.service.GetTokenStats(c.Request.Context())
	if err != nil {
		log.Printf("[http] token-stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to compute token stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         stats.Data,
		"from_cache":   stats.FromCache,
		"last_updated": stats.LastUpdated,
	})
}

// GetPositions returns the last archived raw snapshot.
func (h *Handler) GetPositions(c *gin.Context) {
	snapshot, err := h.service.LatestPositions(c.Request.Context())
	if err != nil {
		log.Printf("[http] positions lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to load positions",
		})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "no position snapshot archived yet",
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetWalletPositions returns the tracked wallet's positions from the last
// archived snapshot. Accounts are compared case-insensitively since address
// casing varies across venues.
func (h *Handler) GetWalletPositions(c *gin.Context) {
	wallet := strings.ToLower(c.GetString("validatedWallet"))

	snapshot, err := h.service.LatestPositions(c.Request.Context())
	if err != nil {
		log.Printf("[http] wallet positions lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to load positions",
		})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "no position snapshot archived yet",
		})
		return
	}

	matched := make([]models.Position, 0)
	for _, pos := range snapshot.Positions {
		if strings.ToLower(pos.Account) == wallet {
			matched = append(matched, pos)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet":    wallet,
		"positions": matched,
		"timestamp": snapshot.Timestamp,
	})
}

// ForceUpdate runs a synchronous recompute-and-store cycle.
func (h *Handler) ForceUpdate(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		log.Printf("[http] manual update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "update failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "positions recomputed and cached",
	})
}

// ClearCache drops the fast cache entry. In environments where clearing is
// disabled this is a deliberate no-op, not an error.
func (h *Handler) ClearCache(c *gin.Context) {
	if !h.cfg.Cache.AllowClear {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "cache clearing disabled in this environment",
		})
		return
	}

	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		log.Printf("[http] cache clear failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to clear cache",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "cache cleared",
	})
}
