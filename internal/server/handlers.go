package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/sync"
)

// ErrUnauthorized is the body of a rejected trigger.
var ErrUnauthorized = errors.New("unauthorized")

// Runner performs one sync run; *sync.Syncer implements it.
type Runner interface {
	RunOnce(ctx context.Context) (sync.Report, error)
}

var _ Runner = (*sync.Syncer)(nil)

type handlers struct {
	runner  Runner
	secret  string
	timeout time.Duration
	log     logger.Logger
}

type triggerRequest struct {
	Key string `json:"key"`
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Canvas → Notion sync service is running."})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// sync authenticates the caller and runs one pass synchronously. The key is
// read from ?key= first, then from a JSON body.
func (h *handlers) sync(c *gin.Context) {
	key := c.Query("key")
	if key == "" && c.Request.ContentLength != 0 {
		var body triggerRequest
		if err := c.ShouldBindJSON(&body); err == nil {
			key = body.Key
		}
	}

	if !h.authorized(key) {
		h.log.Warn("Rejected sync trigger", logger.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthorized.Error()})
		return
	}

	// The run outlives a dropped client connection; only the timeout stops it.
	ctx := context.WithoutCancel(c.Request.Context())
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	rep, err := h.runner.RunOnce(ctx)
	switch {
	case errors.Is(err, sync.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": rep})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "synced", "report": rep})
	}
}

// authorized compares in constant time. An unset secret rejects everyone.
func (h *handlers) authorized(key string) bool {
	if h.secret == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.secret)) == 1
}
