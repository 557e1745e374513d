package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minhokang/trendsnap/app/cfg"
	"github.com/minhokang/trendsnap/app/database"
	"github.com/minhokang/trendsnap/app/pipeline"
)

// PipelineRunner is the orchestration surface the trigger endpoint drives.
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

type Handler struct {
	runner       PipelineRunner
	snapshotRepo database.SnapshotRepository
}

func NewHandler(runner PipelineRunner, snapshotRepo database.SnapshotRepository) *Handler {
	return &Handler{
		runner:       runner,
		snapshotRepo: snapshotRepo,
	}
}

// RunPipeline executes one snapshot run. When CRON_SECRET is configured,
// the Authorization bearer token must match.
func (h *Handler) RunPipeline(c *gin.Context) {
	secret := cfg.Get().CronSecret
	if secret != "" && bearerToken(c.GetHeader("Authorization")) != secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := h.runner.Run(c.Request.Context())
	if err != nil {
		slog.Error("Pipeline run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "pipeline failed",
			"detail": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"snapshotId":   summary.SnapshotID,
		"keywordCount": summary.KeywordCount,
		"reusedCount":  summary.ReusedCount,
		"newCount":     summary.NewCount,
		"durationMs":   summary.DurationMs,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if count, err := h.snapshotRepo.GetSnapshotCount(); err == nil {
		health["snapshots"] = count
	}
	if latest, err := h.snapshotRepo.GetLatestSnapshotID(); err == nil && latest != "" {
		health["latest_snapshot"] = latest
	}

	c.JSON(http.StatusOK, health)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
