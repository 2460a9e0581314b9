package series

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/tasks"
)

type Handler struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHandler(db *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{DB: db, Redis: rdb}
}

type CreateSeriesRequest struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	NicheType      string `json:"niche_type" binding:"required"`
	Niche          string `json:"niche" binding:"required"`
	VideoStyle     string `json:"video_style"`
	CaptionStyle   string `json:"caption_style"`
	TargetDuration string `json:"target_duration"`
	Language       string `json:"language"`
	VoiceProvider  string `json:"voice_provider"`
	VoiceID        string `json:"voice_id" binding:"required"`
	PublishTime    string `json:"publish_time" binding:"required"`
	Platforms      string `json:"platforms"`
}

func (h *Handler) CreateSeries(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	limits := LimitsForUser(user)

	var count int64
	h.DB.Model(&models.Series{}).Where("user_id = ?", userID).Count(&count)
	if !limits.AllowsMoreSeries(int(count)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Series limit reached for your plan"})
		return
	}
	for _, platform := range strings.Split(req.Platforms, ",") {
		if platform = strings.TrimSpace(platform); platform == "" {
			continue
		}
		if !limits.AllowsPlatform(platform) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Platform not available on your plan: " + platform})
			return
		}
	}

	series := models.Series{
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		NicheType:      req.NicheType,
		Niche:          req.Niche,
		VideoStyle:     req.VideoStyle,
		CaptionStyle:   req.CaptionStyle,
		TargetDuration: req.TargetDuration,
		Language:       req.Language,
		VoiceProvider:  req.VoiceProvider,
		VoiceID:        req.VoiceID,
		PublishTime:    req.PublishTime,
		Platforms:      req.Platforms,
		Status:         models.SeriesStatusActive,
	}

	if err := h.DB.Create(&series).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create series"})
		return
	}

	c.JSON(http.StatusOK, series)
}

func (h *Handler) GetUserSeries(c *gin.Context) {
	userID := c.GetUint("user_id")
	var series []models.Series
	if err := h.DB.Where("user_id = ?", userID).Find(&series).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve series"})
		return
	}

	for i := range series {
		var count int64
		h.DB.Model(&models.Video{}).Where("series_id = ?", series[i].ID).Count(&count)
		series[i].VideoCount = int(count)
	}

	c.JSON(http.StatusOK, series)
}

// UpdateSeriesStatus pauses or resumes a series' schedule.
func (h *Handler) UpdateSeriesStatus(c *gin.Context) {
	series, ok := h.ownedSeries(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=active paused completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.Model(series).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update series"})
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *Handler) GetSeriesVideos(c *gin.Context) {
	series, ok := h.ownedSeries(c)
	if !ok {
		return
	}

	var videos []models.Video
	if err := h.DB.Preload("Scenes").Where("series_id = ?", series.ID).Order("created_at DESC").Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve videos"})
		return
	}
	c.JSON(http.StatusOK, videos)
}

// TriggerGeneration starts a run for the series right now, outside the daily
// schedule. Each call gets a fresh idempotency key, so repeated clicks start
// separate runs on purpose.
func (h *Handler) TriggerGeneration(c *gin.Context) {
	series, ok := h.ownedSeries(c)
	if !ok {
		return
	}

	isTest := c.Query("test") == "true"
	trig := pipeline.Trigger{
		SeriesID:       series.ID,
		UserID:         series.UserID,
		IsTest:         isTest,
		IdempotencyKey: tasks.ManualIdempotencyKey(series.ID),
	}
	payload, err := tasks.Marshal(trig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build trigger"})
		return
	}
	if err := h.Redis.LPush(c.Request.Context(), tasks.QueueVideoGenerate, payload).Err(); err != nil {
		log.Error().Err(err).Uint("series_id", series.ID).Msg("failed to enqueue generation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger generation"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true, "idempotency_key": trig.IdempotencyKey})
}

// GetRun returns a run's progress. Success/failure only; error details are
// operator-facing and stay out of the response.
func (h *Handler) GetRun(c *gin.Context) {
	userID := c.GetUint("user_id")
	runID, err := strconv.ParseUint(c.Param("run_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run ID"})
		return
	}

	var run models.Run
	if err := h.DB.First(&run, runID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if run.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           run.ID,
		"series_id":    run.SeriesID,
		"status":       run.Status,
		"current_step": run.CurrentStep,
	})
}

// RetryRun re-enqueues a failed run. The engine resumes from the last
// completed step because every earlier step result is already persisted.
func (h *Handler) RetryRun(c *gin.Context) {
	userID := c.GetUint("user_id")
	runID, err := strconv.ParseUint(c.Param("run_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run ID"})
		return
	}

	var run models.Run
	if err := h.DB.First(&run, runID).Error; err != nil || run.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if run.Status != models.RunStatusFailed {
		c.JSON(http.StatusConflict, gin.H{"error": "Only failed runs can be retried"})
		return
	}

	trig := pipeline.Trigger{
		SeriesID:       run.SeriesID,
		UserID:         run.UserID,
		IsTest:         run.IsTest,
		IdempotencyKey: run.IdempotencyKey,
	}
	payload, err := tasks.Marshal(trig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build trigger"})
		return
	}
	if err := h.Redis.LPush(c.Request.Context(), tasks.QueueVideoGenerate, payload).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue retry"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// PublishVideo queues a completed video for upload to a linked platform.
func (h *Handler) PublishVideo(c *gin.Context) {
	userID := c.GetUint("user_id")
	videoID, err := strconv.ParseUint(c.Param("video_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video ID"})
		return
	}

	var video models.Video
	if err := h.DB.First(&video, videoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	var owned models.Series
	if err := h.DB.First(&owned, "id = ? AND user_id = ?", video.SeriesID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if video.Status != models.VideoStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Video is not ready for publishing"})
		return
	}

	platform := c.DefaultQuery("platform", "youtube")
	task := tasks.PublishPayload{VideoID: video.ID, UserID: userID, Platform: platform}
	payload, err := tasks.Marshal(task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build task"})
		return
	}
	if err := h.Redis.LPush(c.Request.Context(), tasks.QueueVideoPublish, payload).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue publish"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// ownedSeries loads the :id series and verifies ownership, writing the error
// response itself on failure.
func (h *Handler) ownedSeries(c *gin.Context) (*models.Series, bool) {
	seriesID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid series ID"})
		return nil, false
	}

	userID := c.GetUint("user_id")
	var series models.Series
	if err := h.DB.First(&series, "id = ? AND user_id = ?", seriesID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Series not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return nil, false
	}
	return &series, true
}
