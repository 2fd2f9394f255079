// Package handlers exposes the task review and reporting API. Tasks are
// created by the pipeline, never through this surface; the API reads,
// filters and transitions them.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/shortlink"
	"github.com/harunalpak/agentic-traffic-booster/internal/tasks"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/middleware"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

var (
	taskStore *tasks.Store
	linkStore *shortlink.Store
	logger    logging.Logger
)

// Init initializes the handlers with their stores and logger
func Init(ts *tasks.Store, ls *shortlink.Store, log logging.Logger) {
	taskStore = ts
	linkStore = ls
	logger = log
}

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListTasks returns tasks filtered by optional status, campaign_id and
// mode query parameters.
func ListTasks(c middleware.Context) {
	filter := tasks.Filter{
		Status: c.Query("status"),
		Mode:   c.Query("mode"),
	}
	if filter.Status != "" && !models.ValidTaskStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown status: " + filter.Status})
		return
	}
	if raw := c.Query("campaign_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid campaign_id"})
			return
		}
		filter.CampaignID = id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		filter.Limit = limit
	}

	result, err := taskStore.List(c.Request.Context(), filter)
	if err != nil {
		logger.WithFields(logging.Fields{"error": err.Error()}).Error("Failed to list tasks")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list tasks"})
		return
	}
	if result == nil {
		result = []models.Task{}
	}
	c.JSON(http.StatusOK, result)
}

// ListPendingTasks returns tasks awaiting review, newest first.
func ListPendingTasks(c middleware.Context) {
	result, err := taskStore.List(c.Request.Context(), tasks.Filter{Status: models.TaskStatusPending})
	if err != nil {
		logger.WithFields(logging.Fields{"error": err.Error()}).Error("Failed to list pending tasks")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list tasks"})
		return
	}
	if result == nil {
		result = []models.Task{}
	}
	c.JSON(http.StatusOK, result)
}

// GetTask returns a single task by ID.
func GetTask(c middleware.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid task id"})
		return
	}

	task, err := taskStore.GetByID(c.Request.Context(), id)
	if err == tasks.ErrNotFound {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Task not found"})
		return
	}
	if err != nil {
		logger.WithFields(logging.Fields{"task_id": id, "error": err.Error()}).Error("Failed to get task")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus transitions a task to the status given in the body.
func UpdateTaskStatus(c middleware.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	transitionTask(c, body.Status)
}

// ApproveTask transitions a task to APPROVED.
func ApproveTask(c middleware.Context) {
	transitionTask(c, models.TaskStatusApproved)
}

// RejectTask transitions a task to REJECTED.
func RejectTask(c middleware.Context) {
	transitionTask(c, models.TaskStatusRejected)
}

// MarkTaskPosted transitions a task to POSTED.
func MarkTaskPosted(c middleware.Context) {
	transitionTask(c, models.TaskStatusPosted)
}

func transitionTask(c middleware.Context, status string) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid task id"})
		return
	}
	if !models.ValidTransitionTarget(status) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid target status: " + status})
		return
	}

	task, err := taskStore.UpdateStatus(c.Request.Context(), id, status)
	if err == tasks.ErrNotFound {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Task not found"})
		return
	}
	if err != nil {
		logger.WithFields(logging.Fields{
			"task_id": id,
			"status":  status,
			"error":   err.Error(),
		}).Error("Failed to update task status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update task"})
		return
	}

	logger.WithFields(logging.Fields{
		"task_id": task.ID,
		"post_id": task.PostID,
		"status":  task.Status,
	}).Info("Task status updated")
	c.JSON(http.StatusOK, task)
}

// GetTaskStats returns aggregate task counts per status plus a risky
// count.
func GetTaskStats(c middleware.Context) {
	counts, err := taskStore.StatusCounts(c.Request.Context())
	if err != nil {
		logger.WithFields(logging.Fields{"error": err.Error()}).Error("Failed to aggregate task stats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to aggregate stats"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetCampaignStats returns time-windowed task counts for one campaign.
// The window defaults to 24 hours and is set with ?hours=N.
func GetCampaignStats(c middleware.Context) {
	campaignID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid campaign id"})
		return
	}

	hours := 24
	if raw := c.Query("hours"); raw != "" {
		hours, err = strconv.Atoi(raw)
		if err != nil || hours < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid hours"})
			return
		}
	}

	stats, err := taskStore.CampaignStats(c.Request.Context(), campaignID, time.Duration(hours)*time.Hour)
	if err != nil {
		logger.WithFields(logging.Fields{
			"campaign_id": campaignID,
			"error":       err.Error(),
		}).Error("Failed to aggregate campaign stats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to aggregate stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListCampaignLinks returns the short links created for a campaign.
func ListCampaignLinks(c middleware.Context) {
	campaignID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid campaign id"})
		return
	}

	links, err := linkStore.ListByCampaign(c.Request.Context(), campaignID)
	if err != nil {
		logger.WithFields(logging.Fields{
			"campaign_id": campaignID,
			"error":       err.Error(),
		}).Error("Failed to list campaign links")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list links"})
		return
	}
	if links == nil {
		links = []models.ShortLink{}
	}
	c.JSON(http.StatusOK, links)
}

// RecordLinkClick increments the click counter for a short URL.
func RecordLinkClick(c middleware.Context) {
	var body struct {
		ShortURL string `json:"short_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ShortURL == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "short_url is required"})
		return
	}

	if err := linkStore.IncrementClicks(c.Request.Context(), body.ShortURL); err != nil {
		if err == shortlink.ErrNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Short link not found"})
			return
		}
		logger.WithFields(logging.Fields{
			"short_url": body.ShortURL,
			"error":     err.Error(),
		}).Error("Failed to record link click")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to record click"})
		return
	}
	c.JSON(http.StatusOK, map[string]string{"status": "recorded"})
}
