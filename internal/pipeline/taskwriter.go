package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/harunalpak/agentic-traffic-booster/internal/tasks"
	"github.com/harunalpak/agentic-traffic-booster/pkg/kafka"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

type taskStore interface {
	Create(ctx context.Context, suggestion *models.ReplySuggestion) (*models.Task, error)
	ExistsByPostID(ctx context.Context, postID string) (bool, error)
}

// TaskWriter is the second pipeline stage. It turns reply suggestions into
// PENDING tasks, absorbing duplicates so redelivered events never produce
// a second task for the same post.
type TaskWriter struct {
	store   taskStore
	logger  logging.Logger
	metrics *Metrics
}

func NewTaskWriter(store taskStore, logger logging.Logger, metrics *Metrics) *TaskWriter {
	return &TaskWriter{store: store, logger: logger, metrics: metrics}
}

// HandleMessage persists one suggestion. Always returns nil: malformed
// events and store failures are logged and the event is acknowledged, so
// this stage is at-most-once by design.
func (w *TaskWriter) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var suggestion models.ReplySuggestion
	if err := json.Unmarshal(msg.Value, &suggestion); err != nil {
		w.logger.WithFields(logging.Fields{
			"topic": msg.Topic,
			"key":   string(msg.Key),
			"error": err.Error(),
		}).Error("Dropping malformed reply suggestion")
		w.countProcessed("dropped")
		return nil
	}

	log := w.logger.WithFields(logging.Fields{
		"post_id":     suggestion.PostID,
		"campaign_id": suggestion.CampaignID,
	})

	exists, err := w.store.ExistsByPostID(ctx, suggestion.PostID)
	if err != nil {
		log.WithFields(logging.Fields{"error": err.Error()}).
			Error("Task existence check failed, dropping event")
		w.countProcessed("dropped")
		return nil
	}
	if exists {
		log.Debug("Task already exists for post, skipping duplicate")
		w.countDuplicate()
		w.countProcessed("duplicate")
		return nil
	}

	task, err := w.store.Create(ctx, &suggestion)
	if err != nil {
		// A concurrent writer winning the insert race is a duplicate,
		// not a failure.
		if errors.Is(err, tasks.ErrDuplicate) {
			log.Debug("Concurrent writer created the task first, skipping")
			w.countDuplicate()
			w.countProcessed("duplicate")
			return nil
		}
		log.WithFields(logging.Fields{"error": err.Error()}).
			Error("Failed to persist task, dropping event")
		w.countProcessed("dropped")
		return nil
	}

	if w.metrics != nil {
		w.metrics.TasksCreated.Inc()
	}
	w.countProcessed("ok")
	log.WithFields(logging.Fields{
		"task_id":  task.ID,
		"mode":     task.Mode,
		"is_risky": task.IsRisky,
	}).Info("Created pending task")
	return nil
}

func (w *TaskWriter) countProcessed(outcome string) {
	if w.metrics != nil {
		w.metrics.EventsProcessed.WithLabelValues("task_writer", outcome).Inc()
	}
}

func (w *TaskWriter) countDuplicate() {
	if w.metrics != nil {
		w.metrics.TasksDuplicate.Inc()
	}
}
