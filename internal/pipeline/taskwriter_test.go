package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/harunalpak/agentic-traffic-booster/internal/tasks"
	"github.com/harunalpak/agentic-traffic-booster/pkg/kafka"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

type fakeTaskStore struct {
	exists    bool
	existsErr error
	createErr error
	created   []*models.ReplySuggestion
}

func (f *fakeTaskStore) Create(ctx context.Context, s *models.ReplySuggestion) (*models.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, s)
	return &models.Task{ID: int64(len(f.created)), PostID: s.PostID, Status: models.TaskStatusPending, Mode: s.Mode}, nil
}

func (f *fakeTaskStore) ExistsByPostID(ctx context.Context, postID string) (bool, error) {
	return f.exists, f.existsErr
}

func suggestionMessage(t *testing.T, s models.ReplySuggestion) kafka.Message {
	t.Helper()
	value, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("failed to marshal suggestion: %v", err)
	}
	return kafka.Message{Topic: "reply-suggestions", Key: []byte(s.PostID), Value: value}
}

func TestTaskWriterCreatesPendingTask(t *testing.T) {
	store := &fakeTaskStore{}
	w := NewTaskWriter(store, logging.NewLoggerWithService("test"), nil)

	msg := suggestionMessage(t, models.ReplySuggestion{PostID: "t1", CampaignID: 5, ReplyText: "nice find", Mode: models.ModeAuto})
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if len(store.created) != 1 || store.created[0].PostID != "t1" {
		t.Fatalf("expected one created task for t1, got %+v", store.created)
	}
}

func TestTaskWriterSkipsExistingPost(t *testing.T) {
	store := &fakeTaskStore{exists: true}
	w := NewTaskWriter(store, logging.NewLoggerWithService("test"), nil)

	msg := suggestionMessage(t, models.ReplySuggestion{PostID: "t1", CampaignID: 5})
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if len(store.created) != 0 {
		t.Error("duplicate suggestion must not create a task")
	}
}

func TestTaskWriterAbsorbsInsertRace(t *testing.T) {
	store := &fakeTaskStore{createErr: tasks.ErrDuplicate}
	w := NewTaskWriter(store, logging.NewLoggerWithService("test"), nil)

	msg := suggestionMessage(t, models.ReplySuggestion{PostID: "t1", CampaignID: 5})
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("unique violation must be absorbed, got %v", err)
	}
}

func TestTaskWriterAcksOnStoreFailure(t *testing.T) {
	store := &fakeTaskStore{createErr: fmt.Errorf("connection reset")}
	w := NewTaskWriter(store, logging.NewLoggerWithService("test"), nil)

	msg := suggestionMessage(t, models.ReplySuggestion{PostID: "t1", CampaignID: 5})
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("store failure must be logged and acked, got %v", err)
	}
}

func TestTaskWriterDropsMalformedEvent(t *testing.T) {
	store := &fakeTaskStore{}
	w := NewTaskWriter(store, logging.NewLoggerWithService("test"), nil)

	msg := kafka.Message{Topic: "reply-suggestions", Value: []byte("{broken")}
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("malformed event must be dropped, got %v", err)
	}
	if len(store.created) != 0 {
		t.Error("no task should be created from a malformed event")
	}
}
