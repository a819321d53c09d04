package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityTypeComment       ActivityType = "comment"
	ActivityTypeStatusChanged ActivityType = "status_changed"
	ActivityTypeStageChanged  ActivityType = "stage_changed"
	ActivityTypeTaskCreated   ActivityType = "task_created"
	ActivityTypeSystem        ActivityType = "system"
)

// Activity is an append-only audit entry on a deal's timeline. There is no
// update or delete path for it; corrections are compensating entries.
// A nil AuthorID marks a system-generated entry.
type Activity struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	DealID    uint64         `gorm:"not null;index" json:"deal_id"`
	AuthorID  *uint64        `gorm:"index" json:"author_id"`
	Type      ActivityType   `gorm:"type:varchar(20);not null" json:"type"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`

	// Relations
	Deal   Deal  `gorm:"foreignKey:DealID" json:"-"`
	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// Payload shapes are fixed per activity type. Constructors below are the only
// way activities get built, so each type always carries its own field set.

type StatusChangedPayload struct {
	OldStatus DealStatus `json:"old_status"`
	NewStatus DealStatus `json:"new_status"`
}

type StageChangedPayload struct {
	OldStage DealStage `json:"old_stage"`
	NewStage DealStage `json:"new_stage"`
}

type CommentPayload struct {
	Text string `json:"text"`
}

type TaskCreatedPayload struct {
	TaskID    uint64 `json:"task_id"`
	TaskTitle string `json:"task_title"`
}

func NewStatusChangedActivity(dealID uint64, authorID *uint64, oldStatus, newStatus DealStatus) Activity {
	return Activity{
		DealID:   dealID,
		AuthorID: authorID,
		Type:     ActivityTypeStatusChanged,
		Payload:  marshalPayload(StatusChangedPayload{OldStatus: oldStatus, NewStatus: newStatus}),
	}
}

func NewStageChangedActivity(dealID uint64, authorID *uint64, oldStage, newStage DealStage) Activity {
	return Activity{
		DealID:   dealID,
		AuthorID: authorID,
		Type:     ActivityTypeStageChanged,
		Payload:  marshalPayload(StageChangedPayload{OldStage: oldStage, NewStage: newStage}),
	}
}

func NewCommentActivity(dealID, authorID uint64, text string) Activity {
	return Activity{
		DealID:   dealID,
		AuthorID: &authorID,
		Type:     ActivityTypeComment,
		Payload:  marshalPayload(CommentPayload{Text: text}),
	}
}

func NewTaskCreatedActivity(dealID uint64, authorID *uint64, taskID uint64, taskTitle string) Activity {
	return Activity{
		DealID:   dealID,
		AuthorID: authorID,
		Type:     ActivityTypeTaskCreated,
		Payload:  marshalPayload(TaskCreatedPayload{TaskID: taskID, TaskTitle: taskTitle}),
	}
}

// NewSystemActivity records a free-form system entry with no author.
func NewSystemActivity(dealID uint64, payload map[string]any) Activity {
	return Activity{
		DealID:  dealID,
		Type:    ActivityTypeSystem,
		Payload: marshalPayload(payload),
	}
}

func marshalPayload(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}
