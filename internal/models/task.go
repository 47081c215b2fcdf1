package models

import "time"

// TaskConfig is one row of the task catalog. Adding a task variant is a data
// change, not a code change: the engine reads reward and cooldown from here.
// Deleting a task removes the row outright; task_key and secret_code are
// unique among live rows, and a deleted key may be reused.
type TaskConfig struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskKey      string    `gorm:"uniqueIndex;size:32;not null" json:"task_key"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	URL          string    `gorm:"size:512" json:"url"`
	SecretCode   string    `gorm:"uniqueIndex;size:64;not null" json:"secret_code"`
	RewardCents  int64     `gorm:"not null" json:"reward_cents"`
	CooldownSecs int64     `gorm:"not null" json:"cooldown_secs"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (TaskConfig) TableName() string { return "task_configs" }

func (t *TaskConfig) Cooldown() time.Duration {
	return time.Duration(t.CooldownSecs) * time.Second
}

// TaskCompletion records the last completion time per (user, task). One row
// per pair; completed_at only moves forward.
type TaskCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_task_completions_user_task" json:"user_id"`
	TaskKey     string    `gorm:"size:32;not null;uniqueIndex:idx_task_completions_user_task" json:"task_key"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

func (TaskCompletion) TableName() string { return "task_completions" }
