package repository

import (
	"errors"
	"time"

	"earnledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) GetByKey(taskKey string) (*models.TaskConfig, error) {
	var t models.TaskConfig
	err := r.db.Where("task_key = ? AND active = ?", taskKey, true).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownTask
		}
		return nil, err
	}
	return &t, nil
}

// GetBySecret maps a submitted secret code to its task. Matching free-text
// replies to codes is the caller's business; this is just the lookup.
func (r *TaskRepository) GetBySecret(secret string) (*models.TaskConfig, error) {
	var t models.TaskConfig
	err := r.db.Where("secret_code = ? AND active = ?", secret, true).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownTask
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListActive() ([]models.TaskConfig, error) {
	var list []models.TaskConfig
	err := r.db.Where("active = ?", true).Order("task_key ASC").Find(&list).Error
	return list, err
}

func (r *TaskRepository) ListAll() ([]models.TaskConfig, error) {
	var list []models.TaskConfig
	err := r.db.Order("task_key ASC").Find(&list).Error
	return list, err
}

func (r *TaskRepository) Create(t *models.TaskConfig) error {
	return r.db.Create(t).Error
}

func (r *TaskRepository) Update(t *models.TaskConfig) error {
	return r.db.Save(t).Error
}

func (r *TaskRepository) Delete(taskKey string) error {
	res := r.db.Where("task_key = ?", taskKey).Delete(&models.TaskConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUnknownTask
	}
	return nil
}

// GetCompletion returns the completion row for (user, task), or nil if the
// task was never completed.
func (r *TaskRepository) GetCompletion(userID int64, taskKey string) (*models.TaskCompletion, error) {
	var tc models.TaskCompletion
	err := r.db.Where("user_id = ? AND task_key = ?", userID, taskKey).First(&tc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tc, nil
}

// GetCompletionTx is GetCompletion inside tx, for the
// re-check-inside-transaction step of task completion.
func (r *TaskRepository) GetCompletionTx(tx *gorm.DB, userID int64, taskKey string) (*models.TaskCompletion, error) {
	var tc models.TaskCompletion
	err := tx.Where("user_id = ? AND task_key = ?", userID, taskKey).First(&tc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tc, nil
}

// UpsertCompletion moves completed_at forward for (user, task), inserting
// the row on first completion.
func (r *TaskRepository) UpsertCompletion(tx *gorm.DB, userID int64, taskKey string, completedAt time.Time) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"completed_at": completedAt}),
	}).Create(&models.TaskCompletion{
		UserID:      userID,
		TaskKey:     taskKey,
		CompletedAt: completedAt,
	}).Error
}

// CountCompletions returns the number of distinct tasks the user has ever
// completed.
func (r *TaskRepository) CountCompletions(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskCompletion{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
