package repository

import (
	"context"

	"gorm.io/gorm"

	"nthumods/internal/model"
)

// SelectionRepository 用户选课数据访问接口
type SelectionRepository interface {
	// ListByUserAndSemester 按 position 升序返回
	ListByUserAndSemester(ctx context.Context, userID, semester string) ([]model.CourseSelection, error)
	// Replace 在事务中全量替换用户选课
	Replace(ctx context.Context, userID, semester string, selections []model.CourseSelection) error
	// SetHidden 返回 gorm.ErrRecordNotFound 表示未选该课
	SetHidden(ctx context.Context, userID, semester, rawID string, hidden bool) error
}

type selectionRepo struct {
	db *gorm.DB
}

// NewSelectionRepo 创建 SelectionRepository 实例
func NewSelectionRepo(db *gorm.DB) SelectionRepository {
	return &selectionRepo{db: db}
}

func (r *selectionRepo) ListByUserAndSemester(ctx context.Context, userID, semester string) ([]model.CourseSelection, error) {
	var selections []model.CourseSelection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND semester = ?", userID, semester).
		Order("position ASC").
		Find(&selections).Error
	return selections, err
}

func (r *selectionRepo) Replace(ctx context.Context, userID, semester string, selections []model.CourseSelection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND semester = ?", userID, semester).
			Delete(&model.CourseSelection{}).Error; err != nil {
			return err
		}
		if len(selections) > 0 {
			if err := tx.Create(&selections).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *selectionRepo) SetHidden(ctx context.Context, userID, semester, rawID string, hidden bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.CourseSelection{}).
		Where("user_id = ? AND semester = ? AND raw_id = ?", userID, semester, rawID).
		Updates(map[string]interface{}{"hidden": hidden, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
