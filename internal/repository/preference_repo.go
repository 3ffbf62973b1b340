package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nthumods/internal/model"
	pkgerrors "nthumods/pkg/errors"
)

// PreferenceRepository 课表偏好数据访问接口
type PreferenceRepository interface {
	// Get 不存在时返回 (nil, nil)
	Get(ctx context.Context, userID, semester string) (*model.TimetablePreference, error)
	// Save Version 为 0 时新建；否则按版本号更新
	// 版本不符或并发首次新建时返回 ErrOptimisticLock
	Save(ctx context.Context, pref *model.TimetablePreference) error
}

type preferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepo 创建 PreferenceRepository 实例
func NewPreferenceRepo(db *gorm.DB) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) Get(ctx context.Context, userID, semester string) (*model.TimetablePreference, error) {
	var pref model.TimetablePreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND semester = ?", userID, semester).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepo) Save(ctx context.Context, pref *model.TimetablePreference) error {
	if pref.Version == 0 {
		pref.Version = 1
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(pref)
		if result.Error != nil || result.RowsAffected == 0 {
			pref.Version = 0
		}
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&model.TimetablePreference{}).
		Where("preference_id = ? AND version = ?", pref.PreferenceID, pref.Version).
		Updates(map[string]interface{}{
			"colors":     pref.Colors,
			"palette":    pref.Palette,
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	pref.Version++
	return nil
}
