package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nthumods/internal/model"
)

// CourseSearchFilter 课程搜索条件
type CourseSearchFilter struct {
	Semester   string
	Keyword    string // 匹配 raw_id / 中英文名称 / 教师
	Department string
	Limit      int
	Offset     int
}

// CourseRepository 课程目录数据访问接口
type CourseRepository interface {
	GetByRawID(ctx context.Context, rawID string) (*model.Course, error)
	// GetByRawIDs 批量查询；不存在的 raw_id 直接缺席，不报错
	GetByRawIDs(ctx context.Context, rawIDs []string) ([]model.Course, error)
	Search(ctx context.Context, filter CourseSearchFilter) ([]model.Course, int64, error)
	// Upsert 按 raw_id 批量插入或覆盖
	Upsert(ctx context.Context, courses []model.Course) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) GetByRawID(ctx context.Context, rawID string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).Where("raw_id = ?", rawID).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByRawIDs(ctx context.Context, rawIDs []string) ([]model.Course, error) {
	if len(rawIDs) == 0 {
		return nil, nil
	}
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("raw_id IN ?", rawIDs).
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Search(ctx context.Context, filter CourseSearchFilter) ([]model.Course, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Course{})

	if filter.Semester != "" {
		q = q.Where("semester = ?", filter.Semester)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("raw_id ILIKE ? OR name_zh ILIKE ? OR name_en ILIKE ? OR array_to_string(teachers, ',') ILIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := q.Order("raw_id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&courses).Error
	return courses, total, err
}

func (r *courseRepo) Upsert(ctx context.Context, courses []model.Course) error {
	if len(courses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "raw_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"semester", "name_zh", "name_en", "department", "course", "class",
				"credits", "venues", "times", "teachers", "language", "updated_at",
			}),
		}).
		CreateInBatches(&courses, 200).Error
}
