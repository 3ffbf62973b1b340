package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"nthumods/config"
	"nthumods/internal/repository"
)

// TimetableCache 课表结果缓存；实现为 pkg/redis.Client
type TimetableCache interface {
	GetTimetable(ctx context.Context, userID, semester string) ([]byte, error)
	SetTimetable(ctx context.Context, userID, semester string, payload []byte, ttl time.Duration) error
	InvalidateTimetable(ctx context.Context, userID, semester string) error
	InvalidateCatalog(ctx context.Context) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Timetable TimetableService
	Course    CourseService
	Export    ExportService
}

// NewService 创建 Service 聚合
//
// cache 可为 nil（Redis 不可用时降级为每次实时构建）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache TimetableCache,
	logger *zap.Logger,
) *Service {
	tt := NewTimetableService(&cfg.Timetable, repo, cache, logger)
	return &Service{
		Timetable: tt,
		Course:    NewCourseService(repo, cache, logger),
		Export:    NewExportService(&cfg.Timetable, tt, logger),
	}
}
