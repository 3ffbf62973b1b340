package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nthumods/internal/dto"
	"nthumods/internal/model"
	"nthumods/internal/repository"
	"nthumods/internal/timetable"
	pkgerrors "nthumods/pkg/errors"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound       = errors.New("课程不存在")
	ErrCourseInvalid        = errors.New("课程数据无效")
	ErrCourseDuplicateRawID = errors.New("导入数据中 raw_id 重复")
)

const (
	defaultCoursePageSize = 20
	maxCoursePageSize     = 100
)

// CourseService 课程目录业务接口
//
// 导入时逐条执行与课表构建相同的校验（venues/times 等长、时间代码合法），
// 保证目录中的课程都能排入课表。
type CourseService interface {
	Search(ctx context.Context, req *dto.CourseSearchRequest) ([]dto.CourseResponse, int64, error)
	Get(ctx context.Context, rawID string) (*dto.CourseResponse, error)
	Import(ctx context.Context, req *dto.ImportCoursesRequest) (*dto.ImportCoursesResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	cache  TimetableCache
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例；cache 可为 nil
func NewCourseService(repo *repository.Repository, cache TimetableCache, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, cache: cache, logger: logger}
}

func (s *courseService) Search(ctx context.Context, req *dto.CourseSearchRequest) ([]dto.CourseResponse, int64, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	courses, total, err := s.repo.Course.Search(ctx, repository.CourseSearchFilter{
		Semester:   req.Semester,
		Keyword:    strings.TrimSpace(req.Keyword),
		Department: req.Department,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		s.logger.Error("搜索课程失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		list = append(list, toCourseResponse(&courses[i]))
	}
	return list, total, nil
}

func (s *courseService) Get(ctx context.Context, rawID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByRawID(ctx, rawID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// Import 批量导入（按 raw_id 覆盖）
// ════════════════════════════════════════════════════════════

func (s *courseService) Import(ctx context.Context, req *dto.ImportCoursesRequest) (*dto.ImportCoursesResponse, error) {
	seen := make(map[string]bool, len(req.Courses))
	courses := make([]model.Course, 0, len(req.Courses))

	for i := range req.Courses {
		in := &req.Courses[i]
		if seen[in.RawID] {
			return nil, fmt.Errorf("%w: %s", ErrCourseDuplicateRawID, in.RawID)
		}
		seen[in.RawID] = true

		c := fromCourseInput(in)
		if _, err := timetable.CourseEntries(c.ToMinimal()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCourseInvalid, in.RawID, err)
		}
		courses = append(courses, c)
	}

	if err := s.repo.Course.Upsert(ctx, courses); err != nil {
		s.logger.Error("导入课程失败", zap.Int("count", len(courses)), zap.Error(err))
		return nil, err
	}

	// 课程地点或时间可能已变，已缓存的课表全部作废
	if s.cache != nil {
		if err := s.cache.InvalidateCatalog(ctx); err != nil {
			s.logger.Warn("课表缓存失效失败", zap.Error(err))
		}
	}

	s.logger.Info("课程导入完成", zap.Int("count", len(courses)))
	return &dto.ImportCoursesResponse{ImportedCount: len(courses)}, nil
}

// ── 辅助函数 ──

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultCoursePageSize
	}
	if pageSize > maxCoursePageSize {
		pageSize = maxCoursePageSize
	}
	return page, pageSize
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	return dto.CourseResponse{
		RawID:      c.RawID,
		Semester:   c.Semester,
		NameZH:     c.NameZH,
		NameEN:     c.NameEN,
		Department: c.Department,
		Course:     c.Course,
		Class:      c.Class,
		Credits:    c.Credits,
		Venues:     nonNil(c.Venues),
		Times:      nonNil(c.Times),
		Teachers:   nonNil(c.Teachers),
		Language:   c.Language,
	}
}

func fromCourseInput(in *dto.CourseInput) model.Course {
	return model.Course{
		RawID:      in.RawID,
		Semester:   in.Semester,
		NameZH:     in.NameZH,
		NameEN:     in.NameEN,
		Department: in.Department,
		Course:     in.Course,
		Class:      in.Class,
		Credits:    in.Credits,
		Venues:     nonNil(in.Venues),
		Times:      nonNil(in.Times),
		Teachers:   nonNil(in.Teachers),
		Language:   in.Language,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
