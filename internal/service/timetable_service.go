package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nthumods/config"
	"nthumods/internal/dto"
	"nthumods/internal/model"
	"nthumods/internal/repository"
	"nthumods/internal/timetable"
	pkgerrors "nthumods/pkg/errors"
)

// ── 课表模块业务错误 ──

var (
	ErrTimetableBuildFailed      = errors.New("课表构建失败")
	ErrTimetableSelectionMissing = errors.New("未选修该课程")
	ErrTimetableUnknownCourses   = errors.New("课程不存在")
	ErrTimetablePreferenceStale  = errors.New("颜色设置已被其他设备修改，请刷新后重试")
)

// ── TimetableService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 课表由选课 + 课程目录 + 颜色偏好即时构建，构建本身是纯函数（internal/timetable）
//   - 单门课程数据损坏时默认跳过并以 warnings 返回，不影响其余课程
//   - 我的课表结果缓存于 Redis；选课、隐藏、颜色变更后立即失效
//   - 隐藏的课程仍参与默认配色，保证切换隐藏时其余课程颜色不变
// ─────────────────────────────────────────────────────────────

// TimetableService 课表模块业务接口
type TimetableService interface {
	// GetMyTimetable 获取当前用户的课表
	GetMyTimetable(ctx context.Context, userID, semester string) (*dto.TimetableResponse, error)
	// Preview 按 raw_id 列表构建课表，不读写用户数据
	Preview(ctx context.Context, req *dto.BuildTimetableRequest) (*dto.TimetableResponse, error)
	// ColorMap 计算颜色分配
	ColorMap(ctx context.Context, req *dto.ColorMapRequest) (*dto.ColorMapResponse, error)
	// SetSelections 全量替换选课并返回新课表
	SetSelections(ctx context.Context, userID string, req *dto.SetSelectionsRequest) (*dto.TimetableResponse, error)
	// SetHidden 隐藏或显示一门已选课程
	SetHidden(ctx context.Context, userID, rawID string, req *dto.SetHiddenRequest) error
	// UpdateColors 更新颜色偏好
	UpdateColors(ctx context.Context, userID string, req *dto.UpdateColorsRequest) (*dto.PreferenceResponse, error)
	// Build 构建用户课表（导出使用）
	Build(ctx context.Context, userID, semester string) (*Timetable, error)
	// Periods 节次目录
	Periods() []dto.PeriodResponse
}

// Timetable 构建结果
type Timetable struct {
	Semester string
	Courses  []timetable.MinimalCourse
	Entries  []timetable.CourseTimeslotDataWithFraction
	Failed   []timetable.CourseError
	Missing  []string
	Hidden   []string
}

type timetableService struct {
	cfg    *config.TimetableConfig
	repo   *repository.Repository
	cache  TimetableCache
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(cfg *config.TimetableConfig, repo *repository.Repository, cache TimetableCache, logger *zap.Logger) TimetableService {
	return &timetableService{cfg: cfg, repo: repo, cache: cache, logger: logger}
}

// ════════════════════════════════════════════════════════════
// GetMyTimetable 获取我的课表
// ════════════════════════════════════════════════════════════

func (s *timetableService) GetMyTimetable(ctx context.Context, userID, semester string) (*dto.TimetableResponse, error) {
	semester = s.resolveSemester(semester)

	if cached := s.readCache(ctx, userID, semester); cached != nil {
		return cached, nil
	}

	tt, err := s.Build(ctx, userID, semester)
	if err != nil {
		return nil, err
	}

	resp := toTimetableResponse(tt)
	s.writeCache(ctx, userID, semester, resp)
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// Build 构建用户课表
// ════════════════════════════════════════════════════════════
//
// 流程：
//   1. 读取选课（按 position）并区分隐藏课程
//   2. 批量查询课程目录，目录中缺失的 raw_id 记为 Missing
//   3. 读取颜色偏好，按全部选课顺序分配颜色
//   4. 调用纯函数构建课表

func (s *timetableService) Build(ctx context.Context, userID, semester string) (*Timetable, error) {
	semester = s.resolveSemester(semester)

	selections, err := s.repo.Selection.ListByUserAndSemester(ctx, userID, semester)
	if err != nil {
		s.logger.Error("查询选课失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	allIDs := make([]string, 0, len(selections))
	visibleIDs := make([]string, 0, len(selections))
	var hidden []string
	for _, sel := range selections {
		allIDs = append(allIDs, sel.RawID)
		if sel.Hidden {
			hidden = append(hidden, sel.RawID)
			continue
		}
		visibleIDs = append(visibleIDs, sel.RawID)
	}

	pref, err := s.repo.Preference.Get(ctx, userID, semester)
	if err != nil {
		s.logger.Error("查询颜色偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	palette := pref.PaletteOrNil()
	if len(palette) == 0 {
		palette = s.cfg.Palette
	}
	colors := timetable.BuildColorMap(allIDs, palette, pref.ColorOverrides())

	tt, err := s.build(ctx, visibleIDs, colors)
	if err != nil {
		return nil, err
	}
	tt.Semester = semester
	tt.Hidden = hidden
	return tt, nil
}

// ════════════════════════════════════════════════════════════
// Preview 匿名预览
// ════════════════════════════════════════════════════════════

func (s *timetableService) Preview(ctx context.Context, req *dto.BuildTimetableRequest) (*dto.TimetableResponse, error) {
	ids := dedupe(req.RawIDs)
	colors := timetable.BuildColorMap(ids, s.cfg.Palette, req.Colors)

	tt, err := s.build(ctx, ids, colors)
	if err != nil {
		return nil, err
	}
	tt.Semester = s.cfg.DefaultSemester
	return toTimetableResponse(tt), nil
}

func (s *timetableService) ColorMap(_ context.Context, req *dto.ColorMapRequest) (*dto.ColorMapResponse, error) {
	palette := req.Palette
	if len(palette) == 0 {
		palette = s.cfg.Palette
	}
	return &dto.ColorMapResponse{
		Colors: timetable.BuildColorMap(req.CourseIDs, palette, req.Overrides),
	}, nil
}

// ════════════════════════════════════════════════════════════
// SetSelections 全量替换选课
// ════════════════════════════════════════════════════════════

func (s *timetableService) SetSelections(ctx context.Context, userID string, req *dto.SetSelectionsRequest) (*dto.TimetableResponse, error) {
	semester := s.resolveSemester(req.Semester)
	ids := dedupe(req.RawIDs)

	// 只允许选择目录中存在的课程
	courses, err := s.repo.Course.GetByRawIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if missing := missingIDs(ids, courses); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTimetableUnknownCourses, strings.Join(missing, ","))
	}

	// 保留原有的隐藏状态
	existing, err := s.repo.Selection.ListByUserAndSemester(ctx, userID, semester)
	if err != nil {
		return nil, err
	}
	hiddenSet := make(map[string]bool, len(existing))
	for _, sel := range existing {
		if sel.Hidden {
			hiddenSet[sel.RawID] = true
		}
	}

	selections := make([]model.CourseSelection, 0, len(ids))
	for i, id := range ids {
		selections = append(selections, model.CourseSelection{
			UserID:   userID,
			Semester: semester,
			RawID:    id,
			Position: i,
			Hidden:   hiddenSet[id],
		})
	}

	if err := s.repo.Selection.Replace(ctx, userID, semester, selections); err != nil {
		s.logger.Error("替换选课失败", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("保存选课失败: %w", err)
	}
	s.invalidate(ctx, userID, semester)

	tt, err := s.Build(ctx, userID, semester)
	if err != nil {
		return nil, err
	}
	return toTimetableResponse(tt), nil
}

func (s *timetableService) SetHidden(ctx context.Context, userID, rawID string, req *dto.SetHiddenRequest) error {
	semester := s.resolveSemester(req.Semester)

	err := s.repo.Selection.SetHidden(ctx, userID, semester, rawID, *req.Hidden)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTimetableSelectionMissing
	}
	if err != nil {
		s.logger.Error("更新隐藏状态失败", zap.Error(err))
		return err
	}
	s.invalidate(ctx, userID, semester)
	return nil
}

// ════════════════════════════════════════════════════════════
// UpdateColors 更新颜色偏好（乐观锁）
// ════════════════════════════════════════════════════════════

func (s *timetableService) UpdateColors(ctx context.Context, userID string, req *dto.UpdateColorsRequest) (*dto.PreferenceResponse, error) {
	semester := s.resolveSemester(req.Semester)

	pref, err := s.repo.Preference.Get(ctx, userID, semester)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		pref = &model.TimetablePreference{UserID: userID, Semester: semester}
	}
	if pref.Version != req.Version {
		return nil, ErrTimetablePreferenceStale
	}

	colors := req.Colors
	if colors == nil {
		colors = map[string]string{}
	}
	palette := req.Palette
	if palette == nil {
		palette = []string{}
	}
	pref.Colors = datatypes.NewJSONType(colors)
	pref.Palette = datatypes.NewJSONType(palette)

	if err := s.repo.Preference.Save(ctx, pref); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrTimetablePreferenceStale
		}
		s.logger.Error("保存颜色偏好失败", zap.Error(err))
		return nil, err
	}
	s.invalidate(ctx, userID, semester)

	return &dto.PreferenceResponse{
		Semester: semester,
		Colors:   colors,
		Palette:  palette,
		Version:  pref.Version,
	}, nil
}

func (s *timetableService) Periods() []dto.PeriodResponse {
	periods := timetable.Periods()
	out := make([]dto.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, dto.PeriodResponse{Code: p.Label(), Index: p.Index, Start: p.Start, End: p.End})
	}
	return out
}

// ── 内部方法 ──

// build 查询课程并构建课表；ids 顺序即课程输入顺序
func (s *timetableService) build(ctx context.Context, ids []string, colors timetable.ColorMap) (*Timetable, error) {
	rows, err := s.repo.Course.GetByRawIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	byID := make(map[string]*model.Course, len(rows))
	for i := range rows {
		byID[rows[i].RawID] = &rows[i]
	}

	tt := &Timetable{}
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			tt.Missing = append(tt.Missing, id)
			continue
		}
		tt.Courses = append(tt.Courses, c.ToMinimal())
	}

	entries, failed, err := timetable.Build(tt.Courses, colors, s.cfg.Policy())
	if err != nil {
		s.logger.Warn("课表构建失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTimetableBuildFailed, err)
	}
	for _, f := range failed {
		s.logger.Warn("课程数据无效，已跳过", zap.String("raw_id", f.RawID), zap.Error(f.Err))
	}
	tt.Entries = entries
	tt.Failed = failed
	return tt, nil
}

func (s *timetableService) resolveSemester(semester string) string {
	if semester == "" {
		return s.cfg.DefaultSemester
	}
	return semester
}

func (s *timetableService) readCache(ctx context.Context, userID, semester string) *dto.TimetableResponse {
	if s.cache == nil {
		return nil
	}
	b, err := s.cache.GetTimetable(ctx, userID, semester)
	if err != nil {
		return nil
	}
	var resp dto.TimetableResponse
	if err := sonic.Unmarshal(b, &resp); err != nil {
		s.logger.Warn("课表缓存解码失败", zap.Error(err))
		return nil
	}
	return &resp
}

func (s *timetableService) writeCache(ctx context.Context, userID, semester string, resp *dto.TimetableResponse) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	b, err := sonic.Marshal(resp)
	if err != nil {
		s.logger.Warn("课表缓存编码失败", zap.Error(err))
		return
	}
	if err := s.cache.SetTimetable(ctx, userID, semester, b, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("写入课表缓存失败", zap.Error(err))
	}
}

func (s *timetableService) invalidate(ctx context.Context, userID, semester string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTimetable(ctx, userID, semester); err != nil {
		s.logger.Warn("清除课表缓存失败", zap.String("user_id", userID), zap.Error(err))
	}
}

// ── 辅助函数 ──

func toTimetableResponse(tt *Timetable) *dto.TimetableResponse {
	entries := make([]dto.TimetableEntry, 0, len(tt.Entries))
	for _, e := range tt.Entries {
		start, _ := timetable.PeriodAt(e.StartTime)
		end, _ := timetable.PeriodAt(e.EndTime)
		entries = append(entries, dto.TimetableEntry{
			RawID:         e.Course.RawID,
			NameZH:        e.Course.NameZH,
			NameEN:        e.Course.NameEN,
			Teachers:      e.Course.Teachers,
			Venue:         e.Venue,
			DayOfWeek:     e.DayOfWeek,
			StartTime:     e.StartTime,
			EndTime:       e.EndTime,
			StartClock:    start.Start,
			EndClock:      end.End,
			Color:         e.Color,
			TextColor:     e.TextColor,
			Fraction:      e.Fraction,
			FractionIndex: e.FractionIndex,
			TimeSlots:     e.TimeSlots,
		})
	}

	warnings := make([]dto.TimetableWarning, 0, len(tt.Failed)+len(tt.Missing))
	for _, f := range tt.Failed {
		warnings = append(warnings, dto.TimetableWarning{RawID: f.RawID, Reason: f.Err.Error()})
	}
	for _, id := range tt.Missing {
		warnings = append(warnings, dto.TimetableWarning{RawID: id, Reason: ErrTimetableUnknownCourses.Error()})
	}

	conflicts := timetable.DetectConflicts(tt.Entries)
	if conflicts == nil {
		conflicts = []timetable.Conflict{}
	}
	weekdays := timetable.WeekdaysUsed(tt.Entries)
	if weekdays == nil {
		weekdays = []int{}
	}
	hidden := tt.Hidden
	if hidden == nil {
		hidden = []string{}
	}
	first, last := timetable.PeriodRange(tt.Entries)

	return &dto.TimetableResponse{
		Semester:     tt.Semester,
		Entries:      entries,
		Warnings:     warnings,
		Conflicts:    conflicts,
		Hidden:       hidden,
		TotalCredits: timetable.TotalCredits(tt.Courses),
		Weekdays:     weekdays,
		FirstPeriod:  first,
		LastPeriod:   last,
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs(ids []string, courses []model.Course) []string {
	found := make(map[string]bool, len(courses))
	for _, c := range courses {
		found[c.RawID] = true
	}
	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
