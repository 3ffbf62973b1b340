package dto

import "nthumods/internal/timetable"

// ── 课表构建 ──

// BuildTimetableRequest 按 raw_id 列表预览课表（无需登录）
type BuildTimetableRequest struct {
	RawIDs []string          `json:"raw_ids" binding:"required,max=60,dive,required"`
	Colors map[string]string `json:"colors" binding:"omitempty,dive,keys,required,endkeys,hexcolor"`
}

// TimetableEntry 课表条目
type TimetableEntry struct {
	RawID         string   `json:"raw_id"`
	NameZH        string   `json:"name_zh"`
	NameEN        string   `json:"name_en"`
	Teachers      []string `json:"teachers"`
	Venue         string   `json:"venue"`
	DayOfWeek     int      `json:"day_of_week"` // 0=周一
	StartTime     int      `json:"start_time"`  // 节次下标
	EndTime       int      `json:"end_time"`
	StartClock    string   `json:"start_clock"` // HH:MM
	EndClock      string   `json:"end_clock"`
	Color         string   `json:"color"`
	TextColor     string   `json:"text_color"`
	Fraction      int      `json:"fraction"`
	FractionIndex int      `json:"fraction_index"`
	TimeSlots     []string `json:"time_slots"`
}

// TimetableWarning 未能排入课表的课程
type TimetableWarning struct {
	RawID  string `json:"raw_id"`
	Reason string `json:"reason"`
}

// TimetableResponse 课表响应
type TimetableResponse struct {
	Semester     string               `json:"semester"`
	Entries      []TimetableEntry     `json:"entries"`
	Warnings     []TimetableWarning   `json:"warnings"`
	Conflicts    []timetable.Conflict `json:"conflicts"`
	Hidden       []string             `json:"hidden"`
	TotalCredits int                  `json:"total_credits"`
	Weekdays     []int                `json:"weekdays"`
	FirstPeriod  int                  `json:"first_period"` // 无课时为 -1
	LastPeriod   int                  `json:"last_period"`
}

// ── 颜色 ──

// ColorMapRequest 颜色分配请求
type ColorMapRequest struct {
	CourseIDs []string          `json:"course_ids" binding:"required,max=100,dive,required"`
	Palette   []string          `json:"palette" binding:"omitempty,max=64,dive,hexcolor"`
	Overrides map[string]string `json:"overrides" binding:"omitempty,dive,keys,required,endkeys,hexcolor"`
}

// ColorMapResponse 颜色分配结果
type ColorMapResponse struct {
	Colors timetable.ColorMap `json:"colors"`
}

// ── 我的课表 ──

// SetSelectionsRequest 全量替换选课
type SetSelectionsRequest struct {
	Semester string   `json:"semester" binding:"omitempty,numeric,len=5"`
	RawIDs   []string `json:"raw_ids" binding:"max=60,dive,required"`
}

// SetHiddenRequest 隐藏 / 显示课程
type SetHiddenRequest struct {
	Semester string `json:"semester" binding:"omitempty,numeric,len=5"`
	Hidden   *bool  `json:"hidden" binding:"required"`
}

// UpdateColorsRequest 更新颜色偏好
type UpdateColorsRequest struct {
	Semester string            `json:"semester" binding:"omitempty,numeric,len=5"`
	Colors   map[string]string `json:"colors" binding:"omitempty,dive,keys,required,endkeys,hexcolor"`
	Palette  []string          `json:"palette" binding:"omitempty,max=64,dive,hexcolor"`
	Version  int               `json:"version" binding:"min=0"` // 0 表示首次创建
}

// PreferenceResponse 颜色偏好响应
type PreferenceResponse struct {
	Semester string            `json:"semester"`
	Colors   map[string]string `json:"colors"`
	Palette  []string          `json:"palette"`
	Version  int               `json:"version"`
}

// ── 节次 ──

// PeriodResponse 节次目录条目
type PeriodResponse struct {
	Code  string `json:"code"`
	Index int    `json:"index"`
	Start string `json:"start"`
	End   string `json:"end"`
}
