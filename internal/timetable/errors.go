package timetable

import (
	"errors"
	"fmt"
)

// ── 课表构建错误 ──

var (
	ErrMalformedTimeCode         = errors.New("时间代码格式错误")
	ErrMismatchedVenueTimeLength = errors.New("上课地点与时间代码数量不一致")
)

// MalformedTimeCodeError 携带出错片段的时间代码错误
type MalformedTimeCodeError struct {
	Code      string // 完整时间代码
	Offending string // 出错片段
	Reason    string
}

func (e *MalformedTimeCodeError) Error() string {
	return fmt.Sprintf("时间代码 %q 在 %q 处无效: %s", e.Code, e.Offending, e.Reason)
}

// Is 使 errors.Is(err, ErrMalformedTimeCode) 成立
func (e *MalformedTimeCodeError) Is(target error) bool {
	return target == ErrMalformedTimeCode
}

// CourseError 单门课程的构建失败记录
type CourseError struct {
	RawID string `json:"raw_id"`
	Err   error  `json:"-"`
}

func (e CourseError) Error() string {
	return fmt.Sprintf("课程 %s: %v", e.RawID, e.Err)
}

func (e CourseError) Unwrap() error { return e.Err }
