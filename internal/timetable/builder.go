package timetable

import (
	"fmt"
	"sort"
)

// ErrorPolicy 单门课程构建失败时的处理策略
type ErrorPolicy string

const (
	// PolicySkip 跳过出错课程并返回警告（默认）
	PolicySkip ErrorPolicy = "skip"
	// PolicyFail 任意课程出错即整体失败
	PolicyFail ErrorPolicy = "fail"
)

// ParsePolicy 解析配置中的策略名，空值取默认
func ParsePolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyFail:
		return PolicyFail, nil
	}
	return "", fmt.Errorf("未知的课表错误策略 %q", s)
}

// BuildTimetable 构建课表（跳过并警告策略）
//
// 返回值按 (星期, 起始节次, raw_id, 地点, 生成顺序) 排序；
// 无法构建的课程不出现在结果中，而是记入第二个返回值。
func BuildTimetable(courses []MinimalCourse, colors ColorMap) ([]CourseTimeslotDataWithFraction, []CourseError) {
	entries, failed := buildEntries(courses, colors)
	return Layout(entries), failed
}

// BuildTimetableStrict 构建课表，任意课程出错即返回该错误
func BuildTimetableStrict(courses []MinimalCourse, colors ColorMap) ([]CourseTimeslotDataWithFraction, error) {
	entries, failed := buildEntries(courses, colors)
	if len(failed) > 0 {
		return nil, failed[0]
	}
	return Layout(entries), nil
}

// Build 按策略构建课表
func Build(courses []MinimalCourse, colors ColorMap, policy ErrorPolicy) ([]CourseTimeslotDataWithFraction, []CourseError, error) {
	if policy == PolicyFail {
		out, err := BuildTimetableStrict(courses, colors)
		return out, nil, err
	}
	out, failed := BuildTimetable(courses, colors)
	return out, failed, nil
}

// CourseEntries 单门课程的全部课表条目（未排序、未布局）
func CourseEntries(course MinimalCourse) ([]CourseTimeslotData, error) {
	if len(course.Venues) != len(course.Times) {
		return nil, fmt.Errorf("%w: venues=%d times=%d",
			ErrMismatchedVenueTimeLength, len(course.Venues), len(course.Times))
	}

	// 同一地点的全部时间代码合并后再求区间，地点按首次出现排序
	var venues []string
	byVenue := make(map[string][]Slot)
	for i, code := range course.Times {
		slots, err := ParseTimeCode(code)
		if err != nil {
			return nil, err
		}
		venue := course.Venues[i]
		if _, seen := byVenue[venue]; !seen {
			venues = append(venues, venue)
		}
		byVenue[venue] = append(byVenue[venue], slots...)
	}

	var out []CourseTimeslotData
	for _, venue := range venues {
		for _, r := range MergeRuns(byVenue[venue]) {
			out = append(out, CourseTimeslotData{
				Course:    course,
				Venue:     venue,
				DayOfWeek: r.Day,
				StartTime: r.Start,
				EndTime:   r.End,
			})
		}
	}
	return out, nil
}

func buildEntries(courses []MinimalCourse, colors ColorMap) ([]CourseTimeslotData, []CourseError) {
	var (
		entries []CourseTimeslotData
		failed  []CourseError
	)

	for _, course := range courses {
		ce, err := CourseEntries(course)
		if err != nil {
			failed = append(failed, CourseError{RawID: course.RawID, Err: err})
			continue
		}

		color, ok := colors[course.RawID]
		if !ok {
			color = DefaultColor
		}
		for _, e := range ce {
			e.Color = color.Background
			e.TextColor = color.Text
			e.order = len(entries)
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.Course.RawID != b.Course.RawID {
			return a.Course.RawID < b.Course.RawID
		}
		if a.Venue != b.Venue {
			return a.Venue < b.Venue
		}
		return a.order < b.order
	})
	return entries, failed
}
