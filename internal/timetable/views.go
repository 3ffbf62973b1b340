package timetable

import "sort"

// Conflict 一组时间相交的不同课程
type Conflict struct {
	DayOfWeek int      `json:"day_of_week"`
	StartTime int      `json:"start_time"`
	EndTime   int      `json:"end_time"`
	CourseIDs []string `json:"course_ids"`
}

// DetectConflicts 找出时间冲突的课程组
//
// 同一门课在不同地点同时上课（如讲授与实验）不算冲突；
// 重叠组内至少有两门不同课程时才报告。
func DetectConflicts(entries []CourseTimeslotDataWithFraction) []Conflict {
	plain := make([]CourseTimeslotData, len(entries))
	for i, e := range entries {
		plain[i] = e.CourseTimeslotData
	}

	var out []Conflict
	for _, group := range overlapGroups(plain) {
		ids := make(map[string]struct{})
		c := Conflict{DayOfWeek: plain[group[0]].DayOfWeek, StartTime: plain[group[0]].StartTime, EndTime: plain[group[0]].EndTime}
		for _, idx := range group {
			e := plain[idx]
			ids[e.Course.RawID] = struct{}{}
			if e.StartTime < c.StartTime {
				c.StartTime = e.StartTime
			}
			if e.EndTime > c.EndTime {
				c.EndTime = e.EndTime
			}
		}
		if len(ids) < 2 {
			continue
		}
		for id := range ids {
			c.CourseIDs = append(c.CourseIDs, id)
		}
		sort.Strings(c.CourseIDs)
		out = append(out, c)
	}
	return out
}

// TotalCredits 学分合计，同一 raw_id 只计一次
func TotalCredits(courses []MinimalCourse) int {
	seen := make(map[string]bool, len(courses))
	total := 0
	for _, c := range courses {
		if seen[c.RawID] {
			continue
		}
		seen[c.RawID] = true
		total += c.Credits
	}
	return total
}

// WeekdaysUsed 有课的星期（升序）
func WeekdaysUsed(entries []CourseTimeslotDataWithFraction) []int {
	var used [DaysInWeek]bool
	for _, e := range entries {
		if e.DayOfWeek >= 0 && e.DayOfWeek < DaysInWeek {
			used[e.DayOfWeek] = true
		}
	}
	var out []int
	for d, ok := range used {
		if ok {
			out = append(out, d)
		}
	}
	return out
}

// PeriodRange 有课的最早与最晚节次；无课时返回 (-1, -1)
func PeriodRange(entries []CourseTimeslotDataWithFraction) (first, last int) {
	first, last = -1, -1
	for _, e := range entries {
		if first < 0 || e.StartTime < first {
			first = e.StartTime
		}
		if e.EndTime > last {
			last = e.EndTime
		}
	}
	return first, last
}
