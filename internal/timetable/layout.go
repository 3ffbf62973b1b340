package timetable

import "sort"

// ── 重叠分栏布局 ──────────────────────────────────────────
//
// 同一天内节次区间相交的条目归入同一重叠组（取传递闭包：A 与 B 相交、
// B 与 C 相交时 A/B/C 同组，即使 A、C 不直接相交）。
// Fraction 为组大小；FractionIndex 按 (地点, raw_id, 生成顺序) 升序分配。
// ─────────────────────────────────────────────────────────────

// LayoutDay 计算单日条目的分栏布局，返回顺序与输入一致
func LayoutDay(entries []CourseTimeslotData) []CourseTimeslotDataWithFraction {
	out := make([]CourseTimeslotDataWithFraction, len(entries))
	for i, e := range entries {
		out[i] = CourseTimeslotDataWithFraction{
			CourseTimeslotData: e,
			Fraction:           1,
			FractionIndex:      0,
			TimeSlots:          RunPeriodCodes(e.StartTime, e.EndTime),
		}
	}

	for _, group := range overlapGroups(entries) {
		sort.Slice(group, func(a, b int) bool {
			return columnLess(entries, group[a], group[b])
		})
		for col, idx := range group {
			out[idx].Fraction = len(group)
			out[idx].FractionIndex = col
		}
	}
	return out
}

// Layout 按星期分组后逐日计算布局，返回顺序与输入一致
func Layout(entries []CourseTimeslotData) []CourseTimeslotDataWithFraction {
	byDay := make(map[int][]int)
	for i, e := range entries {
		byDay[e.DayOfWeek] = append(byDay[e.DayOfWeek], i)
	}

	out := make([]CourseTimeslotDataWithFraction, len(entries))
	for _, idxs := range byDay {
		day := make([]CourseTimeslotData, len(idxs))
		for j, idx := range idxs {
			day[j] = entries[idx]
		}
		for j, laid := range LayoutDay(day) {
			out[idxs[j]] = laid
		}
	}
	return out
}

// overlapGroups 返回重叠连通分量（元素为 entries 下标）
//
// 按起始节次扫描：当前条目起点不超过组内最大终点时并入该组。
// 区间图上这与两两相交的传递闭包等价。
func overlapGroups(entries []CourseTimeslotData) [][]int {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, eb := entries[idx[a]], entries[idx[b]]
		if ea.DayOfWeek != eb.DayOfWeek {
			return ea.DayOfWeek < eb.DayOfWeek
		}
		return ea.StartTime < eb.StartTime
	})

	var groups [][]int
	var cur []int
	curDay, curEnd := -1, -1
	for _, i := range idx {
		e := entries[i]
		if len(cur) > 0 && e.DayOfWeek == curDay && e.StartTime <= curEnd {
			cur = append(cur, i)
			if e.EndTime > curEnd {
				curEnd = e.EndTime
			}
			continue
		}
		if len(cur) > 0 {
			groups = append(groups, cur)
		}
		cur = []int{i}
		curDay, curEnd = e.DayOfWeek, e.EndTime
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func columnLess(entries []CourseTimeslotData, i, j int) bool {
	a, b := entries[i], entries[j]
	if a.Venue != b.Venue {
		return a.Venue < b.Venue
	}
	if a.Course.RawID != b.Course.RawID {
		return a.Course.RawID < b.Course.RawID
	}
	if a.order != b.order {
		return a.order < b.order
	}
	return i < j
}
