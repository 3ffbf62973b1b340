package timetable

import "sort"

// MergeRuns 将 (星期, 节次) 列表合并为每天的最大连续区间
//
// 同一天内节次按目录下标升序、去重；下一个下标不等于前一个 +1 时断开。
// 结果按星期、起始节次排序。
func MergeRuns(slots []Slot) []Run {
	if len(slots) == 0 {
		return nil
	}

	byDay := make(map[int][]int)
	for _, s := range slots {
		byDay[s.Day] = append(byDay[s.Day], s.Period)
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	var runs []Run
	for _, d := range days {
		periods := byDay[d]
		sort.Ints(periods)

		cur := Run{Day: d, Start: periods[0], End: periods[0]}
		for _, p := range periods[1:] {
			switch {
			case p == cur.End:
				// 重复节次
			case p == cur.End+1:
				cur.End = p
			default:
				runs = append(runs, cur)
				cur = Run{Day: d, Start: p, End: p}
			}
		}
		runs = append(runs, cur)
	}
	return runs
}

// RunPeriodCodes 区间覆盖的节次代码；end < start 时返回 nil
func RunPeriodCodes(start, end int) []string {
	if end < start {
		return nil
	}
	codes := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		if p, ok := PeriodAt(i); ok {
			codes = append(codes, p.Label())
		}
	}
	return codes
}
