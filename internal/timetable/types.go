package timetable

// MinimalCourse 课表构建所需的最小课程信息
//
// Venues 与 Times 为平行数组：Times[i] 描述在 Venues[i] 上课的时间代码。
type MinimalCourse struct {
	RawID      string   `json:"raw_id"`
	NameZH     string   `json:"name_zh"`
	NameEN     string   `json:"name_en"`
	Department string   `json:"department"`
	Course     string   `json:"course"`
	Class      string   `json:"class"`
	Credits    int      `json:"credits"`
	Venues     []string `json:"venues"`
	Times      []string `json:"times"`
	Teachers   []string `json:"teachers"`
	Language   string   `json:"language"`
}

// Slot 时间代码解码后的一个 (星期, 节次) 对
type Slot struct {
	Day    int
	Period int
}

// Run 同一天内连续的节次区间 [Start, End]
type Run struct {
	Day   int
	Start int
	End   int
}

// CourseTimeslotData 一门课在某天某地点的一段连续节次
type CourseTimeslotData struct {
	Course    MinimalCourse `json:"course"`
	Venue     string        `json:"venue"`
	DayOfWeek int           `json:"day_of_week"`
	StartTime int           `json:"start_time"`
	EndTime   int           `json:"end_time"`
	Color     string        `json:"color"`
	TextColor string        `json:"text_color"`

	// order 为生成顺序，作为排序与列位置的最终决胜键
	order int
}

// CourseTimeslotDataWithFraction 附带横向分栏布局的课表条目
type CourseTimeslotDataWithFraction struct {
	CourseTimeslotData
	Fraction      int      `json:"fraction"`
	FractionIndex int      `json:"fraction_index"`
	TimeSlots     []string `json:"time_slots"`
}

// overlaps 判断两段节次区间是否相交
func (d CourseTimeslotData) overlaps(o CourseTimeslotData) bool {
	return d.DayOfWeek == o.DayOfWeek && d.StartTime <= o.EndTime && o.StartTime <= d.EndTime
}
