package timetable

// ── 节次目录 ──────────────────────────────────────────────
//
// 学校固定 13 个节次，按一天中的先后排列。"n" 为午间节次，
// 顺序上位于第 4 节与第 5 节之间；连续性判断一律使用此处的下标，
// 不使用钟点时间。
// ─────────────────────────────────────────────────────────────

// Period 单个节次
type Period struct {
	Code  byte   `json:"code"`
	Index int    `json:"index"`
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`   // HH:MM
}

// Label 节次代码的字符串形式
func (p Period) Label() string { return string(p.Code) }

var periodCatalog = [...]Period{
	{Code: '1', Index: 0, Start: "08:00", End: "08:50"},
	{Code: '2', Index: 1, Start: "09:00", End: "09:50"},
	{Code: '3', Index: 2, Start: "10:10", End: "11:00"},
	{Code: '4', Index: 3, Start: "11:10", End: "12:00"},
	{Code: 'n', Index: 4, Start: "12:10", End: "13:00"},
	{Code: '5', Index: 5, Start: "13:20", End: "14:10"},
	{Code: '6', Index: 6, Start: "14:20", End: "15:10"},
	{Code: '7', Index: 7, Start: "15:30", End: "16:20"},
	{Code: '8', Index: 8, Start: "16:30", End: "17:20"},
	{Code: '9', Index: 9, Start: "17:30", End: "18:20"},
	{Code: 'a', Index: 10, Start: "18:30", End: "19:20"},
	{Code: 'b', Index: 11, Start: "19:30", End: "20:20"},
	{Code: 'c', Index: 12, Start: "20:30", End: "21:20"},
}

// PeriodCount 节次总数
const PeriodCount = len(periodCatalog)

var periodByCode = func() map[byte]Period {
	m := make(map[byte]Period, PeriodCount)
	for _, p := range periodCatalog {
		m[p.Code] = p
	}
	return m
}()

// Periods 返回节次目录副本（按顺序）
func Periods() []Period {
	out := make([]Period, PeriodCount)
	copy(out, periodCatalog[:])
	return out
}

// LookupPeriod 按节次代码查找
func LookupPeriod(code byte) (Period, bool) {
	p, ok := periodByCode[code]
	return p, ok
}

// PeriodAt 按下标查找
func PeriodAt(index int) (Period, bool) {
	if index < 0 || index >= PeriodCount {
		return Period{}, false
	}
	return periodCatalog[index], true
}

// ── 星期 ──

// 星期取值 0=周一 … 6=周日
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek 一周天数
const DaysInWeek = 7

var dayByLetter = map[byte]int{
	'M': Monday,
	'T': Tuesday,
	'W': Wednesday,
	'R': Thursday,
	'F': Friday,
	'S': Saturday,
}

var dayLetters = [DaysInWeek]string{"M", "T", "W", "R", "F", "S", ""}

// DayLetter 返回星期对应的字母，周日无字母
func DayLetter(day int) string {
	if day < 0 || day >= DaysInWeek {
		return ""
	}
	return dayLetters[day]
}
