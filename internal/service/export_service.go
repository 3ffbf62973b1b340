package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"nthumods/config"
	"nthumods/internal/timetable"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmpty        = errors.New("课表为空，无可导出内容")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	exportSheetName = "課表"
	icsProductID    = "-//nthumods//timetable//ZH"
	conflictFill    = "#FFC7CE"
)

var dayNames = [timetable.DaysInWeek]string{"週一", "週二", "週三", "週四", "週五", "週六", "週日"}

// icsWeekdays 与 dayNames 下标对齐
var icsWeekdays = [timetable.DaysInWeek]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel：节次为行、星期为列；独占的连续节次合并单元格并着课程颜色，
//     冲突节次不合并，同格列出全部课程并以冲突色标出
//   - ICS：每个课表条目生成一个按周重复的 VEVENT，重复次数为学期周数
//   - 隐藏课程不导出；导出内容与“我的课表”一致
type ExportService interface {
	// ExportExcel 导出课表为 Excel
	ExportExcel(ctx context.Context, userID, semester string) (*bytes.Buffer, string, error)
	// ExportICS 导出课表为 iCalendar
	ExportICS(ctx context.Context, userID, semester string) ([]byte, string, error)
}

type exportService struct {
	cfg       *config.TimetableConfig
	timetable TimetableService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.TimetableConfig, tt TimetableService, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, timetable: tt, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportExcel 导出课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（学期）
//   - 第 2 行：节次 | 时间 | 週一 … 週五（週六、週日有课时追加）
//   - 第 3 行起：每节次一行

func (s *exportService) ExportExcel(ctx context.Context, userID, semester string) (*bytes.Buffer, string, error) {
	tt, err := s.timetable.Build(ctx, userID, semester)
	if err != nil {
		return nil, "", err
	}
	if len(tt.Entries) == 0 {
		return nil, "", ErrExportEmpty
	}

	buf, err := renderExcel(tt)
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %w", ErrExportGenerateFail, err)
	}
	return buf, fmt.Sprintf("課表_%s.xlsx", tt.Semester), nil
}

func renderExcel(tt *Timetable) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	days := exportDays(tt.Entries)
	lastCol := 2 + len(days)

	// 样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	conflictStyle, err := f.NewStyle(cellStyle(conflictFill, "#9C0006"))
	if err != nil {
		return nil, err
	}

	// 列宽
	f.SetColWidth(exportSheetName, "A", "A", 6)
	f.SetColWidth(exportSheetName, "B", "B", 13)
	f.SetColWidth(exportSheetName, colName(2), colName(lastCol-1), 20)

	// 标题行
	f.SetCellValue(exportSheetName, "A1", fmt.Sprintf("%s 學期課表", tt.Semester))
	f.MergeCell(exportSheetName, "A1", cell(colName(lastCol-1), 1))
	f.SetCellStyle(exportSheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(exportSheetName, "A2", "節次")
	f.SetCellValue(exportSheetName, "B2", "時間")
	for i, d := range days {
		f.SetCellValue(exportSheetName, cell(colName(2+i), 2), dayNames[d])
	}
	f.SetCellStyle(exportSheetName, "A2", cell(colName(lastCol-1), 2), headerStyle)

	// 节次列
	for _, p := range timetable.Periods() {
		row := periodRow(p.Index)
		f.SetCellValue(exportSheetName, cell("A", row), p.Label())
		f.SetCellValue(exportSheetName, cell("B", row), p.Start+"-"+p.End)
		f.SetRowHeight(exportSheetName, row, 36)
	}

	dayCol := make(map[int]string, len(days))
	for i, d := range days {
		dayCol[d] = colName(2 + i)
	}

	// 课程单元格
	styles := make(map[string]int)
	conflictCells := make(map[string][]string)
	for _, e := range tt.Entries {
		col := dayCol[e.DayOfWeek]
		top := cell(col, periodRow(e.StartTime))
		text := entryLabel(e)

		if e.Fraction > 1 {
			for p := e.StartTime; p <= e.EndTime; p++ {
				c := cell(col, periodRow(p))
				conflictCells[c] = append(conflictCells[c], text)
			}
			continue
		}

		key := e.Color + "|" + e.TextColor
		style, ok := styles[key]
		if !ok {
			style, err = f.NewStyle(cellStyle(e.Color, e.TextColor))
			if err != nil {
				return nil, err
			}
			styles[key] = style
		}

		bottom := cell(col, periodRow(e.EndTime))
		f.SetCellValue(exportSheetName, top, text)
		if e.EndTime > e.StartTime {
			if err := f.MergeCell(exportSheetName, top, bottom); err != nil {
				return nil, err
			}
		}
		f.SetCellStyle(exportSheetName, top, bottom, style)
	}

	for c, texts := range conflictCells {
		f.SetCellValue(exportSheetName, c, strings.Join(texts, "\n"))
		f.SetCellStyle(exportSheetName, c, c, conflictStyle)
	}

	return f.WriteToBuffer()
}

// ═══════════════════════════════════════════════════════════
// ExportICS 导出课表为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个条目：
//   - DTSTART 为学期首周对应星期的起始节次时间
//   - DTEND 为结束节次的下课时间
//   - RRULE:FREQ=WEEKLY;COUNT=<学期周数>
//   - UID 由 (学期, raw_id, 星期, 节次, 地点) 派生，重复导出保持不变

func (s *exportService) ExportICS(ctx context.Context, userID, semester string) ([]byte, string, error) {
	tt, err := s.timetable.Build(ctx, userID, semester)
	if err != nil {
		return nil, "", err
	}
	if len(tt.Entries) == 0 {
		return nil, "", ErrExportEmpty
	}

	start, err := s.cfg.StartDate()
	if err != nil {
		s.logger.Error("学期起始日期无效", zap.Error(err))
		return nil, "", fmt.Errorf("%w: %w", ErrExportGenerateFail, err)
	}

	cal, err := renderICS(tt, start, s.cfg.SemesterWeeks, s.cfg.Timezone, time.Now())
	if err != nil {
		s.logger.Error("生成 ICS 失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %w", ErrExportGenerateFail, err)
	}
	return []byte(cal.Serialize()), fmt.Sprintf("課表_%s.ics", tt.Semester), nil
}

func renderICS(tt *Timetable, semesterStart time.Time, weeks int, timezone string, now time.Time) (*ics.Calendar, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(fmt.Sprintf("%s 學期課表", tt.Semester))
	cal.SetXWRTimezone(timezone)

	for _, e := range tt.Entries {
		first, ok := timetable.PeriodAt(e.StartTime)
		if !ok {
			return nil, fmt.Errorf("无效的起始节次 %d", e.StartTime)
		}
		last, ok := timetable.PeriodAt(e.EndTime)
		if !ok {
			return nil, fmt.Errorf("无效的结束节次 %d", e.EndTime)
		}

		day, count := firstMeeting(semesterStart, e.DayOfWeek, weeks)
		if count <= 0 {
			continue
		}
		dtStart, err := atClock(day, first.Start)
		if err != nil {
			return nil, err
		}
		dtEnd, err := atClock(day, last.End)
		if err != nil {
			return nil, err
		}

		ev := cal.AddEvent(eventUID(tt.Semester, e))
		ev.SetDtStampTime(now)
		ev.SetStartAt(dtStart)
		ev.SetEndAt(dtEnd)
		ev.SetSummary(e.Course.NameZH)
		ev.SetLocation(e.Venue)
		ev.SetDescription(eventDescription(e))
		ev.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d;BYDAY=%s", count, icsWeekdays[e.DayOfWeek]))
	}
	return cal, nil
}

// ── 辅助函数 ──

// exportDays 导出列：周一至周五固定，周末有课时追加
func exportDays(entries []timetable.CourseTimeslotDataWithFraction) []int {
	days := []int{timetable.Monday, timetable.Tuesday, timetable.Wednesday, timetable.Thursday, timetable.Friday}
	for _, d := range timetable.WeekdaysUsed(entries) {
		if d > timetable.Friday {
			days = append(days, d)
		}
	}
	return days
}

func cellStyle(background, text string) *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{Size: 10, Color: text},
		Fill: excelize.Fill{Type: "pattern", Color: []string{background}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "#D9D9D9", Style: 1},
			{Type: "right", Color: "#D9D9D9", Style: 1},
			{Type: "top", Color: "#D9D9D9", Style: 1},
			{Type: "bottom", Color: "#D9D9D9", Style: 1},
		},
	}
}

func entryLabel(e timetable.CourseTimeslotDataWithFraction) string {
	if e.Venue == "" {
		return e.Course.NameZH
	}
	return e.Course.NameZH + "\n" + e.Venue
}

func eventDescription(e timetable.CourseTimeslotDataWithFraction) string {
	parts := []string{e.Course.RawID}
	if len(e.Course.Teachers) > 0 {
		parts = append(parts, strings.Join(e.Course.Teachers, "、"))
	}
	parts = append(parts, strings.Join(e.TimeSlots, ""))
	return strings.Join(parts, " | ")
}

func eventUID(semester string, e timetable.CourseTimeslotDataWithFraction) string {
	key := fmt.Sprintf("%s/%s/%d/%d-%d/%s", semester, e.Course.RawID, e.DayOfWeek, e.StartTime, e.EndTime, e.Venue)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String() + "@nthumods"
}

// firstMeeting 某星期的首次上课日期与上课次数
//
// 学期从 start 所在周的周一起算 weeks 周；start 之前的星期从下周开始，
// 次数相应减一，保证最后一次上课不超出学期。
func firstMeeting(start time.Time, day, weeks int) (time.Time, int) {
	// time.Weekday: 0=Sunday；转为 0=周一
	startDay := (int(start.Weekday()) + 6) % 7
	monday := start.AddDate(0, 0, -startDay)
	if day >= startDay {
		return monday.AddDate(0, 0, day), weeks
	}
	return monday.AddDate(0, 0, day+7), weeks - 1
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的钟点 %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// periodRow 节次所在 Excel 行号（前两行为标题与表头）
func periodRow(index int) int { return index + 3 }

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
