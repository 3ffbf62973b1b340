package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *testRepos) {
	cfg := testTimetableConfig()
	tt, repos := setupTestTimetableService(cfg)
	return NewExportService(cfg, tt, zap.NewNop()), repos
}

// ── ExportExcel 测试 ──

func TestExportService_ExportExcel_Empty(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportExcel(context.Background(), "nobody", "11310")
	if !errors.Is(err, ErrExportEmpty) {
		t.Errorf("期望 ErrExportEmpty，实际: %v", err)
	}
}

func TestExportService_ExportExcel_Success(t *testing.T) {
	svc, repos := setupTestExportService()
	selectCourses(repos, "u1", "11310CS101", "11310CS102")

	buf, filename, err := svc.ExportExcel(context.Background(), "u1", "11310")
	if err != nil {
		t.Fatalf("ExportExcel 应成功: %v", err)
	}
	if filename != "課表_11310.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法读取生成的 Excel: %v", err)
	}
	defer f.Close()

	// 表头
	if v, _ := f.GetCellValue(exportSheetName, "C2"); v != "週一" {
		t.Errorf("C2 期望 週一，实际 %q", v)
	}
	// 周六无课时不追加列
	if v, _ := f.GetCellValue(exportSheetName, "H2"); v != "" {
		t.Errorf("H2 应为空，实际 %q", v)
	}
	// CS101：周一第 1-2 节 → C3:C4 合并
	if v, _ := f.GetCellValue(exportSheetName, "C3"); !strings.Contains(v, "計算機程式設計") {
		t.Errorf("C3 期望 計算機程式設計，实际 %q", v)
	}
	merged, err := f.GetMergeCells(exportSheetName)
	if err != nil {
		t.Fatalf("GetMergeCells 失败: %v", err)
	}
	found := false
	for _, m := range merged {
		if m.GetStartAxis() == "C3" && m.GetEndAxis() == "C4" {
			found = true
		}
	}
	if !found {
		t.Error("期望 C3:C4 合并")
	}
	// CS102：周二第 3-4 节 → D5
	if v, _ := f.GetCellValue(exportSheetName, "D5"); !strings.Contains(v, "資料結構") {
		t.Errorf("D5 期望 資料結構，实际 %q", v)
	}
}

func TestExportService_ExportExcel_Conflict(t *testing.T) {
	svc, repos := setupTestExportService()
	selectCourses(repos, "u1", "11310CS101", "11310CS103")

	buf, _, err := svc.ExportExcel(context.Background(), "u1", "11310")
	if err != nil {
		t.Fatalf("ExportExcel 应成功: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法读取生成的 Excel: %v", err)
	}
	defer f.Close()

	// 第 2 节两门课重叠
	v, _ := f.GetCellValue(exportSheetName, "C4")
	if !strings.Contains(v, "計算機程式設計") || !strings.Contains(v, "離散數學") {
		t.Errorf("冲突格应列出两门课，实际 %q", v)
	}
}

// ── ExportICS 测试 ──

func TestExportService_ExportICS_Success(t *testing.T) {
	svc, repos := setupTestExportService()
	selectCourses(repos, "u1", "11310CS101", "11310CS102")

	body, filename, err := svc.ExportICS(context.Background(), "u1", "11310")
	if err != nil {
		t.Fatalf("ExportICS 应成功: %v", err)
	}
	if filename != "課表_11310.ics" {
		t.Errorf("文件名错误: %s", filename)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("生成的 ICS 无法解析: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("期望 2 个事件，实际 %d", len(events))
	}

	for _, ev := range events {
		summary := ev.GetProperty(ics.ComponentPropertySummary)
		if summary == nil || summary.Value != "計算機程式設計" {
			continue
		}
		start, err := ev.GetStartAt()
		if err != nil {
			t.Fatalf("DTSTART 解析失败: %v", err)
		}
		// 2024-09-09 为周一，第 1 节 08:00
		want := time.Date(2024, 9, 9, 8, 0, 0, 0, time.UTC)
		if !start.Equal(want) {
			t.Errorf("DTSTART 期望 %v，实际 %v", want, start)
		}
		end, err := ev.GetEndAt()
		if err != nil {
			t.Fatalf("DTEND 解析失败: %v", err)
		}
		if end.Format("15:04") != "09:50" {
			t.Errorf("DTEND 期望 09:50，实际 %s", end.Format("15:04"))
		}
		rrule := ev.GetProperty(ics.ComponentPropertyRrule)
		if rrule == nil || !strings.Contains(rrule.Value, "COUNT=16") {
			t.Errorf("RRULE 应包含 COUNT=16，实际 %v", rrule)
		}
	}
}

func TestExportService_ExportICS_StableUID(t *testing.T) {
	svc, repos := setupTestExportService()
	selectCourses(repos, "u1", "11310CS101")

	first, _, err := svc.ExportICS(context.Background(), "u1", "11310")
	if err != nil {
		t.Fatalf("ExportICS 应成功: %v", err)
	}
	second, _, err := svc.ExportICS(context.Background(), "u1", "11310")
	if err != nil {
		t.Fatalf("ExportICS 应成功: %v", err)
	}

	uid := func(body []byte) string {
		cal, err := ics.ParseCalendar(strings.NewReader(string(body)))
		if err != nil {
			t.Fatalf("ICS 解析失败: %v", err)
		}
		return cal.Events()[0].Id()
	}
	if uid(first) != uid(second) {
		t.Error("重复导出 UID 应保持不变")
	}
}

func TestFirstMeeting(t *testing.T) {
	// 2024-09-11 为周三
	wed := time.Date(2024, 9, 11, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		day   int
		weeks int
		want  time.Time
		count int
	}{
		{"当天", 2, 16, time.Date(2024, 9, 11, 0, 0, 0, 0, time.UTC), 16},
		{"同周稍后", 4, 16, time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC), 16},
		{"起始日之前顺延", 0, 16, time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC), 15},
		{"仅一周无剩余", 0, 1, time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, count := firstMeeting(wed, tc.day, tc.weeks)
			if !got.Equal(tc.want) {
				t.Errorf("日期期望 %v，实际 %v", tc.want, got)
			}
			if count != tc.count {
				t.Errorf("次数期望 %d，实际 %d", tc.count, count)
			}
		})
	}
}

func TestExportService_ExportICS_MidweekStart(t *testing.T) {
	cfg := testTimetableConfig()
	cfg.SemesterStart = "2024-09-11"
	tt, repos := setupTestTimetableService(cfg)
	svc := NewExportService(cfg, tt, zap.NewNop())
	selectCourses(repos, "u1", "11310CS101")

	body, _, err := svc.ExportICS(context.Background(), "u1", "11310")
	if err != nil {
		t.Fatalf("ExportICS 应成功: %v", err)
	}
	cal, err := ics.ParseCalendar(strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("生成的 ICS 无法解析: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("期望 1 个事件，实际 %d", len(events))
	}

	start, err := events[0].GetStartAt()
	if err != nil {
		t.Fatalf("DTSTART 解析失败: %v", err)
	}
	// 周一的课从下周一开始，最后一次仍落在第 16 周
	want := time.Date(2024, 9, 16, 8, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("DTSTART 期望 %v，实际 %v", want, start)
	}
	rrule := events[0].GetProperty(ics.ComponentPropertyRrule)
	if rrule == nil || !strings.Contains(rrule.Value, "COUNT=15") {
		t.Errorf("RRULE 应包含 COUNT=15，实际 %v", rrule)
	}
}
