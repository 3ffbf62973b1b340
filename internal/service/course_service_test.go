package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"nthumods/internal/dto"
	"nthumods/internal/timetable"
)

// ── 测试辅助 ──

func setupTestCourseService() (CourseService, *mockCourseRepo) {
	repos := newTestRepos()
	repos.course.add(seedCourse("11310CS101", "計算機程式設計", 3, []string{"資電館 326"}, []string{"M1M2"}))
	repos.course.add(seedCourse("11310CS102", "資料結構", 3, []string{"台達館 105"}, []string{"T3T4"}))
	repos.course.add(seedCourse("11310EE201", "電路學", 3, []string{"台達館 105"}, []string{"W5W6"}))
	svc := NewCourseService(repos.repository(), nil, zap.NewNop())
	return svc, repos.course
}

func courseInput(rawID string, venues, times []string) dto.CourseInput {
	return dto.CourseInput{
		RawID:    rawID,
		Semester: "11310",
		NameZH:   "測試課程",
		Credits:  2,
		Venues:   venues,
		Times:    times,
	}
}

// ── Search 测试 ──

func TestCourseService_Search_Paginates(t *testing.T) {
	svc, _ := setupTestCourseService()

	list, total, err := svc.Search(context.Background(), &dto.CourseSearchRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if total != 3 {
		t.Errorf("期望 total=3，实际 %d", total)
	}
	if len(list) != 1 || list[0].RawID != "11310EE201" {
		t.Errorf("第 2 页期望 [11310EE201]，实际 %+v", list)
	}
}

func TestCourseService_Search_Keyword(t *testing.T) {
	svc, _ := setupTestCourseService()

	list, total, err := svc.Search(context.Background(), &dto.CourseSearchRequest{Keyword: " 資料 "})
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if total != 1 || list[0].RawID != "11310CS102" {
		t.Errorf("关键字搜索结果错误: %+v", list)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, defaultCoursePageSize},
		{3, 500, 3, maxCoursePageSize},
		{2, 10, 2, 10},
	}
	for _, c := range cases {
		p, s := normalizePage(c.page, c.size)
		if p != c.wantPage || s != c.wantSize {
			t.Errorf("normalizePage(%d,%d) = (%d,%d)，期望 (%d,%d)", c.page, c.size, p, s, c.wantPage, c.wantSize)
		}
	}
}

// ── Get 测试 ──

func TestCourseService_Get(t *testing.T) {
	svc, _ := setupTestCourseService()

	resp, err := svc.Get(context.Background(), "11310CS101")
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if resp.NameZH != "計算機程式設計" || len(resp.Times) != 1 {
		t.Errorf("课程信息错误: %+v", resp)
	}

	_, err = svc.Get(context.Background(), "NOPE")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── Import 测试 ──

func TestCourseService_Import_Success(t *testing.T) {
	svc, repo := setupTestCourseService()

	resp, err := svc.Import(context.Background(), &dto.ImportCoursesRequest{
		Courses: []dto.CourseInput{
			courseInput("11310MA101", []string{"綜二 101", "綜二 102"}, []string{"M3M4", "R5"}),
			courseInput("11310CS101", []string{"資電館 127"}, []string{"F1F2"}),
			courseInput("11310PE101", nil, nil),
		},
	})
	if err != nil {
		t.Fatalf("Import 应成功: %v", err)
	}
	if resp.ImportedCount != 3 {
		t.Errorf("期望导入 3 门，实际 %d", resp.ImportedCount)
	}
	if got := repo.courses["11310CS101"].Venues[0]; got != "資電館 127" {
		t.Errorf("已存在课程应被覆盖，实际地点 %s", got)
	}
	if repo.courses["11310PE101"].Times == nil {
		t.Error("空 times 应保存为空数组而非 nil")
	}
}

func TestCourseService_Import_InvalidatesTimetableCache(t *testing.T) {
	repos := newTestRepos()
	cache := newMockCache()
	svc := NewCourseService(repos.repository(), cache, zap.NewNop())
	_ = cache.SetTimetable(context.Background(), "u1", "11310", []byte(`{}`), 0)

	_, err := svc.Import(context.Background(), &dto.ImportCoursesRequest{
		Courses: []dto.CourseInput{courseInput("11310CS101", []string{"資電館 127"}, []string{"F1F2"})},
	})
	if err != nil {
		t.Fatalf("Import 应成功: %v", err)
	}
	if cache.catalogBump != 1 {
		t.Errorf("导入后应使课表缓存失效一次，实际 %d", cache.catalogBump)
	}
	if _, err := cache.GetTimetable(context.Background(), "u1", "11310"); err == nil {
		t.Error("导入后旧课表缓存不应再命中")
	}
}

func TestCourseService_Import_InvalidDoesNotTouchCache(t *testing.T) {
	repos := newTestRepos()
	cache := newMockCache()
	svc := NewCourseService(repos.repository(), cache, zap.NewNop())

	_, err := svc.Import(context.Background(), &dto.ImportCoursesRequest{
		Courses: []dto.CourseInput{courseInput("11310BAD", []string{"R1"}, []string{"X9"})},
	})
	if !errors.Is(err, ErrCourseInvalid) {
		t.Fatalf("期望 ErrCourseInvalid，实际 %v", err)
	}
	if cache.catalogBump != 0 {
		t.Errorf("导入失败不应使缓存失效，实际 %d", cache.catalogBump)
	}
}

func TestCourseService_Import_Mismatch(t *testing.T) {
	svc, repo := setupTestCourseService()

	_, err := svc.Import(context.Background(), &dto.ImportCoursesRequest{
		Courses: []dto.CourseInput{
			courseInput("11310MA101", []string{"綜二 101"}, []string{"M3M4", "R5"}),
		},
	})
	if !errors.Is(err, ErrCourseInvalid) {
		t.Fatalf("期望 ErrCourseInvalid，实际: %v", err)
	}
	if !errors.Is(err, timetable.ErrMismatchedVenueTimeLength) {
		t.Errorf("错误链应包含 ErrMismatchedVenueTimeLength，实际: %v", err)
	}
	if repo.upserts != 0 {
		t.Error("校验失败时不应写入")
	}
}

func TestCourseService_Import_MalformedTimeCode(t *testing.T) {
	svc, _ := setupTestCourseService()

	_, err := svc.Import(context.Background(), &dto.ImportCoursesRequest{
		Courses: []dto.CourseInput{
			courseInput("11310MA101", []string{"綜二 101"}, []string{"M3X"}),
		},
	})
	if !errors.Is(err, timetable.ErrMalformedTimeCode) {
		t.Errorf("期望 ErrMalformedTimeCode，实际: %v", err)
	}
}

func TestCourseService_Import_Duplicate(t *testing.T) {
	svc, _ := setupTestCourseService()

	_, err := svc.Import(context.Background(), &dto.ImportCoursesRequest{
		Courses: []dto.CourseInput{
			courseInput("11310MA101", nil, nil),
			courseInput("11310MA101", nil, nil),
		},
	})
	if !errors.Is(err, ErrCourseDuplicateRawID) {
		t.Errorf("期望 ErrCourseDuplicateRawID，实际: %v", err)
	}
}
