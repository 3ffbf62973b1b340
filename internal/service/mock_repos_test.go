package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"nthumods/internal/model"
	"nthumods/internal/repository"
	pkgerrors "nthumods/pkg/errors"
	"nthumods/pkg/redis"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	upserts int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) add(c model.Course) {
	m.courses[c.RawID] = &c
}

func (m *mockCourseRepo) GetByRawID(_ context.Context, rawID string) (*model.Course, error) {
	if c, ok := m.courses[rawID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByRawIDs(_ context.Context, rawIDs []string) ([]model.Course, error) {
	var result []model.Course
	for _, id := range rawIDs {
		if c, ok := m.courses[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) Search(_ context.Context, filter repository.CourseSearchFilter) ([]model.Course, int64, error) {
	var matched []model.Course
	for _, c := range m.courses {
		if filter.Semester != "" && c.Semester != filter.Semester {
			continue
		}
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(c.RawID+c.NameZH+c.NameEN, filter.Keyword) {
			continue
		}
		matched = append(matched, *c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].RawID < matched[j].RawID })

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

func (m *mockCourseRepo) Upsert(_ context.Context, courses []model.Course) error {
	m.upserts++
	for _, c := range courses {
		m.add(c)
	}
	return nil
}

// ── Mock SelectionRepository ──

type mockSelectionRepo struct {
	// key: userID|semester
	selections map[string][]model.CourseSelection
}

func newMockSelectionRepo() *mockSelectionRepo {
	return &mockSelectionRepo{selections: make(map[string][]model.CourseSelection)}
}

func selectionKey(userID, semester string) string { return userID + "|" + semester }

func (m *mockSelectionRepo) ListByUserAndSemester(_ context.Context, userID, semester string) ([]model.CourseSelection, error) {
	result := append([]model.CourseSelection(nil), m.selections[selectionKey(userID, semester)]...)
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (m *mockSelectionRepo) Replace(_ context.Context, userID, semester string, selections []model.CourseSelection) error {
	m.selections[selectionKey(userID, semester)] = append([]model.CourseSelection(nil), selections...)
	return nil
}

func (m *mockSelectionRepo) SetHidden(_ context.Context, userID, semester, rawID string, hidden bool) error {
	list := m.selections[selectionKey(userID, semester)]
	for i := range list {
		if list[i].RawID == rawID {
			list[i].Hidden = hidden
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock PreferenceRepository ──

type mockPreferenceRepo struct {
	prefs map[string]*model.TimetablePreference
	// racedCreate 为 true 时 Get 读不到已有记录，模拟并发请求先完成了新建
	racedCreate bool
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{prefs: make(map[string]*model.TimetablePreference)}
}

func (m *mockPreferenceRepo) Get(_ context.Context, userID, semester string) (*model.TimetablePreference, error) {
	p, ok := m.prefs[selectionKey(userID, semester)]
	if !ok || m.racedCreate {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockPreferenceRepo) Save(_ context.Context, pref *model.TimetablePreference) error {
	key := selectionKey(pref.UserID, pref.Semester)
	if pref.Version == 0 {
		if _, exists := m.prefs[key]; exists {
			return pkgerrors.ErrOptimisticLock
		}
		pref.Version = 1
		cp := *pref
		m.prefs[key] = &cp
		return nil
	}
	existing, ok := m.prefs[key]
	if !ok || existing.Version != pref.Version {
		return pkgerrors.ErrOptimisticLock
	}
	pref.Version++
	cp := *pref
	m.prefs[key] = &cp
	return nil
}

// ── Mock TimetableCache ──

type mockCache struct {
	entries     map[string][]byte
	sets        int
	invalidated int
	catalogBump int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) GetTimetable(_ context.Context, userID, semester string) ([]byte, error) {
	b, ok := m.entries[selectionKey(userID, semester)]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return b, nil
}

func (m *mockCache) SetTimetable(_ context.Context, userID, semester string, payload []byte, _ time.Duration) error {
	m.sets++
	m.entries[selectionKey(userID, semester)] = payload
	return nil
}

func (m *mockCache) InvalidateTimetable(_ context.Context, userID, semester string) error {
	m.invalidated++
	delete(m.entries, selectionKey(userID, semester))
	return nil
}

func (m *mockCache) InvalidateCatalog(_ context.Context) error {
	m.catalogBump++
	m.entries = make(map[string][]byte)
	return nil
}

// ── 测试辅助 ──

type testRepos struct {
	course     *mockCourseRepo
	selection  *mockSelectionRepo
	preference *mockPreferenceRepo
	cache      *mockCache
}

func newTestRepos() *testRepos {
	return &testRepos{
		course:     newMockCourseRepo(),
		selection:  newMockSelectionRepo(),
		preference: newMockPreferenceRepo(),
		cache:      newMockCache(),
	}
}

func (r *testRepos) repository() *repository.Repository {
	return &repository.Repository{
		Course:     r.course,
		Selection:  r.selection,
		Preference: r.preference,
	}
}

func seedCourse(rawID, name string, credits int, venues, times []string) model.Course {
	return model.Course{
		RawID:      rawID,
		Semester:   "11310",
		NameZH:     name,
		NameEN:     name,
		Department: "CS",
		Credits:    credits,
		Venues:     venues,
		Times:      times,
		Teachers:   []string{"王老師"},
		Language:   "zh",
	}
}
