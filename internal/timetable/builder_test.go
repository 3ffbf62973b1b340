package timetable

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func course(id string, venues, times []string) MinimalCourse {
	return MinimalCourse{RawID: id, NameEN: "Course " + id, Credits: 3, Venues: venues, Times: times}
}

func TestBuildTimetable_Empty(t *testing.T) {
	out, failed := BuildTimetable(nil, nil)
	assert.Empty(t, out)
	assert.Empty(t, failed)
}

func TestBuildTimetable_SingleRun(t *testing.T) {
	out, failed := BuildTimetable([]MinimalCourse{
		course("11310CS100100", []string{"General Bldg 1"}, []string{"M12"}),
	}, nil)
	require.Empty(t, failed)
	require.Len(t, out, 1)

	e := out[0]
	assert.Equal(t, Monday, e.DayOfWeek)
	assert.Equal(t, 0, e.StartTime)
	assert.Equal(t, 1, e.EndTime)
	assert.Equal(t, "General Bldg 1", e.Venue)
	assert.Equal(t, 1, e.Fraction)
	assert.Equal(t, 0, e.FractionIndex)
	assert.Equal(t, DefaultColor.Background, e.Color)
}

func TestBuildTimetable_DifferentDaysNotMerged(t *testing.T) {
	out, failed := BuildTimetable([]MinimalCourse{
		course("A", []string{"R1"}, []string{"M1T1"}),
	}, nil)
	require.Empty(t, failed)
	require.Len(t, out, 2)
	assert.Equal(t, Monday, out[0].DayOfWeek)
	assert.Equal(t, Tuesday, out[1].DayOfWeek)
	assert.Equal(t, 0, out[0].StartTime)
	assert.Equal(t, 0, out[1].StartTime)
}

func TestBuildTimetable_TwoCoursesSameSlot(t *testing.T) {
	out, failed := BuildTimetable([]MinimalCourse{
		course("B", []string{"R1"}, []string{"M12"}),
		course("A", []string{"R1"}, []string{"M12"}),
	}, nil)
	require.Empty(t, failed)
	require.Len(t, out, 2)

	assert.Equal(t, "A", out[0].Course.RawID)
	assert.Equal(t, "B", out[1].Course.RawID)
	for i, e := range out {
		assert.Equal(t, 2, e.Fraction)
		assert.Equal(t, i, e.FractionIndex)
	}
}

func TestBuildTimetable_SameTimeTwoVenues(t *testing.T) {
	out, failed := BuildTimetable([]MinimalCourse{
		course("A", []string{"A", "B"}, []string{"M1", "M1"}),
	}, nil)
	require.Empty(t, failed)
	require.Len(t, out, 2)

	assert.Equal(t, "A", out[0].Venue)
	assert.Equal(t, "B", out[1].Venue)
	for i, e := range out {
		assert.Equal(t, Monday, e.DayOfWeek)
		assert.Equal(t, 0, e.StartTime)
		assert.Equal(t, 2, e.Fraction)
		assert.Equal(t, i, e.FractionIndex)
	}
}

func TestBuildTimetable_SameVenueTimesMerged(t *testing.T) {
	cases := []struct {
		name   string
		venues []string
		times  []string
		day    int
		start  int
		end    int
	}{
		{"相邻节次", []string{"R1", "R1"}, []string{"M1", "M2"}, Monday, 0, 1},
		{"重叠节次", []string{"R2", "R2"}, []string{"T12", "T2"}, Tuesday, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, failed := BuildTimetable([]MinimalCourse{course("A", tc.venues, tc.times)}, nil)
			require.Empty(t, failed)
			require.Len(t, out, 1)

			e := out[0]
			assert.Equal(t, tc.venues[0], e.Venue)
			assert.Equal(t, tc.day, e.DayOfWeek)
			assert.Equal(t, tc.start, e.StartTime)
			assert.Equal(t, tc.end, e.EndTime)
			assert.Equal(t, 1, e.Fraction)
			assert.Equal(t, 0, e.FractionIndex)
		})
	}
}

func TestCourseEntries_VenueFirstAppearanceOrder(t *testing.T) {
	entries, err := CourseEntries(course("A", []string{"R2", "R1", "R2"}, []string{"W1", "M1", "W2"}))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "R2", entries[0].Venue)
	assert.Equal(t, Wednesday, entries[0].DayOfWeek)
	assert.Equal(t, 0, entries[0].StartTime)
	assert.Equal(t, 1, entries[0].EndTime)
	assert.Equal(t, "R1", entries[1].Venue)
}

func TestBuildTimetable_MalformedCourseSkipped(t *testing.T) {
	out, failed := BuildTimetable([]MinimalCourse{
		course("BAD", []string{"R1"}, []string{"X9"}),
		course("OK", []string{"R2"}, []string{"W34"}),
	}, nil)

	require.Len(t, failed, 1)
	assert.Equal(t, "BAD", failed[0].RawID)
	assert.True(t, errors.Is(failed[0], ErrMalformedTimeCode))

	require.Len(t, out, 1)
	assert.Equal(t, "OK", out[0].Course.RawID)
}

func TestBuildTimetable_MismatchedLengths(t *testing.T) {
	out, failed := BuildTimetable([]MinimalCourse{
		course("BAD", []string{"R1", "R2"}, []string{"M1"}),
	}, nil)
	assert.Empty(t, out)
	require.Len(t, failed, 1)
	assert.True(t, errors.Is(failed[0], ErrMismatchedVenueTimeLength))
}

func TestBuildTimetableStrict_Fails(t *testing.T) {
	_, err := BuildTimetableStrict([]MinimalCourse{
		course("OK", []string{"R2"}, []string{"W34"}),
		course("BAD", []string{"R1"}, []string{"X9"}),
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedTimeCode))

	var ce CourseError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "BAD", ce.RawID)
}

func TestBuild_Policy(t *testing.T) {
	courses := []MinimalCourse{course("BAD", []string{"R1"}, []string{"X9"})}

	_, failed, err := Build(courses, nil, PolicySkip)
	assert.NoError(t, err)
	assert.Len(t, failed, 1)

	_, _, err = Build(courses, nil, PolicyFail)
	assert.Error(t, err)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, p)

	p, err = ParsePolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, PolicyFail, p)

	_, err = ParsePolicy("panic")
	assert.Error(t, err)
}

func TestBuildTimetable_ColorsApplied(t *testing.T) {
	courses := []MinimalCourse{
		course("A", []string{"R1"}, []string{"M1"}),
		course("B", []string{"R1"}, []string{"T1"}),
	}
	colors := BuildColorMap([]string{"A", "B"}, []string{"#000000", "#ffffff"}, nil)

	out, _ := BuildTimetable(courses, colors)
	require.Len(t, out, 2)
	assert.Equal(t, "#000000", out[0].Color)
	assert.Equal(t, textLight, out[0].TextColor)
	assert.Equal(t, "#ffffff", out[1].Color)
	assert.Equal(t, textDark, out[1].TextColor)
}

// ── 性质测试 ──

func sampleCourses() []MinimalCourse {
	return []MinimalCourse{
		course("11310CS100100", []string{"Delta 103"}, []string{"M12W5"}),
		course("11310CS230000", []string{"EECS 202", "EECS 326"}, []string{"T34", "R78"}),
		course("11310EE200100", []string{"Delta 103"}, []string{"M23R4n5"}),
		course("11310GE120200", []string{"General Bldg 1"}, []string{"W56F9ab"}),
		course("11310MATH1010", []string{"Math 1", "Math 2"}, []string{"M1", "M1"}),
		course("11310PE100000", []string{""}, []string{""}),
		course("11310PHYS1010", []string{"Phys 1", "Phys 1"}, []string{"T12", "T23"}),
	}
}

func TestBuildTimetable_Idempotent(t *testing.T) {
	colors := BuildColorMap([]string{"11310CS100100", "11310EE200100"}, nil, nil)
	first, f1 := BuildTimetable(sampleCourses(), colors)
	second, f2 := BuildTimetable(sampleCourses(), colors)
	assert.Equal(t, first, second)
	assert.Equal(t, f1, f2)
}

func TestBuildTimetable_RoundTripCoversTimeCodes(t *testing.T) {
	courses := sampleCourses()
	out, failed := BuildTimetable(courses, nil)
	require.Empty(t, failed)

	for _, c := range courses {
		want := make(map[string]map[Slot]bool)
		for i, code := range c.Times {
			slots, err := ParseTimeCode(code)
			require.NoError(t, err)
			if want[c.Venues[i]] == nil {
				want[c.Venues[i]] = make(map[Slot]bool)
			}
			for _, s := range slots {
				want[c.Venues[i]][s] = true
			}
		}

		for venue, slots := range want {
			got := make(map[Slot]bool)
			for _, e := range out {
				if e.Course.RawID != c.RawID || e.Venue != venue {
					continue
				}
				for p := e.StartTime; p <= e.EndTime; p++ {
					got[Slot{Day: e.DayOfWeek, Period: p}] = true
				}
			}
			assert.Equal(t, slots, got, fmt.Sprintf("%s @ %s", c.RawID, venue))
		}
	}
}

func TestBuildTimetable_RunsMaximal(t *testing.T) {
	out, _ := BuildTimetable(sampleCourses(), nil)

	for i := range out {
		for j := i + 1; j < len(out); j++ {
			a, b := out[i], out[j]
			if a.Course.RawID != b.Course.RawID || a.Venue != b.Venue || a.DayOfWeek != b.DayOfWeek {
				continue
			}
			// 同一课程同一地点的两段区间既不相交也不相邻
			assert.True(t, a.EndTime+1 < b.StartTime || b.EndTime+1 < a.StartTime,
				"%s @ %s: [%d,%d] 与 [%d,%d]", a.Course.RawID, a.Venue, a.StartTime, a.EndTime, b.StartTime, b.EndTime)
		}
	}
}

func TestBuildTimetable_NonOverlapInvariant(t *testing.T) {
	out, _ := BuildTimetable(sampleCourses(), nil)

	for i := range out {
		a := out[i]
		assert.GreaterOrEqual(t, a.Fraction, 1)
		assert.True(t, a.FractionIndex >= 0 && a.FractionIndex < a.Fraction)
		assert.LessOrEqual(t, a.StartTime, a.EndTime)

		for j := i + 1; j < len(out); j++ {
			b := out[j]
			if !a.overlaps(b.CourseTimeslotData) {
				continue
			}
			assert.Equal(t, a.Fraction, b.Fraction)
			assert.NotEqual(t, a.FractionIndex, b.FractionIndex)
		}
	}
}

func TestBuildTimetable_OutputSorted(t *testing.T) {
	out, _ := BuildTimetable(sampleCourses(), nil)
	for i := 1; i < len(out); i++ {
		a, b := out[i-1], out[i]
		if a.DayOfWeek != b.DayOfWeek {
			assert.Less(t, a.DayOfWeek, b.DayOfWeek)
			continue
		}
		if a.StartTime != b.StartTime {
			assert.Less(t, a.StartTime, b.StartTime)
			continue
		}
		assert.LessOrEqual(t, a.Course.RawID, b.Course.RawID)
	}
}
