package timetable

import (
	"iter"
	"strings"
)

// ── 时间代码解析 ──────────────────────────────────────────
//
// 格式：星期字母后跟若干节次代码，例如 "M12" 表示周一第 1、2 节，
// "M1T34" 表示周一第 1 节与周二第 3、4 节。
// 出现未知字符时直接报错，不跳过。
// ─────────────────────────────────────────────────────────────

// Slots 惰性地逐个产出时间代码中的 (星期, 节次)
//
// 遇到错误时产出一次非 nil error 后结束。可重复遍历。
func Slots(code string) iter.Seq2[Slot, error] {
	return func(yield func(Slot, error) bool) {
		s := strings.TrimSpace(code)
		day := -1
		dayAt := 0
		periods := 0

		for i := 0; i < len(s); i++ {
			ch := s[i]

			if d, ok := dayByLetter[ch]; ok {
				if day >= 0 && periods == 0 {
					yield(Slot{}, malformed(code, s[dayAt:i+1], "星期后缺少节次"))
					return
				}
				day, dayAt, periods = d, i, 0
				continue
			}

			if ch >= 'A' && ch <= 'Z' {
				yield(Slot{}, malformed(code, s[i:i+1], "无效的星期字母"))
				return
			}

			p, ok := LookupPeriod(ch)
			if !ok {
				yield(Slot{}, malformed(code, s[i:i+1], "无效的节次代码"))
				return
			}
			if day < 0 {
				yield(Slot{}, malformed(code, s[:i+1], "节次前缺少星期字母"))
				return
			}

			periods++
			if !yield(Slot{Day: day, Period: p.Index}, nil) {
				return
			}
		}

		if day >= 0 && periods == 0 {
			yield(Slot{}, malformed(code, s[dayAt:], "星期后缺少节次"))
		}
	}
}

// ParseTimeCode 解析完整时间代码；空代码返回空结果
func ParseTimeCode(code string) ([]Slot, error) {
	var out []Slot
	for slot, err := range Slots(code) {
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, nil
}

// ValidateTimeCode 仅校验格式
func ValidateTimeCode(code string) error {
	_, err := ParseTimeCode(code)
	return err
}

// FormatRun 将连续区间还原为时间代码，如 Run{0,0,1} → "M12"
func FormatRun(r Run) string {
	var b strings.Builder
	b.WriteString(DayLetter(r.Day))
	for i := r.Start; i <= r.End; i++ {
		if p, ok := PeriodAt(i); ok {
			b.WriteByte(p.Code)
		}
	}
	return b.String()
}

func malformed(code, offending, reason string) error {
	return &MalformedTimeCodeError{Code: code, Offending: offending, Reason: reason}
}
