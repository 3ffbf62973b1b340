package timetable

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color 课程的背景色与文字色
type Color struct {
	Background string `json:"background"`
	Text       string `json:"text"`
}

// ColorMap 课程 raw_id → 颜色
type ColorMap map[string]Color

const (
	textDark  = "#000000"
	textLight = "#ffffff"

	// WCAG 对比度下，黑白文字对比相等时的相对亮度
	luminanceThreshold = 0.179
)

// DefaultPalette 默认调色板
var DefaultPalette = []string{
	"#845EC2", "#D65DB1", "#FF6F91", "#FF9671", "#FFC75F",
	"#F9F871", "#2C73D2", "#0081CF", "#0089BA", "#008E9B",
	"#008F7A", "#4B4453", "#B0A8B9", "#C34A36", "#4E8397",
}

// DefaultColor 颜色表中缺失时使用
var DefaultColor = Color{Background: "#B0A8B9", Text: TextColorFor("#B0A8B9")}

// BuildColorMap 按出现顺序为课程分配调色板颜色
//
// 第 i 个不重复的 id 取 palette[i % len(palette)]；overrides 优先。
// 只为 courseIDs 中出现的 id 生成条目。
func BuildColorMap(courseIDs []string, palette []string, overrides map[string]string) ColorMap {
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	out := make(ColorMap, len(courseIDs))
	i := 0
	for _, id := range courseIDs {
		if _, seen := out[id]; seen {
			continue
		}
		bg := palette[i%len(palette)]
		if c, ok := overrides[id]; ok && strings.TrimSpace(c) != "" {
			bg = strings.TrimSpace(c)
		}
		out[id] = Color{Background: bg, Text: TextColorFor(bg)}
		i++
	}
	return out
}

// TextColorFor 根据背景色相对亮度选择黑色或白色文字
func TextColorFor(background string) string {
	c, err := colorful.Hex(normalizeHex(background))
	if err != nil {
		return textDark
	}
	if RelativeLuminance(c) > luminanceThreshold {
		return textDark
	}
	return textLight
}

// RelativeLuminance WCAG 2.x 相对亮度
func RelativeLuminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// IsValidColor 是否为可解析的十六进制颜色
func IsValidColor(s string) bool {
	_, err := colorful.Hex(normalizeHex(s))
	return err == nil
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return strings.ToLower(s)
}
