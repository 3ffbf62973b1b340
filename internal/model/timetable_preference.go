package model

import "gorm.io/datatypes"

// TimetablePreference 课表显示偏好，对应 timetable_preferences
type TimetablePreference struct {
	PreferenceID string                                `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"preference_id"`
	UserID       string                                `gorm:"type:varchar(64);not null"                      json:"user_id"`
	Semester     string                                `gorm:"type:varchar(8);not null"                       json:"semester"`
	Colors       datatypes.JSONType[map[string]string] `gorm:"type:jsonb;not null"                            json:"colors"`  // raw_id → 背景色
	Palette      datatypes.JSONType[[]string]          `gorm:"type:jsonb;not null"                            json:"palette"` // 为空时使用系统调色板
	Version      int                                   `gorm:"not null;default:1"                             json:"version"`
	BaseModel
}

// TableName 指定表名
func (TimetablePreference) TableName() string { return "timetable_preferences" }

// ColorOverrides 返回颜色覆盖（非 nil）
func (p *TimetablePreference) ColorOverrides() map[string]string {
	if p == nil {
		return map[string]string{}
	}
	m := p.Colors.Data()
	if m == nil {
		return map[string]string{}
	}
	return m
}

// PaletteOrNil 自定义调色板，未设置时返回 nil
func (p *TimetablePreference) PaletteOrNil() []string {
	if p == nil {
		return nil
	}
	return p.Palette.Data()
}
