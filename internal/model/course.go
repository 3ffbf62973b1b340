package model

import (
	"github.com/lib/pq"

	"nthumods/internal/timetable"
)

// Course 课程目录表，对应 courses
//
// 数据由外部同步任务写入；venues 与 times 为平行数组。
type Course struct {
	RawID      string         `gorm:"type:varchar(32);primaryKey"    json:"raw_id"`
	Semester   string         `gorm:"type:varchar(8);not null;index" json:"semester"`
	NameZH     string         `gorm:"type:varchar(200);not null"     json:"name_zh"`
	NameEN     string         `gorm:"type:varchar(200);not null"     json:"name_en"`
	Department string         `gorm:"type:varchar(16);not null"      json:"department"`
	Course     string         `gorm:"type:varchar(16);not null"      json:"course"`
	Class      string         `gorm:"type:varchar(8);not null"       json:"class"`
	Credits    int            `gorm:"type:smallint;not null"         json:"credits"`
	Venues     pq.StringArray `gorm:"type:text[];not null"           json:"venues"`
	Times      pq.StringArray `gorm:"type:text[];not null"           json:"times"`
	Teachers   pq.StringArray `gorm:"type:text[];not null"           json:"teachers"`
	Language   string         `gorm:"type:varchar(8);not null"       json:"language"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// ToMinimal 转为课表构建输入
func (c *Course) ToMinimal() timetable.MinimalCourse {
	return timetable.MinimalCourse{
		RawID:      c.RawID,
		NameZH:     c.NameZH,
		NameEN:     c.NameEN,
		Department: c.Department,
		Course:     c.Course,
		Class:      c.Class,
		Credits:    c.Credits,
		Venues:     append([]string(nil), c.Venues...),
		Times:      append([]string(nil), c.Times...),
		Teachers:   append([]string(nil), c.Teachers...),
		Language:   c.Language,
	}
}
