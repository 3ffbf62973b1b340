package model

// CourseSelection 用户选课表，对应 course_selections
//
// position 决定默认配色顺序；hidden 的课程保留但不进入课表。
type CourseSelection struct {
	SelectionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"selection_id"`
	UserID      string `gorm:"type:varchar(64);not null"                      json:"user_id"`
	Semester    string `gorm:"type:varchar(8);not null"                       json:"semester"`
	RawID       string `gorm:"type:varchar(32);not null"                      json:"raw_id"`
	Position    int    `gorm:"not null"                                       json:"position"`
	Hidden      bool   `gorm:"not null;default:false"                         json:"hidden"`
	BaseModel
}

// TableName 指定表名
func (CourseSelection) TableName() string { return "course_selections" }
