package dto

// CourseSearchRequest 课程搜索参数
type CourseSearchRequest struct {
	Semester   string `form:"semester" binding:"omitempty,numeric,len=5"`
	Keyword    string `form:"keyword" binding:"omitempty,max=100"`
	Department string `form:"department" binding:"omitempty,max=16"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CourseResponse 课程信息
type CourseResponse struct {
	RawID      string   `json:"raw_id"`
	Semester   string   `json:"semester"`
	NameZH     string   `json:"name_zh"`
	NameEN     string   `json:"name_en"`
	Department string   `json:"department"`
	Course     string   `json:"course"`
	Class      string   `json:"class"`
	Credits    int      `json:"credits"`
	Venues     []string `json:"venues"`
	Times      []string `json:"times"`
	Teachers   []string `json:"teachers"`
	Language   string   `json:"language"`
}

// CourseInput 课程导入条目
type CourseInput struct {
	RawID      string   `json:"raw_id" binding:"required,max=32"`
	Semester   string   `json:"semester" binding:"required,numeric,len=5"`
	NameZH     string   `json:"name_zh" binding:"max=200"`
	NameEN     string   `json:"name_en" binding:"max=200"`
	Department string   `json:"department" binding:"max=16"`
	Course     string   `json:"course" binding:"max=16"`
	Class      string   `json:"class" binding:"max=8"`
	Credits    int      `json:"credits" binding:"min=0,max=30"`
	Venues     []string `json:"venues" binding:"max=16"`
	Times      []string `json:"times" binding:"max=16,dive,timecode"`
	Teachers   []string `json:"teachers" binding:"max=16"`
	Language   string   `json:"language" binding:"omitempty,oneof=zh en"`
}

// ImportCoursesRequest 批量导入课程
type ImportCoursesRequest struct {
	Courses []CourseInput `json:"courses" binding:"required,min=1,max=5000,dive"`
}

// ImportCoursesResponse 导入结果
type ImportCoursesResponse struct {
	ImportedCount int `json:"imported_count"`
}
