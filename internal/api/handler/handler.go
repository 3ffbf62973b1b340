package handler

import "nthumods/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Timetable *TimetableHandler
	Course    *CourseHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Timetable: NewTimetableHandler(svc.Timetable),
		Course:    NewCourseHandler(svc.Course),
		Export:    NewExportHandler(svc.Export),
	}
}
