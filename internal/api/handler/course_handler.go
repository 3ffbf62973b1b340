package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nthumods/internal/dto"
	"nthumods/internal/service"
	"nthumods/pkg/response"
)

// CourseHandler 课程目录 Handler
type CourseHandler struct {
	svc service.CourseService
}

// NewCourseHandler 创建 CourseHandler 实例
func NewCourseHandler(svc service.CourseService) *CourseHandler {
	return &CourseHandler{svc: svc}
}

// Search 搜索课程
// GET /api/v1/courses?keyword=&semester=&department=&page=&page_size=
func (h *CourseHandler) Search(c *gin.Context) {
	var req dto.CourseSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 17000, err.Error())
		return
	}

	list, total, err := h.svc.Search(c.Request.Context(), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	response.OKPage(c, list, total, page, pageSize)
}

// Get 获取课程详情
// GET /api/v1/courses/:raw_id
func (h *CourseHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("raw_id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, resp)
}

// Import 批量导入课程（管理员）
// PUT /api/v1/courses
func (h *CourseHandler) Import(c *gin.Context) {
	var req dto.ImportCoursesRequest
	if !bindJSON(c, &req, 17000) {
		return
	}

	resp, err := h.svc.Import(c.Request.Context(), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleCourseError 统一课程模块错误映射
func handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 17001, "课程不存在")
	case errors.Is(err, service.ErrCourseInvalid):
		response.Unprocessable(c, 17002, "课程数据无效", err.Error())
	case errors.Is(err, service.ErrCourseDuplicateRawID):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17003, "导入数据中 raw_id 重复", err.Error())
	default:
		response.InternalError(c)
	}
}
