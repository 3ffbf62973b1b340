package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nthumods/internal/dto"
	"nthumods/internal/service"
	"nthumods/internal/timetable"
	"nthumods/pkg/response"
)

// TimetableHandler 课表模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// ListPeriods 节次目录
// GET /api/v1/periods
func (h *TimetableHandler) ListPeriods(c *gin.Context) {
	response.OK(c, h.svc.Periods())
}

// Build 按 raw_id 列表预览课表
// POST /api/v1/timetables/build
func (h *TimetableHandler) Build(c *gin.Context) {
	var req dto.BuildTimetableRequest
	if !bindJSON(c, &req, 16000) {
		return
	}

	resp, err := h.svc.Preview(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// ColorMap 计算颜色分配
// POST /api/v1/timetables/colors
func (h *TimetableHandler) ColorMap(c *gin.Context) {
	var req dto.ColorMapRequest
	if !bindJSON(c, &req, 16000) {
		return
	}

	resp, err := h.svc.ColorMap(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// GetMyTimetable 获取我的课表
// GET /api/v1/timetables/me?semester=
func (h *TimetableHandler) GetMyTimetable(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetMyTimetable(c.Request.Context(), userID, c.Query("semester"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// SetSelections 全量替换选课
// PUT /api/v1/timetables/me/selections
func (h *TimetableHandler) SetSelections(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetSelectionsRequest
	if !bindJSON(c, &req, 16000) {
		return
	}

	resp, err := h.svc.SetSelections(c.Request.Context(), userID, &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// SetHidden 隐藏 / 显示已选课程
// PUT /api/v1/timetables/me/selections/:raw_id/hidden
func (h *TimetableHandler) SetHidden(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetHiddenRequest
	if !bindJSON(c, &req, 16000) {
		return
	}

	if err := h.svc.SetHidden(c.Request.Context(), userID, c.Param("raw_id"), &req); err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, nil)
}

// UpdateColors 更新颜色偏好
// PUT /api/v1/timetables/me/colors
func (h *TimetableHandler) UpdateColors(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateColorsRequest
	if !bindJSON(c, &req, 16000) {
		return
	}

	resp, err := h.svc.UpdateColors(c.Request.Context(), userID, &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleTimetableError 统一课表模块错误映射
func handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timetable.ErrMalformedTimeCode):
		response.Unprocessable(c, 16001, "课程时间代码无效", err.Error())
	case errors.Is(err, timetable.ErrMismatchedVenueTimeLength):
		response.Unprocessable(c, 16002, "课程地点与时间数量不一致", err.Error())
	case errors.Is(err, service.ErrTimetableSelectionMissing):
		response.NotFound(c, 16003, "未选修该课程")
	case errors.Is(err, service.ErrTimetablePreferenceStale):
		response.Conflict(c, 16004, "颜色设置已被其他设备修改，请刷新后重试")
	case errors.Is(err, service.ErrTimetableUnknownCourses):
		response.ErrorWithDetails(c, http.StatusBadRequest, 16005, "课程不存在", err.Error())
	default:
		response.InternalError(c)
	}
}
