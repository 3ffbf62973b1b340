package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nthumods/internal/service"
	"nthumods/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportExcel 导出我的课表为 Excel
// GET /api/v1/timetables/me/export.xlsx?semester=
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportExcel(c.Request.Context(), userID, c.Query("semester"))
	if err != nil {
		handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, contentTypeXLSX, filename, buf.Bytes())
}

// ExportICS 导出我的课表为 iCalendar
// GET /api/v1/timetables/me/export.ics?semester=
func (h *ExportHandler) ExportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	body, filename, err := h.exportSvc.ExportICS(c.Request.Context(), userID, c.Query("semester"))
	if err != nil {
		handleExportError(c, err)
		return
	}
	response.Attachment(c, contentTypeICS, filename, body)
}

func handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportEmpty):
		response.NotFound(c, 18001, "课表为空，无可导出内容")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 18002, "生成导出文件失败")
	default:
		// 构建阶段的错误沿用课表模块映射
		handleTimetableError(c, err)
	}
}
