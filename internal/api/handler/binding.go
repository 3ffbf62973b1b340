package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"nthumods/internal/timetable"
	"nthumods/pkg/response"
)

// RegisterValidators 向 gin 默认校验器注册自定义规则
//
//	timecode: 合法的时间代码（可为空串）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验引擎不是 validator/v10")
	}
	return v.RegisterValidation("timecode", func(fl validator.FieldLevel) bool {
		return timetable.ValidateTimeCode(fl.Field().String()) == nil
	})
}

// bindJSON 绑定 JSON 请求体；失败时写入错误响应并返回 false
func bindJSON(c *gin.Context, obj any, code int) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.BadRequest(c, code, err.Error())
		return false
	}
	return true
}
