package handler

import (
	"github.com/deul428/QA-checklist/internal/config"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-gonic/gin"
)

// Handlers 핸들러 집합
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Checklist  *ChecklistHandler
	Console    *ConsoleHandler
	AdminList  *AdminListHandler
	Substitute *SubstituteHandler
	Scheduler  *SchedulerHandler
}

// NewHandlers 핸들러 집합 생성
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User, svc.Auth, svc.Checklist),
		Checklist:  NewChecklistHandler(svc.Checklist),
		Console:    NewConsoleHandler(svc.Console),
		AdminList:  NewAdminListHandler(svc.Admin),
		Substitute: NewSubstituteHandler(svc.Substitute),
		Scheduler:  NewSchedulerHandler(svc.Scheduler),
	}
}

// Response 공통 응답 구조
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 성공 응답
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 생성 성공 응답
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 에러 응답
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 요청 파라미터 에러 응답
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 미인증 응답
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 접근 금지 응답
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 리소스 없음 응답
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 서버 에러 응답
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID 컨텍스트에서 사용자 ID 조회
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}
