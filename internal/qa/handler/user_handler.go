package handler

import (
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-gonic/gin"
)

// UserHandler 사용자 핸들러
type UserHandler struct {
	svc       *service.UserService
	authSvc   *service.AuthService
	checklist *service.ChecklistService
}

// NewUserHandler 사용자 핸들러 생성
func NewUserHandler(svc *service.UserService, authSvc *service.AuthService, checklist *service.ChecklistService) *UserHandler {
	return &UserHandler{svc: svc, authSvc: authSvc, checklist: checklist}
}

// Me GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Unauthorized(c, "사용자를 찾을 수 없습니다")
			return
		}
		InternalError(c, "사용자 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, user)
}

// Systems GET /api/user/systems
func (h *UserHandler) Systems(c *gin.Context) {
	systems, err := h.checklist.GetUserSystems(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "담당 시스템 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": systems})
}

// Search GET /api/user/search?query=
func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		Success(c, gin.H{"items": []interface{}{}})
		return
	}
	users, err := h.svc.Search(c.Request.Context(), query)
	if err != nil {
		InternalError(c, "사용자 검색에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}
