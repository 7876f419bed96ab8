package handler

import (
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-gonic/gin"
)

// AdminListHandler 관리 화면(점검 항목/배정) 핸들러
type AdminListHandler struct {
	svc *service.AdminService
}

// NewAdminListHandler 관리 핸들러 생성
func NewAdminListHandler(svc *service.AdminService) *AdminListHandler {
	return &AdminListHandler{svc: svc}
}

// Systems GET /api/list/systems
func (h *AdminListHandler) Systems(c *gin.Context) {
	systems, err := h.svc.ListSystems(c.Request.Context())
	if err != nil {
		InternalError(c, "시스템 목록 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": systems})
}

// Users GET /api/list/users
func (h *AdminListHandler) Users(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		InternalError(c, "사용자 목록 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}

// CheckItems GET /api/list/check-items?system_id=
func (h *AdminListHandler) CheckItems(c *gin.Context) {
	items, err := h.svc.ListCheckItems(c.Request.Context(), c.Query("system_id"))
	if err != nil {
		InternalError(c, "점검 항목 목록 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateCheckItem POST /api/list/check-items
func (h *AdminListHandler) CreateCheckItem(c *gin.Context) {
	var req service.CreateCheckItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "system_id와 check_item이 필요합니다")
		return
	}

	item, err := h.svc.CreateCheckItem(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateCheckItem):
			BadRequest(c, "같은 이름의 점검 항목이 이미 있습니다")
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "시스템을 찾을 수 없습니다")
		default:
			InternalError(c, "점검 항목 생성에 실패했습니다: "+err.Error())
		}
		return
	}
	Created(c, item)
}

// UpdateCheckItem PUT /api/list/check-items/:id
func (h *AdminListHandler) UpdateCheckItem(c *gin.Context) {
	var req service.UpdateCheckItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "요청 형식이 올바르지 않습니다")
		return
	}

	item, err := h.svc.UpdateCheckItem(c.Request.Context(), GetUserID(c), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateCheckItem):
			BadRequest(c, "같은 이름의 점검 항목이 이미 있습니다")
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "점검 항목을 찾을 수 없습니다")
		default:
			InternalError(c, "점검 항목 수정에 실패했습니다: "+err.Error())
		}
		return
	}
	Success(c, item)
}

// DeleteCheckItem DELETE /api/list/check-items/:id
func (h *AdminListHandler) DeleteCheckItem(c *gin.Context) {
	err := h.svc.DeleteCheckItem(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "점검 항목을 찾을 수 없습니다")
			return
		}
		InternalError(c, "점검 항목 삭제에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "점검 항목이 삭제되었습니다"})
}

// Assignments GET /api/list/assignments?system_id=&environment=
func (h *AdminListHandler) Assignments(c *gin.Context) {
	assignments, err := h.svc.ListAssignments(c.Request.Context(), c.Query("system_id"), c.Query("environment"))
	if err != nil {
		InternalError(c, "배정 목록 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": assignments})
}

// CreateAssignments POST /api/list/assignments
func (h *AdminListHandler) CreateAssignments(c *gin.Context) {
	var req service.CreateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "user_ids, system_id, check_item_id, environment가 필요합니다")
		return
	}
	if len(req.UserIDs) == 0 {
		BadRequest(c, "배정할 사용자를 선택해 주세요")
		return
	}

	result, err := h.svc.CreateAssignments(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedEnvironment):
			BadRequest(c, "해당 시스템이 지원하지 않는 환경입니다")
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "시스템 또는 점검 항목을 찾을 수 없습니다")
		default:
			InternalError(c, "배정 생성에 실패했습니다: "+err.Error())
		}
		return
	}
	Created(c, result)
}

// DeleteAssignment DELETE /api/list/assignments/:id
func (h *AdminListHandler) DeleteAssignment(c *gin.Context) {
	err := h.svc.DeleteAssignment(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "배정을 찾을 수 없습니다")
			return
		}
		InternalError(c, "배정 삭제에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "배정이 삭제되었습니다"})
}
