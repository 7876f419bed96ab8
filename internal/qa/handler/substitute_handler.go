package handler

import (
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-gonic/gin"
)

// SubstituteHandler 대체 점검자 핸들러
type SubstituteHandler struct {
	svc *service.SubstituteService
}

// NewSubstituteHandler 대체 점검자 핸들러 생성
func NewSubstituteHandler(svc *service.SubstituteService) *SubstituteHandler {
	return &SubstituteHandler{svc: svc}
}

// Create POST /api/substitute/create
func (h *SubstituteHandler) Create(c *gin.Context) {
	var req service.CreateSubstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "substitute_user_id, system_id, start_date, end_date가 필요합니다")
		return
	}

	sub, err := h.svc.Create(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfSubstitute):
			BadRequest(c, "본인을 대체자로 지정할 수 없습니다")
		case errors.Is(err, service.ErrNotSystemOwner):
			Forbidden(c, "해당 시스템의 담당자가 아닙니다")
		case errors.Is(err, service.ErrInvalidDateRange):
			BadRequest(c, "기간이 올바르지 않습니다 (YYYY-MM-DD, 시작일 ≤ 종료일)")
		case errors.Is(err, service.ErrOverlappingPeriod):
			BadRequest(c, "해당 기간에 이미 대체 담당자가 지정되어 있습니다")
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "사용자 또는 시스템을 찾을 수 없습니다")
		default:
			InternalError(c, "대체 지정 생성에 실패했습니다: "+err.Error())
		}
		return
	}
	Created(c, sub)
}

// List GET /api/substitute/list
func (h *SubstituteHandler) List(c *gin.Context) {
	subs, err := h.svc.ListMine(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "대체 지정 목록 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": subs})
}

// Active GET /api/substitute/active
func (h *SubstituteHandler) Active(c *gin.Context) {
	subs, err := h.svc.ActiveForMe(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "활성 대체 지정 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": subs})
}

// Delete DELETE /api/substitute/:id
func (h *SubstituteHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "대체 지정을 찾을 수 없습니다")
		case errors.Is(err, service.ErrNotSubstituteOwner):
			Forbidden(c, "본인이 지정한 대체만 삭제할 수 있습니다")
		default:
			InternalError(c, "대체 지정 삭제에 실패했습니다: "+err.Error())
		}
		return
	}
	Success(c, gin.H{"message": "대체 지정이 삭제되었습니다"})
}
