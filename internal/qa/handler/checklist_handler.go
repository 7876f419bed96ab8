package handler

import (
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-gonic/gin"
)

// ChecklistHandler 일일 점검 핸들러
type ChecklistHandler struct {
	svc *service.ChecklistService
}

// NewChecklistHandler 일일 점검 핸들러 생성
func NewChecklistHandler(svc *service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{svc: svc}
}

// CheckItems GET /api/systems/:id/check-items?environment=
func (h *ChecklistHandler) CheckItems(c *gin.Context) {
	systemID := c.Param("id")
	environment := c.Query("environment")

	items, err := h.svc.GetCheckItems(c.Request.Context(), systemID, environment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "시스템을 찾을 수 없습니다")
			return
		}
		if errors.Is(err, service.ErrUnsupportedEnvironment) {
			BadRequest(c, "해당 시스템이 지원하지 않는 환경입니다")
			return
		}
		InternalError(c, "점검 항목 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// Today GET /api/checklist/today?environment=
func (h *ChecklistHandler) Today(c *gin.Context) {
	records, err := h.svc.GetTodayRecords(c.Request.Context(), GetUserID(c), c.Query("environment"))
	if err != nil {
		InternalError(c, "오늘의 점검 기록 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": records, "date": service.TodayKST()})
}

// Submit POST /api/checklist/submit
func (h *ChecklistHandler) Submit(c *gin.Context) {
	var req struct {
		Items []service.SubmitItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "제출 항목 형식이 올바르지 않습니다")
		return
	}
	if len(req.Items) == 0 {
		BadRequest(c, "제출할 항목이 없습니다")
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), GetUserID(c), req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailNotesRequired):
			BadRequest(c, "FAIL 항목에는 사유를 입력해야 합니다")
		case errors.Is(err, service.ErrUnsupportedEnvironment):
			BadRequest(c, "해당 시스템이 지원하지 않는 환경입니다")
		case errors.Is(err, service.ErrNotAssigned):
			Forbidden(c, "해당 시스템의 담당자가 아닙니다")
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "점검 항목을 찾을 수 없습니다")
		default:
			InternalError(c, "점검 결과 제출에 실패했습니다: "+err.Error())
		}
		return
	}
	Success(c, result)
}

// Unchecked GET /api/checklist/unchecked?environment=
func (h *ChecklistHandler) Unchecked(c *gin.Context) {
	items, err := h.svc.GetUncheckedItems(c.Request.Context(), GetUserID(c), c.Query("environment"))
	if err != nil {
		InternalError(c, "미점검 항목 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items, "date": service.TodayKST()})
}
