package handler

import (
	"errors"
	"net/url"

	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-gonic/gin"
)

// ConsoleHandler 콘솔(현황판) 핸들러
type ConsoleHandler struct {
	svc *service.ConsoleService
}

// NewConsoleHandler 콘솔 핸들러 생성
func NewConsoleHandler(svc *service.ConsoleService) *ConsoleHandler {
	return &ConsoleHandler{svc: svc}
}

// Stats GET /api/console/stats?environment=
func (h *ConsoleHandler) Stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context(), c.Query("environment"))
	if err != nil {
		InternalError(c, "통계 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, stats)
}

// FailItems GET /api/console/fail-items?environment=
func (h *ConsoleHandler) FailItems(c *gin.Context) {
	items, err := h.svc.GetFailItems(c.Request.Context(), c.Query("environment"))
	if err != nil {
		InternalError(c, "FAIL 항목 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// AllItems GET /api/console/all-items?environment=
func (h *ConsoleHandler) AllItems(c *gin.Context) {
	rows, err := h.svc.GetAllItems(c.Request.Context(), c.Query("environment"))
	if err != nil {
		InternalError(c, "전체 항목 조회에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"items": rows})
}

// ExportExcel POST /api/console/export-excel?environment=
func (h *ConsoleHandler) ExportExcel(c *gin.Context) {
	var req struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "start_date, end_date가 필요합니다")
		return
	}

	f, filename, err := h.svc.ExportExcel(c.Request.Context(), req.StartDate, req.EndDate, c.Query("environment"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			BadRequest(c, "기간이 올바르지 않습니다 (YYYY-MM-DD, 시작일 ≤ 종료일)")
			return
		}
		InternalError(c, "엑셀 생성에 실패했습니다: "+err.Error())
		return
	}
	defer f.Close()

	// 한글 파일명은 RFC 5987 형식으로 내려준다
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
