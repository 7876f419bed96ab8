package handler

import (
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-gonic/gin"
)

// SchedulerHandler 스케줄러 핸들러
type SchedulerHandler struct {
	svc *service.SchedulerService
}

// NewSchedulerHandler 스케줄러 핸들러 생성
func NewSchedulerHandler(svc *service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{svc: svc}
}

// ScheduleTestEmail POST /api/scheduler/test-email
func (h *SchedulerHandler) ScheduleTestEmail(c *gin.Context) {
	var req struct {
		Hour   int `json:"hour"`
		Minute int `json:"minute"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "hour와 minute이 필요합니다")
		return
	}

	job, err := h.svc.ScheduleTestEmail(req.Hour, req.Minute)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTime) {
			BadRequest(c, "시각이 올바르지 않습니다 (0-23시, 0-59분)")
			return
		}
		InternalError(c, "테스트 메일 예약에 실패했습니다: "+err.Error())
		return
	}
	Created(c, job)
}

// SendTestEmailNow POST /api/scheduler/test-email-now
func (h *SchedulerHandler) SendTestEmailNow(c *gin.Context) {
	if err := h.svc.SendTestEmailNow(); err != nil {
		InternalError(c, "테스트 메일 발송에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "테스트 메일을 발송했습니다"})
}

// Status GET /api/scheduler/status
func (h *SchedulerHandler) Status(c *gin.Context) {
	Success(c, gin.H{"jobs": h.svc.Status()})
}

// CancelJob DELETE /api/scheduler/jobs/:id
func (h *SchedulerHandler) CancelJob(c *gin.Context) {
	if err := h.svc.CancelJob(c.Param("id")); err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			NotFound(c, "잡을 찾을 수 없습니다")
			return
		}
		InternalError(c, "잡 취소에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "잡이 취소되었습니다"})
}
