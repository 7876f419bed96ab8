package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/shared/mailer"
	"go.uber.org/zap"
)

// 대체 지정 에러
var (
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrOverlappingPeriod  = errors.New("overlapping substitute period")
	ErrSelfSubstitute     = errors.New("cannot substitute yourself")
	ErrNotSubstituteOwner = errors.New("not the owner of this substitute")
	ErrNotSystemOwner     = errors.New("not assigned to this system")
)

// SubstituteService 대체 점검자 서비스
type SubstituteService struct {
	repos  *repository.Repositories
	mail   *mailer.Mailer
	logger *zap.Logger
}

// NewSubstituteService 대체 점검자 서비스 생성
func NewSubstituteService(repos *repository.Repositories, mail *mailer.Mailer, logger *zap.Logger) *SubstituteService {
	return &SubstituteService{repos: repos, mail: mail, logger: logger}
}

// CreateSubstituteRequest 대체 지정 생성 요청
type CreateSubstituteRequest struct {
	SubstituteUserID string `json:"substitute_user_id" binding:"required"`
	SystemID         string `json:"system_id" binding:"required"`
	StartDate        string `json:"start_date" binding:"required"`
	EndDate          string `json:"end_date" binding:"required"`
	Reason           string `json:"reason"`
}

// Create 대체 지정 생성 (시스템 단위). 지정자가 그 시스템의 담당자인지,
// 기간이 올바른지, 같은 (원 담당자, 대체자, 시스템) 조합에 겹치는
// 지정이 없는지 검사하고 대체자에게 안내 메일을 보낸다.
func (s *SubstituteService) Create(ctx context.Context, userID string, req CreateSubstituteRequest) (*entity.SubstituteAssignment, error) {
	if req.SubstituteUserID == userID {
		return nil, ErrSelfSubstitute
	}

	owned, err := s.repos.Assignment.FindByUserAndSystem(ctx, userID, req.SystemID, "")
	if err != nil {
		return nil, err
	}
	if len(owned) == 0 {
		return nil, ErrNotSystemOwner
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	originalUser, err := s.repos.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	substituteUser, err := s.repos.User.FindByID(ctx, req.SubstituteUserID)
	if err != nil {
		return nil, err
	}
	system, err := s.repos.System.FindByID(ctx, req.SystemID)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.repos.Substitute.FindOverlapping(ctx, userID, req.SubstituteUserID, req.SystemID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrOverlappingPeriod
	}

	sub := &entity.SubstituteAssignment{
		ID:               generateID(),
		OriginalUserID:   userID,
		SubstituteUserID: req.SubstituteUserID,
		SystemID:         req.SystemID,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Reason:           req.Reason,
	}
	if err := s.repos.Substitute.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create substitute: %w", err)
	}

	s.writeChangeLog(ctx, sub.ID, "CREATE", userID,
		fmt.Sprintf("%s → %s / %s (%s ~ %s)", originalUser.Name, substituteUser.Name, system.Name, req.StartDate, req.EndDate))

	s.notifySubstitute(originalUser, substituteUser, system, sub)

	return sub, nil
}

// ListMine 내가 지정한 대체 목록
func (s *SubstituteService) ListMine(ctx context.Context, userID string) ([]entity.SubstituteAssignment, error) {
	return s.repos.Substitute.FindByOriginalUser(ctx, userID)
}

// ActiveForMe 오늘 내가 대체자로 활성인 지정 목록
func (s *SubstituteService) ActiveForMe(ctx context.Context, userID string) ([]entity.SubstituteAssignment, error) {
	return s.repos.Substitute.FindActiveForSubstitute(ctx, userID, TodayKST())
}

// Delete 대체 지정 삭제. 지정한 본인만 삭제할 수 있다.
func (s *SubstituteService) Delete(ctx context.Context, userID, substituteID string) error {
	sub, err := s.repos.Substitute.FindByID(ctx, substituteID)
	if err != nil {
		return err
	}
	if sub.OriginalUserID != userID {
		return ErrNotSubstituteOwner
	}

	if err := s.repos.Substitute.Delete(ctx, substituteID); err != nil {
		return fmt.Errorf("delete substitute: %w", err)
	}

	s.writeChangeLog(ctx, substituteID, "DELETE", userID,
		fmt.Sprintf("%s ~ %s", sub.StartDate, sub.EndDate))
	return nil
}

// notifySubstitute 대체자에게 안내 메일 발송 (실패해도 지정은 유지)
func (s *SubstituteService) notifySubstitute(original, substitute *entity.User, system *entity.System, sub *entity.SubstituteAssignment) {
	if substitute.Email == "" {
		return
	}

	subject := fmt.Sprintf("[시스템 체크리스트] 대체 점검자 지정 안내 (%s ~ %s)", sub.StartDate, sub.EndDate)
	body := fmt.Sprintf(`
<html>
<body style="font-family: 'Malgun Gothic', sans-serif;">
  <h3>대체 점검자 지정 안내</h3>
  <p>%s님, 안녕하세요.</p>
  <p><b>%s</b>님이 아래 기간 동안 귀하를 대체 점검자로 지정했습니다.</p>
  <table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
    <tr><td><b>시스템</b></td><td>%s</td></tr>
    <tr><td><b>기간</b></td><td>%s ~ %s</td></tr>
    <tr><td><b>사유</b></td><td>%s</td></tr>
  </table>
  <p>해당 기간 동안 체크리스트 화면에서 %s 시스템의 %s님 담당 항목이 함께 표시됩니다.</p>
</body>
</html>`,
		substitute.Name, original.Name, system.Name, sub.StartDate, sub.EndDate, sub.Reason, system.Name, original.Name)

	if err := s.mail.SendHTML([]string{substitute.Email}, subject, body); err != nil {
		s.logger.Warn("Failed to send substitute notification",
			zap.String("substitute_id", sub.ID),
			zap.Error(err))
	}
}

func (s *SubstituteService) writeChangeLog(ctx context.Context, substituteID, action, changedBy, detail string) {
	log := &entity.SubstituteChangeLog{
		ID:           generateID(),
		SubstituteID: substituteID,
		Action:       action,
		Detail:       detail,
		ChangedBy:    changedBy,
	}
	_ = s.repos.Substitute.CreateChangeLog(ctx, log)
}
