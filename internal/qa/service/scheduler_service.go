package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deul428/QA-checklist/internal/config"
	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/shared/mailer"
	"go.uber.org/zap"
)

// 스케줄러 에러
var (
	ErrJobNotFound = errors.New("job not found")
	ErrInvalidTime = errors.New("invalid time")
)

// JobInfo 등록된 잡 정보
type JobInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NextRunTime string `json:"next_run_time"`
	Trigger     string `json:"trigger"`
}

// scheduledJob 내부 잡 상태
type scheduledJob struct {
	info      JobInfo
	nextRun   time.Time
	recurring bool
	stop      chan struct{}
}

// SchedulerService 미점검 알림 스케줄러. 잡은 프로세스 안에서만 살고
// 재시작 시 설정 기반의 정기 잡만 다시 등록된다.
type SchedulerService struct {
	checklist *ChecklistService
	repos     *repository.Repositories
	mail      *mailer.Mailer
	cfg       *config.Config
	logger    *zap.Logger

	mu   sync.Mutex
	jobs map[string]*scheduledJob
}

// NewSchedulerService 스케줄러 생성
func NewSchedulerService(checklist *ChecklistService, repos *repository.Repositories, mail *mailer.Mailer, cfg *config.Config, logger *zap.Logger) *SchedulerService {
	return &SchedulerService{
		checklist: checklist,
		repos:     repos,
		mail:      mail,
		cfg:       cfg,
		logger:    logger,
		jobs:      make(map[string]*scheduledJob),
	}
}

// Start 설정된 시각의 정기 미점검 알림 잡 등록
func (s *SchedulerService) Start() {
	times := []struct {
		id    string
		value string
	}{
		{"daily_check_1", s.cfg.Scheduler.CheckTime1},
		{"daily_check_2", s.cfg.Scheduler.CheckTime2},
	}
	for _, t := range times {
		hour, minute, err := parseClock(t.value)
		if err != nil {
			s.logger.Warn("Invalid scheduler time, job skipped",
				zap.String("job", t.id),
				zap.String("value", t.value))
			continue
		}
		name := fmt.Sprintf("미점검 알림 (%02d:%02d)", hour, minute)
		s.register(t.id, name, hour, minute, true, func(ctx context.Context) {
			s.sendUncheckedReminders(ctx)
		})
	}
}

// Stop 모든 잡 중지
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		close(job.stop)
		delete(s.jobs, id)
	}
}

// ScheduleTestEmail 테스트 메일을 다음 hour:minute에 1회 발송하는 잡 등록
func (s *SchedulerService) ScheduleTestEmail(hour, minute int) (*JobInfo, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, ErrInvalidTime
	}

	id := fmt.Sprintf("test_email_%02d%02d_%d", hour, minute, time.Now().UnixNano())
	name := fmt.Sprintf("테스트 메일 (%02d:%02d)", hour, minute)
	job := s.register(id, name, hour, minute, false, s.runTestEmailJob)
	info := job.info
	return &info, nil
}

// runTestEmailJob 예약된 테스트 메일 발송. 1회성 잡이라 돌려줄 곳이
// 없으므로 실패는 로그로 남긴다.
func (s *SchedulerService) runTestEmailJob(ctx context.Context) {
	if err := s.SendTestEmailNow(); err != nil {
		s.logger.Error("Failed to send scheduled test email", zap.Error(err))
	}
}

// SendTestEmailNow 테스트 메일 즉시 발송
func (s *SchedulerService) SendTestEmailNow() error {
	to := s.cfg.Scheduler.TestEmail
	if to == "" {
		return fmt.Errorf("scheduler test email not configured")
	}
	now := time.Now().In(kstLocation).Format("2006-01-02 15:04:05")
	body := fmt.Sprintf(`
<html>
<body style="font-family: 'Malgun Gothic', sans-serif;">
  <h3>스케줄러 테스트 메일</h3>
  <p>발송 시각: %s (KST)</p>
  <p>메일 발송 경로가 정상 동작하고 있습니다.</p>
</body>
</html>`, now)
	return s.mail.SendHTML([]string{to}, "[시스템 체크리스트] 스케줄러 테스트", body)
}

// Status 등록된 잡 목록 (다음 실행 시각순)
func (s *SchedulerService) Status() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]JobInfo, 0, len(s.jobs))
	for _, job := range s.jobs {
		infos = append(infos, job.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].NextRunTime < infos[j].NextRunTime
	})
	return infos
}

// CancelJob 잡 취소
func (s *SchedulerService) CancelJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	close(job.stop)
	delete(s.jobs, id)
	return nil
}

// register 잡 등록 후 실행 고루틴 기동
func (s *SchedulerService) register(id, name string, hour, minute int, recurring bool, run func(context.Context)) *scheduledJob {
	next := nextOccurrence(time.Now().In(kstLocation), hour, minute)
	trigger := "date"
	if recurring {
		trigger = fmt.Sprintf("cron[hour=%d, minute=%d]", hour, minute)
	}

	job := &scheduledJob{
		info: JobInfo{
			ID:          id,
			Name:        name,
			NextRunTime: next.Format(time.RFC3339),
			Trigger:     trigger,
		},
		nextRun:   next,
		recurring: recurring,
		stop:      make(chan struct{}),
	}

	s.mu.Lock()
	if old, ok := s.jobs[id]; ok {
		close(old.stop)
	}
	s.jobs[id] = job
	s.mu.Unlock()

	go s.runLoop(job, hour, minute, run)

	s.logger.Info("Scheduler job registered",
		zap.String("job", id),
		zap.String("next_run", job.info.NextRunTime),
		zap.Bool("recurring", recurring))
	return job
}

func (s *SchedulerService) runLoop(job *scheduledJob, hour, minute int, run func(context.Context)) {
	for {
		timer := time.NewTimer(time.Until(job.nextRun))
		select {
		case <-job.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Scheduler job panicked",
						zap.String("job", job.info.ID),
						zap.Any("panic", r))
				}
			}()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			run(ctx)
		}()

		if !job.recurring {
			s.mu.Lock()
			delete(s.jobs, job.info.ID)
			s.mu.Unlock()
			return
		}

		job.nextRun = nextOccurrence(time.Now().In(kstLocation), hour, minute)
		s.mu.Lock()
		job.info.NextRunTime = job.nextRun.Format(time.RFC3339)
		s.mu.Unlock()
	}
}

// sendUncheckedReminders 미점검 항목이 있는 담당자에게 알림 메일 발송
func (s *SchedulerService) sendUncheckedReminders(ctx context.Context) {
	users, err := s.repos.User.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list users for reminders", zap.Error(err))
		return
	}

	sent := 0
	for i := range users {
		user := users[i]
		if user.Email == "" {
			continue
		}
		unchecked, err := s.checklist.uncheckedForUsers(ctx, []string{user.ID}, "")
		if err != nil {
			s.logger.Error("Failed to compute unchecked items",
				zap.String("user_id", user.ID),
				zap.Error(err))
			continue
		}
		if len(unchecked) == 0 {
			continue
		}

		subject := fmt.Sprintf("[시스템 체크리스트] 미점검 항목 %d건 안내", len(unchecked))
		if err := s.mail.SendHTML([]string{user.Email}, subject, reminderBody(user.Name, unchecked)); err != nil {
			s.logger.Warn("Failed to send reminder",
				zap.String("user_id", user.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("Unchecked reminders sent", zap.Int("count", sent))
}

// reminderBody 미점검 알림 메일 본문
func reminderBody(name string, items []UncheckedItem) string {
	var rows strings.Builder
	for _, item := range items {
		rows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			item.SystemName, entity.EnvironmentName(item.Environment), item.CheckItemName))
	}
	return fmt.Sprintf(`
<html>
<body style="font-family: 'Malgun Gothic', sans-serif;">
  <h3>미점검 항목 안내</h3>
  <p>%s님, 오늘(%s) 아직 점검되지 않은 항목이 %d건 있습니다.</p>
  <table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
    <tr style="background: #f0f0f0;"><th>시스템</th><th>환경</th><th>점검 항목</th></tr>
    %s
  </table>
  <p>체크리스트 화면에서 점검을 완료해 주세요.</p>
</body>
</html>`, name, TodayKST(), len(items), rows.String())
}

// parseClock "HH:MM" 파싱
func parseClock(value string) (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d:%d", &hour, &minute); err != nil {
		return 0, 0, ErrInvalidTime
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTime
	}
	return hour, minute, nil
}

// nextOccurrence now 이후의 가장 가까운 hour:minute (KST)
func nextOccurrence(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
