package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/deul428/QA-checklist/internal/config"
	"github.com/deul428/QA-checklist/internal/shared/mailer"
)

func newTestScheduler(cfg *config.Config) *SchedulerService {
	mail := mailer.New(mailer.Config{}, zap.NewNop())
	return NewSchedulerService(nil, nil, mail, cfg, zap.NewNop())
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		value   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"09:00", 9, 0, false},
		{"23:59", 23, 59, false},
		{" 12:30 ", 12, 30, false},
		{"24:00", 0, 0, true},
		{"09:60", 0, 0, true},
		{"abc", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tc := range cases {
		hour, minute, err := parseClock(tc.value)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseClock(%q): expected error", tc.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q): unexpected error %v", tc.value, err)
			continue
		}
		if hour != tc.hour || minute != tc.minute {
			t.Errorf("parseClock(%q) = %d:%d, want %d:%d", tc.value, hour, minute, tc.hour, tc.minute)
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, kstLocation)

	// 아직 오지 않은 시각은 오늘
	next := nextOccurrence(now, 12, 0)
	if next.Day() != 2 || next.Hour() != 12 {
		t.Fatalf("Expected today 12:00, got %v", next)
	}

	// 지난 시각은 내일
	next = nextOccurrence(now, 9, 0)
	if next.Day() != 3 || next.Hour() != 9 {
		t.Fatalf("Expected tomorrow 09:00, got %v", next)
	}

	// 정확히 같은 시각도 내일
	next = nextOccurrence(now, 10, 30)
	if next.Day() != 3 {
		t.Fatalf("Expected exact match to roll to tomorrow, got %v", next)
	}
}

func TestScheduleTestEmailValidation(t *testing.T) {
	s := newTestScheduler(&config.Config{})

	if _, err := s.ScheduleTestEmail(24, 0); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("Expected ErrInvalidTime for hour 24, got %v", err)
	}
	if _, err := s.ScheduleTestEmail(0, 60); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("Expected ErrInvalidTime for minute 60, got %v", err)
	}
}

func TestScheduleAndCancelJob(t *testing.T) {
	s := newTestScheduler(&config.Config{})
	defer s.Stop()

	job, err := s.ScheduleTestEmail(23, 59)
	if err != nil {
		t.Fatalf("ScheduleTestEmail: %v", err)
	}
	if job.Trigger != "date" {
		t.Fatalf("Expected one-off trigger 'date', got %q", job.Trigger)
	}
	if job.NextRunTime == "" {
		t.Fatalf("Expected next run time")
	}

	jobs := s.Status()
	if len(jobs) != 1 || jobs[0].ID != job.ID {
		t.Fatalf("Expected scheduled job in status, got %v", jobs)
	}

	if err := s.CancelJob(job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	if err := s.CancelJob(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("Expected ErrJobNotFound on second cancel, got %v", err)
	}
	if len(s.Status()) != 0 {
		t.Fatalf("Expected empty status after cancel")
	}
}

func TestStartRegistersDailyJobs(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.CheckTime1 = "09:00"
	cfg.Scheduler.CheckTime2 = "12:00"

	s := newTestScheduler(cfg)
	defer s.Stop()
	s.Start()

	jobs := s.Status()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 daily jobs, got %d", len(jobs))
	}
	for _, job := range jobs {
		if !strings.HasPrefix(job.Trigger, "cron[") {
			t.Errorf("Expected cron trigger, got %q", job.Trigger)
		}
	}

	s.Stop()
	if len(s.Status()) != 0 {
		t.Fatalf("Expected no jobs after Stop")
	}
}

func TestTestEmailJobLogsSendFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)
	mail := mailer.New(mailer.Config{}, zap.NewNop())

	// 수신자 미설정이라 SendTestEmailNow는 실패한다
	s := NewSchedulerService(nil, nil, mail, &config.Config{}, logger)
	s.runTestEmailJob(context.Background())

	entries := logs.FilterMessage("Failed to send scheduled test email").All()
	if len(entries) != 1 {
		t.Fatalf("Expected send failure to be logged, got %d entries", len(entries))
	}
}

func TestStartSkipsInvalidTimes(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.CheckTime1 = "not-a-time"
	cfg.Scheduler.CheckTime2 = "14:00"

	s := newTestScheduler(cfg)
	defer s.Stop()
	s.Start()

	jobs := s.Status()
	if len(jobs) != 1 {
		t.Fatalf("Expected invalid time to be skipped, got %d jobs", len(jobs))
	}
	if jobs[0].ID != "daily_check_2" {
		t.Fatalf("Expected daily_check_2 to survive, got %s", jobs[0].ID)
	}
}
