package service

import (
	"context"

	"github.com/deul428/QA-checklist/internal/config"
	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/shared/mailer"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 서비스 집합
type Services struct {
	Auth       *AuthService
	User       *UserService
	Checklist  *ChecklistService
	Console    *ConsoleService
	Admin      *AdminService
	Substitute *SubstituteService
	Scheduler  *SchedulerService
}

// NewServices 서비스 집합 생성
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
		UseSSL:   cfg.SMTP.UseSSL,
		CC:       cfg.SMTP.CCList(),
	}, logger)

	// MinIO는 선택 사항: 엔드포인트가 없으면 내보내기 보관을 생략한다.
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO init failed, export archiving disabled", zap.Error(err))
			minioClient = nil
		}
	}

	checklistSvc := NewChecklistService(repos)
	schedulerSvc := NewSchedulerService(checklistSvc, repos, mail, cfg, logger)

	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg),
		User:       NewUserService(repos.User),
		Checklist:  checklistSvc,
		Console:    NewConsoleService(repos, minioClient, cfg.MinIO.Bucket, logger),
		Admin:      NewAdminService(repos),
		Substitute: NewSubstituteService(repos, mail, logger),
		Scheduler:  schedulerSvc,
	}
}

// UserService 사용자 서비스
type UserService struct {
	repo *repository.UserRepository
}

// NewUserService 사용자 서비스 생성
func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// ListAll 전체 사용자 목록
func (s *UserService) ListAll(ctx context.Context) ([]entity.User, error) {
	return s.repo.List(ctx)
}

// Search 사용자 검색 (이름/사번/부서 부분 일치)
func (s *UserService) Search(ctx context.Context, query string) ([]entity.User, error) {
	return s.repo.Search(ctx, query, 50)
}

// Helper functions
func generateID() string {
	return uuid.New().String()[:32]
}
