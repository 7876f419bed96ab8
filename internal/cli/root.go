// Package cli qactl 명령 정의. 서버 API는 internal/client를 통해
// 호출하고, 화면 상태(편집 버퍼, 필터/정렬, 담당자 트리)는
// internal/client 하위 패키지를 그대로 쓴다.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/deul428/QA-checklist/internal/client"
)

const defaultServerURL = "http://localhost:8000"

// App 전역 플래그와 공유 클라이언트/세션
type App struct {
	ServerURL string
	ConfigDir string
	JSON      bool

	client  *client.Client
	session *client.Session
}

// NewRootCmd 루트 명령 생성
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "qactl",
		Short:         "시스템 체크리스트 터미널 클라이언트",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd.Context())
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("QA_SERVER_URL", defaultServerURL), "서버 주소")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("QA_CONFIG_DIR", ""), "세션 저장 디렉터리 (기본: 사용자 설정 디렉터리)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "JSON 형식으로 출력")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newMeCmd(app))
	cmd.AddCommand(newPasswdCmd(app))
	cmd.AddCommand(newSystemsCmd(app))
	cmd.AddCommand(newChecklistCmd(app))
	cmd.AddCommand(newConsoleCmd(app))
	cmd.AddCommand(newAdminCmd(app))
	cmd.AddCommand(newSubstituteCmd(app))
	cmd.AddCommand(newSchedulerCmd(app))
	cmd.AddCommand(newUsersCmd(app))

	return cmd
}

// setup 클라이언트 생성 + 저장된 세션 복원
func (a *App) setup(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	a.client = client.New(a.ServerURL)
	session, err := client.NewSession(a.client, a.ConfigDir)
	if err != nil {
		return err
	}
	a.session = session
	a.session.Init(ctx)
	return nil
}

// requireLogin 로그인 상태 확인
func (a *App) requireLogin() error {
	if !a.session.LoggedIn() {
		return errors.New("로그인이 필요합니다: qactl login --employee-id <사번>")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
