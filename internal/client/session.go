package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// sessionFile 세션 저장 파일 (사용자 설정 디렉터리 하위)
const sessionFile = "session.json"

// persistedSession 디스크에 저장되는 세션
type persistedSession struct {
	BaseURL     string `json:"base_url"`
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Session 로그인 상태 관리. 저장된 토큰을 복원해 검증하고,
// 검증에 실패하면 조용히 비로그인 상태로 내려간다.
type Session struct {
	client *Client
	dir    string

	ready bool
	user  *User
}

// NewSession 세션 생성. dir이 비어 있으면 사용자 설정 디렉터리를 쓴다.
func NewSession(client *Client, dir string) (*Session, error) {
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = filepath.Join(configDir, "qactl")
	}
	s := &Session{client: client, dir: dir}
	client.OnUnauthorized(func() {
		s.clear()
	})
	return s, nil
}

// Init 저장된 세션 복원. 토큰이 있으면 /api/user/me로 검증하고,
// 만료된 토큰은 버린다. 네트워크/검증 실패는 에러가 아니라
// 비로그인 상태로 처리한다.
func (s *Session) Init(ctx context.Context) {
	defer func() { s.ready = true }()

	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err != nil {
		return
	}
	var saved persistedSession
	if err := json.Unmarshal(data, &saved); err != nil || saved.AccessToken == "" {
		return
	}

	s.client.SetToken(saved.AccessToken)
	user, err := s.client.Me(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.clear()
		} else {
			s.client.SetToken("")
		}
		return
	}
	s.user = user
}

// Ready Init이 끝났는지 여부
func (s *Session) Ready() bool {
	return s.ready
}

// LoggedIn 로그인 여부
func (s *Session) LoggedIn() bool {
	return s.user != nil
}

// User 현재 사용자 (비로그인 시 nil)
func (s *Session) User() *User {
	return s.user
}

// Login 로그인 후 세션 저장
func (s *Session) Login(ctx context.Context, employeeID, password string) (*User, error) {
	result, err := s.client.Login(ctx, employeeID, password)
	if err != nil {
		return nil, err
	}
	s.user = &result.User

	if err := s.persist(result.AccessToken, result.User); err != nil {
		// 저장 실패는 로그인 자체를 막지 않는다
		return &result.User, nil
	}
	return &result.User, nil
}

// Logout 세션 제거
func (s *Session) Logout() {
	s.clear()
}

func (s *Session) persist(token string, user User) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(persistedSession{
		BaseURL:     s.client.baseURL,
		AccessToken: token,
		User:        user,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, sessionFile), data, 0o600)
}

func (s *Session) clear() {
	s.user = nil
	s.client.SetToken("")
	os.Remove(filepath.Join(s.dir, sessionFile))
}
