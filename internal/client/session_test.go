package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSessionServer 로그인과 내 정보 조회만 지원하는 가짜 서버
func newSessionServer(validToken string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			r.ParseForm()
			if r.PostForm.Get("password") != "password123" {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"code":40100,"message":"사번 또는 비밀번호가 올바르지 않습니다"}`)
				return
			}
			fmt.Fprintf(w, `{"code":0,"message":"success","data":{
				"access_token":%q,"refresh_token":"r","token_type":"bearer","expires_in":3600,
				"user":{"id":"u1","employee_id":"1001","name":"김점검"}}}`, validToken)
		case "/api/user/me":
			if r.Header.Get("Authorization") != "Bearer "+validToken {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"code":40100,"message":"unauthorized"}`)
				return
			}
			fmt.Fprint(w, `{"code":0,"message":"success","data":{"id":"u1","employee_id":"1001","name":"김점검"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":40400,"message":"not found"}`)
		}
	}))
}

func TestSessionLoginPersistsAndRestores(t *testing.T) {
	ts := newSessionServer("tok-valid")
	defer ts.Close()
	dir := t.TempDir()

	session, err := NewSession(New(ts.URL), dir)
	require.NoError(t, err)
	session.Init(context.Background())
	assert.True(t, session.Ready())
	assert.False(t, session.LoggedIn())

	user, err := session.Login(context.Background(), "1001", "password123")
	require.NoError(t, err)
	assert.Equal(t, "김점검", user.Name)
	assert.True(t, session.LoggedIn())

	// 세션 파일이 저장된다
	_, err = os.Stat(filepath.Join(dir, sessionFile))
	require.NoError(t, err)

	// 새 프로세스처럼 복원해도 로그인 상태다
	restored, err := NewSession(New(ts.URL), dir)
	require.NoError(t, err)
	restored.Init(context.Background())
	assert.True(t, restored.LoggedIn())
	assert.Equal(t, "u1", restored.User().ID)
}

func TestSessionInitDropsExpiredToken(t *testing.T) {
	ts := newSessionServer("tok-valid")
	defer ts.Close()
	dir := t.TempDir()

	// 만료된(서버가 거부하는) 토큰이 저장된 상태
	data := []byte(`{"base_url":"` + ts.URL + `","access_token":"tok-expired","user":{"id":"u1"}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, sessionFile), data, 0o600))

	session, err := NewSession(New(ts.URL), dir)
	require.NoError(t, err)
	session.Init(context.Background())

	assert.True(t, session.Ready())
	assert.False(t, session.LoggedIn(), "만료 토큰은 비로그인으로 내려간다")

	// 무효 세션 파일은 제거된다
	_, statErr := os.Stat(filepath.Join(dir, sessionFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSessionLoginFailure(t *testing.T) {
	ts := newSessionServer("tok-valid")
	defer ts.Close()

	session, err := NewSession(New(ts.URL), t.TempDir())
	require.NoError(t, err)

	_, err = session.Login(context.Background(), "1001", "wrong")
	require.Error(t, err)
	assert.False(t, session.LoggedIn())
}

func TestSessionLogoutClears(t *testing.T) {
	ts := newSessionServer("tok-valid")
	defer ts.Close()
	dir := t.TempDir()

	session, err := NewSession(New(ts.URL), dir)
	require.NoError(t, err)
	_, err = session.Login(context.Background(), "1001", "password123")
	require.NoError(t, err)

	session.Logout()
	assert.False(t, session.LoggedIn())
	assert.Empty(t, session.client.Token())

	_, statErr := os.Stat(filepath.Join(dir, sessionFile))
	assert.True(t, os.IsNotExist(statErr))
}
