package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchServer 검색 쿼리를 기록하고, 쿼리별로 응답을 지연시킬 수 있는 가짜 서버
type searchServer struct {
	mu      sync.Mutex
	queries []string
	holds   map[string]chan struct{}
}

func newSearchServer() (*searchServer, *httptest.Server) {
	s := &searchServer{holds: make(map[string]chan struct{})}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		s.mu.Lock()
		s.queries = append(s.queries, query)
		hold := s.holds[query]
		s.mu.Unlock()

		if hold != nil {
			<-hold
		}
		fmt.Fprintf(w, `{"code":0,"message":"success","data":{"items":[{"id":"u-%s","name":"%s"}]}}`, query, query)
	}))
	return s, ts
}

func (s *searchServer) holdQuery(query string) chan struct{} {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[query] = ch
	s.mu.Unlock()
	return ch
}

func (s *searchServer) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

// resultLog onResults 호출 기록
type resultLog struct {
	mu      sync.Mutex
	queries []string
	last    []User
}

func (l *resultLog) record(query string, users []User) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, query)
	l.last = users
}

func (l *resultLog) applied() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.queries...)
}

func TestSearcherDebounce(t *testing.T) {
	server, ts := newSearchServer()
	defer ts.Close()

	log := &resultLog{}
	searcher := NewSearcher(New(ts.URL), 40*time.Millisecond, log.record)
	ctx := context.Background()

	// 디바운스 창 안의 연타는 마지막 질의만 나간다
	searcher.SetQuery(ctx, "김")
	searcher.SetQuery(ctx, "김점")
	searcher.SetQuery(ctx, "김점검")

	require.Eventually(t, func() bool {
		return len(log.applied()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"김점검"}, log.applied())
	assert.Equal(t, 1, server.queryCount(), "네트워크 요청은 한 번이어야 한다")
}

func TestSearcherEmptyQueryClearsImmediately(t *testing.T) {
	server, ts := newSearchServer()
	defer ts.Close()

	log := &resultLog{}
	searcher := NewSearcher(New(ts.URL), 40*time.Millisecond, log.record)
	ctx := context.Background()

	searcher.SetQuery(ctx, "김")
	searcher.SetQuery(ctx, "")

	// 빈 질의는 네트워크 없이 즉시 반영된다
	assert.Equal(t, []string{""}, log.applied())
	assert.Nil(t, log.last)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, server.queryCount(), "취소된 질의는 전송되지 않아야 한다")
}

func TestSearcherFlushRunsPending(t *testing.T) {
	server, ts := newSearchServer()
	defer ts.Close()

	log := &resultLog{}
	searcher := NewSearcher(New(ts.URL), time.Hour, log.record)
	ctx := context.Background()

	searcher.SetQuery(ctx, "박")
	searcher.Flush(ctx)

	assert.Equal(t, []string{"박"}, log.applied())
	assert.Equal(t, 1, server.queryCount())

	// 대기 중인 질의가 없으면 Flush는 아무것도 하지 않는다
	searcher.Flush(ctx)
	assert.Equal(t, 1, server.queryCount())
}

func TestSearcherDiscardsStaleResponse(t *testing.T) {
	server, ts := newSearchServer()
	defer ts.Close()

	log := &resultLog{}
	searcher := NewSearcher(New(ts.URL), time.Millisecond, log.record)
	ctx := context.Background()

	// 먼저 나간 "느린" 요청이 나중에 도착하는 상황
	release := server.holdQuery("느린")

	done := make(chan struct{})
	go func() {
		searcher.fire(ctx, "느린")
		close(done)
	}()

	require.Eventually(t, func() bool {
		return server.queryCount() == 1
	}, time.Second, 5*time.Millisecond)

	// 나중 요청이 먼저 완료되어 반영된다
	searcher.fire(ctx, "빠른")
	require.Equal(t, []string{"빠른"}, log.applied())

	// 느린 응답이 도착해도 버린다
	close(release)
	<-done

	assert.Equal(t, []string{"빠른"}, log.applied(), "이전 순번의 응답은 반영하지 않는다")
	require.Len(t, log.last, 1)
	assert.Equal(t, "u-빠른", log.last[0].ID)
}
