package client

import (
	"context"
	"sync"
	"time"
)

// DefaultSearchDebounce 입력 후 검색 요청까지의 대기 시간
const DefaultSearchDebounce = 300 * time.Millisecond

// Searcher 디바운스 사용자 검색. 요청마다 단조 증가하는 순번을
// 붙여서 늦게 도착한 이전 응답이 최신 결과를 덮어쓰지 못하게 한다.
type Searcher struct {
	client    *Client
	debounce  time.Duration
	onResults func(query string, users []User)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	seq     uint64 // 마지막으로 발급한 요청 순번
	applied uint64 // 마지막으로 반영한 응답 순번
}

// NewSearcher 검색기 생성. onResults는 반영할 응답이 확정될 때마다
// 호출된다 (빈 질의는 빈 결과로 즉시 반영).
func NewSearcher(client *Client, debounce time.Duration, onResults func(query string, users []User)) *Searcher {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	return &Searcher{
		client:    client,
		debounce:  debounce,
		onResults: onResults,
	}
}

// SetQuery 질의 변경. 디바운스 후 검색을 실행한다.
func (s *Searcher) SetQuery(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = query

	if query == "" {
		// 빈 질의는 네트워크 없이 즉시 비운다
		s.seq++
		s.applied = s.seq
		s.onResults("", nil)
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(ctx, query)
	})
}

// Flush 대기 중인 질의를 즉시 실행 (포커스 이탈 등)
func (s *Searcher) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer.Stop()
	s.timer = nil
	query := s.pending
	s.mu.Unlock()

	if query != "" {
		s.fire(ctx, query)
	}
}

// fire 순번을 발급하고 검색을 실행한다
func (s *Searcher) fire(ctx context.Context, query string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	users, err := s.client.SearchUsers(ctx, query)
	if err != nil {
		// 실패한 응답은 반영하지 않는다; 최신 요청이 다시 채운다
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		// 더 새로운 응답이 이미 반영됨
		return
	}
	s.applied = seq
	s.onResults(query, users)
}
