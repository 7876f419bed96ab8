// Package checklist 체크리스트 화면의 편집 버퍼 상태 관리.
// 환경별 버퍼는 서로 독립이며, 서버와 마지막으로 동기화한
// 스냅샷과의 차이만 제출 대상이 된다.
package checklist

import (
	"fmt"
	"sort"
	"strings"
)

// 점검 상태
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Entry 한 항목의 편집 상태. Status가 비어 있으면 미입력이다.
type Entry struct {
	Status string
	Note   string
}

// IncompleteError 상태 미입력 항목이 남아 있음 (환경별 건수)
type IncompleteError struct {
	Counts map[string]int
}

func (e *IncompleteError) Error() string {
	return "unchecked items remain: " + formatCounts(e.Counts)
}

// MissingReasonError FAIL인데 사유가 비어 있는 항목이 있음 (환경별 건수)
type MissingReasonError struct {
	Counts map[string]int
}

func (e *MissingReasonError) Error() string {
	return "fail items without reason: " + formatCounts(e.Counts)
}

func formatCounts(counts map[string]int) string {
	envs := make([]string, 0, len(counts))
	for env := range counts {
		envs = append(envs, env)
	}
	sort.Strings(envs)
	parts := make([]string, 0, len(envs))
	for _, env := range envs {
		parts = append(parts, fmt.Sprintf("%s=%d", env, counts[env]))
	}
	return strings.Join(parts, ", ")
}

// Record 서버에서 받은 오늘의 기록 한 건
type Record struct {
	CheckItemID string
	Environment string
	Status      string
	FailNotes   string
}

// Editor 환경별 편집 버퍼 + 마지막 동기화 스냅샷
type Editor struct {
	items     map[string][]string         // env → 점검 항목 ID 목록 (표시 순서)
	buffers   map[string]map[string]Entry // env → itemID → 편집 중 값
	snapshots map[string]map[string]Entry // env → itemID → 마지막 동기화 값
}

// NewEditor 편집기 생성
func NewEditor() *Editor {
	return &Editor{
		items:     make(map[string][]string),
		buffers:   make(map[string]map[string]Entry),
		snapshots: make(map[string]map[string]Entry),
	}
}

// Load 환경의 항목 목록과 서버 기록을 반영한다. 스냅샷은 항상
// 서버 값으로 교체하지만, 편집 버퍼는 비어 있을 때만 시드해서
// 저장 전의 수정 내용을 잃지 않는다. 다른 환경이나 로드한 항목
// 목록 밖의 기록은 무시한다.
func (e *Editor) Load(env string, itemIDs []string, records []Record) {
	e.items[env] = append([]string(nil), itemIDs...)
	known := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		known[id] = true
	}

	snapshot := make(map[string]Entry)
	for _, r := range records {
		if r.Environment != env || !known[r.CheckItemID] {
			continue
		}
		snapshot[r.CheckItemID] = Entry{Status: r.Status, Note: r.FailNotes}
	}
	e.snapshots[env] = snapshot

	if buf, ok := e.buffers[env]; !ok || len(buf) == 0 {
		seeded := make(map[string]Entry, len(snapshot))
		for id, entry := range snapshot {
			seeded[id] = entry
		}
		e.buffers[env] = seeded
	}
}

// SetStatus 항목 상태 변경. PASS로 바꾸면 사유는 유지하지 않는다.
func (e *Editor) SetStatus(env, itemID, status string) {
	buf := e.buffer(env)
	entry := buf[itemID]
	entry.Status = status
	if status == StatusPass {
		entry.Note = ""
	}
	buf[itemID] = entry
}

// SetNote 항목 사유 변경
func (e *Editor) SetNote(env, itemID, note string) {
	buf := e.buffer(env)
	entry := buf[itemID]
	entry.Note = note
	buf[itemID] = entry
}

// Entry 항목의 현재 편집 값 조회
func (e *Editor) Entry(env, itemID string) (Entry, bool) {
	buf, ok := e.buffers[env]
	if !ok {
		return Entry{}, false
	}
	entry, ok := buf[itemID]
	return entry, ok
}

// Validate 제출 전 검증. 모든 로드된 환경에서 상태 미입력 항목과
// 사유 없는 FAIL 항목을 찾아 환경별 건수와 함께 반환한다.
// 네트워크 호출 전에 실패해야 하므로 편집 버퍼만 본다.
func (e *Editor) Validate() error {
	incomplete := make(map[string]int)
	missingReason := make(map[string]int)

	for env, itemIDs := range e.items {
		buf := e.buffers[env]
		for _, id := range itemIDs {
			entry := buf[id]
			switch entry.Status {
			case "":
				incomplete[env]++
			case StatusFail:
				if strings.TrimSpace(entry.Note) == "" {
					missingReason[env]++
				}
			}
		}
	}

	if len(incomplete) > 0 {
		return &IncompleteError{Counts: incomplete}
	}
	if len(missingReason) > 0 {
		return &MissingReasonError{Counts: missingReason}
	}
	return nil
}

// DiffRow 제출 대상 행
type DiffRow struct {
	CheckItemID string
	Environment string
	Status      string
	FailNotes   string
}

// Diff 스냅샷과 달라진 행만 반환한다. 상태나 사유가 바뀌었거나
// 스냅샷에 없던 새 입력이 대상이다. 빈 결과는 제출할 것이 없다는 뜻이다.
func (e *Editor) Diff() []DiffRow {
	var rows []DiffRow

	envs := make([]string, 0, len(e.items))
	for env := range e.items {
		envs = append(envs, env)
	}
	sort.Strings(envs)

	for _, env := range envs {
		buf := e.buffers[env]
		snapshot := e.snapshots[env]
		for _, id := range e.items[env] {
			entry, ok := buf[id]
			if !ok || entry.Status == "" {
				continue
			}
			prev, existed := snapshot[id]
			if existed && prev.Status == entry.Status && prev.Note == entry.Note {
				continue
			}
			rows = append(rows, DiffRow{
				CheckItemID: id,
				Environment: env,
				Status:      entry.Status,
				FailNotes:   entry.Note,
			})
		}
	}
	return rows
}

// Commit 제출 성공 후 스냅샷을 버퍼 값으로 전진시킨다.
// 이후의 Diff는 빈 결과가 된다.
func (e *Editor) Commit() {
	for env, buf := range e.buffers {
		snapshot := e.snapshots[env]
		if snapshot == nil {
			snapshot = make(map[string]Entry)
			e.snapshots[env] = snapshot
		}
		for id, entry := range buf {
			if entry.Status == "" {
				continue
			}
			snapshot[id] = entry
		}
	}
}

func (e *Editor) buffer(env string) map[string]Entry {
	buf, ok := e.buffers[env]
	if !ok {
		buf = make(map[string]Entry)
		e.buffers[env] = buf
	}
	return buf
}
