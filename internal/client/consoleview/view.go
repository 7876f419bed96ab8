// Package consoleview 콘솔 화면의 목록 필터/정렬 상태 관리.
// 서버 응답 원본은 그대로 두고, 호출할 때마다 전체 목록에서
// 표시용 목록을 다시 계산한다.
package consoleview

import (
	"sort"
	"time"

	"github.com/deul428/QA-checklist/internal/client"
)

// 상태 필터
const (
	FilterAll       = "전체"
	FilterPass      = "PASS"
	FilterFail      = "FAIL"
	FilterUnchecked = "미점검"
)

// SortColumn 정렬 컬럼
type SortColumn string

const (
	SortSystem       SortColumn = "system"
	SortItem         SortColumn = "item"
	SortFailTime     SortColumn = "fail_time"
	SortResolvedTime SortColumn = "resolved_time"
)

// ItemsView 전체 항목 현황의 상태 필터와 단일 컬럼 정렬을 한 상태로
// 관리한다. 필터와 정렬은 같은 행 목록 위에서 함께 적용된다.
type ItemsView struct {
	filter string
	column SortColumn
	asc    bool
}

// NewItemsView 기본 상태(전체 필터, 시스템 오름차순)로 생성
func NewItemsView() *ItemsView {
	return &ItemsView{filter: FilterAll, column: SortSystem, asc: true}
}

// Filter 현재 필터
func (v *ItemsView) Filter() string {
	return v.filter
}

// SetFilter 필터 변경. 알 수 없는 값은 전체로 처리한다.
func (v *ItemsView) SetFilter(filter string) {
	switch filter {
	case FilterPass, FilterFail, FilterUnchecked:
		v.filter = filter
	default:
		v.filter = FilterAll
	}
}

// Column 현재 정렬 컬럼
func (v *ItemsView) Column() SortColumn {
	return v.column
}

// Ascending 오름차순 여부
func (v *ItemsView) Ascending() bool {
	return v.asc
}

// ToggleSort 정렬 컬럼 선택. 같은 컬럼을 다시 선택하면 방향이
// 뒤집히고, 다른 컬럼을 선택하면 오름차순부터 시작한다.
func (v *ItemsView) ToggleSort(column SortColumn) {
	if v.column == column {
		v.asc = !v.asc
		return
	}
	v.column = column
	v.asc = true
}

// SetSort 정렬 컬럼과 방향을 직접 지정한다
func (v *ItemsView) SetSort(column SortColumn, ascending bool) {
	v.column = column
	v.asc = ascending
}

// Rows 전체 목록에서 필터와 정렬을 차례로 적용한 표시 목록을
// 계산한다. 시각 컬럼에서 값이 없는 행은 방향과 무관하게 항상
// 뒤로 간다.
func (v *ItemsView) Rows(rows []client.AllItemRow) []client.AllItemRow {
	var out []client.AllItemRow
	if v.filter == FilterAll {
		out = append(out, rows...)
	} else {
		for _, row := range rows {
			if row.Status == v.filter {
				out = append(out, row)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch v.column {
		case SortItem:
			return v.lessString(out[i].CheckItemName, out[j].CheckItemName)
		case SortFailTime:
			return lessTime(out[i].FailTime, out[j].FailTime, v.asc)
		case SortResolvedTime:
			return lessTime(out[i].ResolvedTime, out[j].ResolvedTime, v.asc)
		default:
			return v.lessString(out[i].SystemName, out[j].SystemName)
		}
	})
	return out
}

func (v *ItemsView) lessString(a, b string) bool {
	if v.asc {
		return a < b
	}
	return a > b
}

// lessTime nil을 뒤로 보내는 시각 비교
func lessTime(a, b *time.Time, asc bool) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	if asc {
		return a.Before(*b)
	}
	return a.After(*b)
}
