package consoleview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deul428/QA-checklist/internal/client"
)

func timePtr(t time.Time) *time.Time { return &t }

func sampleRows() []client.AllItemRow {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return []client.AllItemRow{
		{CheckItemID: "i1", SystemName: "포털", CheckItemName: "로그인", Status: "PASS"},
		{CheckItemID: "i2", SystemName: "결제", CheckItemName: "승인", Status: "FAIL",
			FailTime: timePtr(base.Add(2 * time.Hour))},
		{CheckItemID: "i3", SystemName: "정산", CheckItemName: "배치", Status: "미점검"},
		{CheckItemID: "i4", SystemName: "포털", CheckItemName: "결제요청", Status: "PASS",
			FailTime: timePtr(base), Resolved: true, ResolvedTime: timePtr(base.Add(time.Hour))},
	}
}

func TestItemsFilter(t *testing.T) {
	view := NewItemsView()
	rows := sampleRows()

	assert.Len(t, view.Rows(rows), 4, "기본 필터는 전체")

	view.SetFilter(FilterPass)
	filtered := view.Rows(rows)
	require.Len(t, filtered, 2)
	for _, row := range filtered {
		assert.Equal(t, "PASS", row.Status)
	}

	view.SetFilter(FilterUnchecked)
	filtered = view.Rows(rows)
	require.Len(t, filtered, 1)
	assert.Equal(t, "i3", filtered[0].CheckItemID)

	// 알 수 없는 값은 전체로
	view.SetFilter("???")
	assert.Equal(t, FilterAll, view.Filter())
	assert.Len(t, view.Rows(rows), 4)
}

func TestItemsSortToggle(t *testing.T) {
	view := NewItemsView()
	assert.Equal(t, SortSystem, view.Column())
	assert.True(t, view.Ascending())

	// 같은 컬럼 재선택은 방향 반전
	view.ToggleSort(SortSystem)
	assert.False(t, view.Ascending())

	// 다른 컬럼 선택은 오름차순부터
	view.ToggleSort(SortFailTime)
	assert.Equal(t, SortFailTime, view.Column())
	assert.True(t, view.Ascending())
}

func TestItemsSetSortDirection(t *testing.T) {
	view := NewItemsView()

	// 기본 컬럼과 같은 컬럼을 지정해도 방향이 뒤집히지 않는다
	view.SetSort(SortSystem, true)
	assert.Equal(t, SortSystem, view.Column())
	assert.True(t, view.Ascending())

	view.SetSort(SortFailTime, false)
	assert.Equal(t, SortFailTime, view.Column())
	assert.False(t, view.Ascending())

	rows := view.Rows(sampleRows())
	require.Len(t, rows, 4)
	assert.Equal(t, "i2", rows[0].CheckItemID, "가장 늦은 발생 시각이 먼저")
	assert.Nil(t, rows[2].FailTime, "값이 없는 행은 뒤로")
	assert.Nil(t, rows[3].FailTime)
}

func TestItemsSortBySystem(t *testing.T) {
	view := NewItemsView()
	rows := view.Rows(sampleRows())
	require.Len(t, rows, 4)
	assert.Equal(t, "결제", rows[0].SystemName)
	assert.Equal(t, "포털", rows[3].SystemName)

	view.ToggleSort(SortSystem)
	rows = view.Rows(sampleRows())
	assert.Equal(t, "포털", rows[0].SystemName)
}

func TestItemsNilTimesSortLast(t *testing.T) {
	view := NewItemsView()
	view.SetSort(SortFailTime, true)

	rows := view.Rows(sampleRows())
	require.Len(t, rows, 4)
	assert.Equal(t, "i4", rows[0].CheckItemID, "가장 이른 발생 시각이 먼저")
	assert.Nil(t, rows[3].FailTime, "값이 없는 행은 뒤로")

	// 내림차순에서도 nil은 뒤로 간다
	view.SetSort(SortFailTime, false)
	rows = view.Rows(sampleRows())
	assert.Equal(t, "i2", rows[0].CheckItemID)
	assert.Nil(t, rows[3].FailTime)
}

func TestItemsFilterThenSort(t *testing.T) {
	view := NewItemsView()
	view.SetFilter(FilterPass)
	view.SetSort(SortItem, false)

	rows := view.Rows(sampleRows())
	require.Len(t, rows, 2)
	assert.Equal(t, "로그인", rows[0].CheckItemName)
	assert.Equal(t, "결제요청", rows[1].CheckItemName)
}

func TestItemsRecomputedFromFullSlice(t *testing.T) {
	view := NewItemsView()
	items := sampleRows()

	first := view.Rows(items)
	view.ToggleSort(SortSystem)
	second := view.Rows(items)

	assert.Len(t, items, 4, "원본 목록은 그대로여야 한다")
	assert.NotEqual(t, first[0].SystemName, second[0].SystemName)
}
