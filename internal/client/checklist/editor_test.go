package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedsBufferOnlyWhenEmpty(t *testing.T) {
	ed := NewEditor()
	ed.Load("prd", []string{"i1", "i2"}, []Record{
		{CheckItemID: "i1", Environment: "prd", Status: StatusPass},
	})

	entry, ok := ed.Entry("prd", "i1")
	require.True(t, ok)
	assert.Equal(t, StatusPass, entry.Status)

	// 저장 전 수정
	ed.SetStatus("prd", "i1", StatusFail)
	ed.SetNote("prd", "i1", "오류 발생")

	// 서버 재조회가 와도 편집 중인 버퍼는 유지된다
	ed.Load("prd", []string{"i1", "i2"}, []Record{
		{CheckItemID: "i1", Environment: "prd", Status: StatusPass},
		{CheckItemID: "i2", Environment: "prd", Status: StatusPass},
	})
	entry, _ = ed.Entry("prd", "i1")
	assert.Equal(t, StatusFail, entry.Status)
	assert.Equal(t, "오류 발생", entry.Note)
}

func TestLoadIgnoresRecordsOutsideItemSet(t *testing.T) {
	ed := NewEditor()
	ed.Load("prd", []string{"i1"}, []Record{
		{CheckItemID: "i1", Environment: "prd", Status: StatusPass},
		{CheckItemID: "other", Environment: "prd", Status: StatusFail, FailNotes: "다른 목록"},
		{CheckItemID: "i1", Environment: "dev", Status: StatusFail, FailNotes: "다른 환경"},
	})

	_, ok := ed.Entry("prd", "other")
	assert.False(t, ok, "로드한 항목 목록 밖의 기록은 버퍼에 들어오면 안 된다")

	entry, ok := ed.Entry("prd", "i1")
	require.True(t, ok)
	assert.Equal(t, StatusPass, entry.Status, "다른 환경의 기록이 스냅샷을 덮으면 안 된다")
}

func TestDiffEmptyWhenBufferMatchesSnapshot(t *testing.T) {
	ed := NewEditor()
	ed.Load("prd", []string{"i1", "i2"}, []Record{
		{CheckItemID: "i1", Environment: "prd", Status: StatusPass},
		{CheckItemID: "i2", Environment: "prd", Status: StatusFail, FailNotes: "지연"},
	})

	assert.Empty(t, ed.Diff(), "버퍼와 스냅샷이 같으면 제출할 것이 없다")

	ed.SetStatus("prd", "i1", StatusFail)
	ed.SetNote("prd", "i1", "재점검 필요")

	diff := ed.Diff()
	require.Len(t, diff, 1)
	assert.Equal(t, "i1", diff[0].CheckItemID)
	assert.Equal(t, StatusFail, diff[0].Status)
	assert.Equal(t, "재점검 필요", diff[0].FailNotes)
}

func TestDiffIncludesNewEntries(t *testing.T) {
	ed := NewEditor()
	ed.Load("dev", []string{"i1", "i2"}, nil)

	ed.SetStatus("dev", "i2", StatusPass)

	diff := ed.Diff()
	require.Len(t, diff, 1)
	assert.Equal(t, "i2", diff[0].CheckItemID)
	assert.Equal(t, "dev", diff[0].Environment)
}

func TestCommitAdvancesSnapshot(t *testing.T) {
	ed := NewEditor()
	ed.Load("prd", []string{"i1"}, nil)
	ed.SetStatus("prd", "i1", StatusPass)

	require.Len(t, ed.Diff(), 1)
	ed.Commit()
	assert.Empty(t, ed.Diff(), "커밋 후에는 차이가 없어야 한다")

	// 커밋 이후의 새 수정은 다시 차이가 된다
	ed.SetStatus("prd", "i1", StatusFail)
	ed.SetNote("prd", "i1", "장애")
	assert.Len(t, ed.Diff(), 1)
}

func TestSetStatusPassClearsNote(t *testing.T) {
	ed := NewEditor()
	ed.Load("prd", []string{"i1"}, nil)

	ed.SetStatus("prd", "i1", StatusFail)
	ed.SetNote("prd", "i1", "오류")
	ed.SetStatus("prd", "i1", StatusPass)

	entry, _ := ed.Entry("prd", "i1")
	assert.Equal(t, StatusPass, entry.Status)
	assert.Empty(t, entry.Note)
}

func TestValidateIncompleteTakesPrecedence(t *testing.T) {
	ed := NewEditor()
	ed.Load("dev", []string{"i1", "i2"}, nil)
	ed.Load("prd", []string{"i1"}, nil)

	// dev: i1은 사유 없는 FAIL, i2는 미입력 / prd: i1 미입력
	ed.SetStatus("dev", "i1", StatusFail)

	err := ed.Validate()
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, map[string]int{"dev": 1, "prd": 1}, incomplete.Counts)
}

func TestValidateFailWithoutReason(t *testing.T) {
	ed := NewEditor()
	ed.Load("dev", []string{"i1", "i2"}, nil)

	ed.SetStatus("dev", "i1", StatusFail)
	ed.SetNote("dev", "i1", "   ") // 공백만 있는 사유는 무효
	ed.SetStatus("dev", "i2", StatusPass)

	err := ed.Validate()
	var missing *MissingReasonError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, map[string]int{"dev": 1}, missing.Counts)

	ed.SetNote("dev", "i1", "배치 실패")
	assert.NoError(t, ed.Validate())
}

func TestEnvironmentsAreIndependent(t *testing.T) {
	ed := NewEditor()
	ed.Load("dev", []string{"i1"}, nil)
	ed.Load("prd", []string{"i1"}, nil)

	ed.SetStatus("dev", "i1", StatusPass)
	ed.SetStatus("prd", "i1", StatusFail)
	ed.SetNote("prd", "i1", "운영 장애")

	devEntry, _ := ed.Entry("dev", "i1")
	prdEntry, _ := ed.Entry("prd", "i1")
	assert.Equal(t, StatusPass, devEntry.Status)
	assert.Equal(t, StatusFail, prdEntry.Status)

	diff := ed.Diff()
	require.Len(t, diff, 2)
	// 환경은 정렬 순서대로
	assert.Equal(t, "dev", diff[0].Environment)
	assert.Equal(t, "prd", diff[1].Environment)
}
