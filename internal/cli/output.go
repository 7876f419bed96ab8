package cli

import (
	"encoding/json"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// writeJSON --json 출력
func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// newTable 탭 정렬 테이블 출력기
func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
}

// formatTime 표시용 시각 (없으면 "-")
func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// yesNo O/X 표기
func yesNo(v bool) string {
	if v {
		return "O"
	}
	return "X"
}

// orDash 빈 문자열을 "-"로
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
