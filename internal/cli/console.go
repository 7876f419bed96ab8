package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deul428/QA-checklist/internal/client"
	"github.com/deul428/QA-checklist/internal/client/consoleview"
)

func newConsoleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "콘솔(점검 현황) 조회",
	}
	cmd.AddCommand(newConsoleStatsCmd(app))
	cmd.AddCommand(newConsoleFailItemsCmd(app))
	cmd.AddCommand(newConsoleAllItemsCmd(app))
	cmd.AddCommand(newConsoleExportCmd(app))
	return cmd
}

func newConsoleStatsCmd(app *App) *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "오늘의 점검 통계",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			stats, err := app.client.Stats(cmd.Context(), env)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, stats)
			}

			w := newTable(cmd)
			fmt.Fprintf(w, "날짜\t%s\n", stats.Date)
			if stats.Environment != "" {
				fmt.Fprintf(w, "환경\t%s\n", stats.Environment)
			}
			fmt.Fprintf(w, "전체\t%d\n", stats.Total)
			fmt.Fprintf(w, "PASS\t%d\n", stats.Pass)
			fmt.Fprintf(w, "FAIL\t%d\n", stats.Fail)
			fmt.Fprintf(w, "미점검\t%d\n", stats.Unchecked)
			fmt.Fprintf(w, "시스템\t%d\n", stats.Systems)
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "환경 필터 (dev|stg|prd)")
	return cmd
}

// sortColumn --sort 플래그 값을 정렬 컬럼으로 변환
func sortColumn(name string) (consoleview.SortColumn, error) {
	switch name {
	case "system", "":
		return consoleview.SortSystem, nil
	case "item":
		return consoleview.SortItem, nil
	case "fail-time":
		return consoleview.SortFailTime, nil
	case "resolved-time":
		return consoleview.SortResolvedTime, nil
	default:
		return "", fmt.Errorf("알 수 없는 정렬 컬럼: %s (system|item|fail-time|resolved-time)", name)
	}
}

func newConsoleFailItemsCmd(app *App) *cobra.Command {
	var env, sortBy string
	var desc bool

	cmd := &cobra.Command{
		Use:   "fail-items",
		Short: "오늘 FAIL 항목과 해결 현황",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			column, err := sortColumn(sortBy)
			if err != nil {
				return err
			}
			items, err := app.client.AllItems(cmd.Context(), env)
			if err != nil {
				return err
			}

			// 오늘 FAIL이 발생했던 행만 남긴다 (해소된 행 포함)
			var failed []client.AllItemRow
			for _, row := range items {
				if row.FailTime != nil {
					failed = append(failed, row)
				}
			}

			view := consoleview.NewItemsView()
			view.SetSort(column, !desc)
			rows := view.Rows(failed)

			if app.JSON {
				return writeJSON(cmd, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "오늘 FAIL 항목이 없습니다")
				return nil
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "시스템\t환경\t점검 항목\t사유\t발생 시각\t해결 시각\t점검자")
			for _, item := range rows {
				resolved := "-"
				if item.Resolved {
					resolved = formatTime(item.ResolvedTime)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					item.SystemName, item.EnvironmentName, item.CheckItemName,
					orDash(item.FailNotes), formatTime(item.FailTime), resolved,
					orDash(item.CheckedBy))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "환경 필터 (dev|stg|prd)")
	cmd.Flags().StringVar(&sortBy, "sort", "system", "정렬 컬럼 (system|item|fail-time|resolved-time)")
	cmd.Flags().BoolVar(&desc, "desc", false, "내림차순 정렬")
	return cmd
}

func newConsoleAllItemsCmd(app *App) *cobra.Command {
	var env, filter, sortBy string
	var desc bool

	cmd := &cobra.Command{
		Use:   "all-items",
		Short: "전체 항목 점검 현황",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			column, err := sortColumn(sortBy)
			if err != nil {
				return err
			}
			items, err := app.client.AllItems(cmd.Context(), env)
			if err != nil {
				return err
			}

			view := consoleview.NewItemsView()
			view.SetFilter(filter)
			view.SetSort(column, !desc)
			rows := view.Rows(items)

			if app.JSON {
				return writeJSON(cmd, rows)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "시스템\t환경\t점검 항목\t상태\t담당자\t점검자\t점검 시각")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					row.SystemName, row.EnvironmentName, row.CheckItemName, row.Status,
					orDash(strings.Join(row.Assignees, ", ")), orDash(row.CheckedBy),
					formatTime(row.CheckedAt))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "환경 필터 (dev|stg|prd)")
	cmd.Flags().StringVar(&filter, "filter", consoleview.FilterAll, "상태 필터 (전체|PASS|FAIL|미점검)")
	cmd.Flags().StringVar(&sortBy, "sort", "system", "정렬 컬럼 (system|item|fail-time|resolved-time)")
	cmd.Flags().BoolVar(&desc, "desc", false, "내림차순 정렬")
	return cmd
}

func newConsoleExportCmd(app *App) *cobra.Command {
	var env, out, start, end string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "기간별 점검 기록을 엑셀 파일로 내려받기",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			today := time.Now().Format("2006-01-02")
			if start == "" {
				start = today
			}
			if end == "" {
				end = today
			}
			if out == "" {
				out = fmt.Sprintf("체크리스트_통계_%s_%s", start, end)
				if env != "" {
					out += "_" + env
				}
				out += ".xlsx"
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := app.client.ExportExcel(cmd.Context(), start, end, env, f); err != nil {
				os.Remove(out)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "저장했습니다: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "환경 필터 (dev|stg|prd)")
	cmd.Flags().StringVar(&start, "start", "", "시작일 (YYYY-MM-DD, 기본: 오늘)")
	cmd.Flags().StringVar(&end, "end", "", "종료일 (YYYY-MM-DD, 기본: 오늘)")
	cmd.Flags().StringVar(&out, "out", "", "저장 경로 (기본: 체크리스트_통계_<시작일>_<종료일>.xlsx)")
	return cmd
}
