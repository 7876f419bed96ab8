package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deul428/QA-checklist/internal/client"
	"github.com/deul428/QA-checklist/internal/client/checklist"
)

func newSystemsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "내가 배정된 시스템 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			systems, err := app.client.MySystems(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, systems)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\t시스템\t개발계\t품질계\t운영계")
			for _, s := range systems {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Name, yesNo(s.HasDev), yesNo(s.HasStg), yesNo(s.HasPrd))
			}
			return w.Flush()
		},
	}
}

func newChecklistCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "체크리스트 조회/제출",
	}
	cmd.AddCommand(newChecklistItemsCmd(app))
	cmd.AddCommand(newChecklistTodayCmd(app))
	cmd.AddCommand(newChecklistSubmitCmd(app))
	cmd.AddCommand(newChecklistUncheckedCmd(app))
	return cmd
}

func newChecklistItemsCmd(app *App) *cobra.Command {
	var systemID, env string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "시스템/환경의 점검 항목 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			items, err := app.client.CheckItems(cmd.Context(), systemID, env)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, items)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\t점검 항목\t설명")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", item.ID, item.Name, orDash(item.Description))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&systemID, "system", "", "시스템 ID")
	cmd.Flags().StringVar(&env, "env", "", "환경 (dev|stg|prd)")
	_ = cmd.MarkFlagRequired("system")
	_ = cmd.MarkFlagRequired("env")
	return cmd
}

func newChecklistTodayCmd(app *App) *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "오늘 제출한 점검 기록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			records, err := app.client.TodayRecords(cmd.Context(), env)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, records)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "점검 항목 ID\t환경\t상태\t비고\t점검 시각")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.CheckItemID, r.Environment, r.Status, orDash(r.FailNotes),
					r.CheckedAt.Local().Format("15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "환경 필터 (dev|stg|prd)")
	return cmd
}

func newChecklistSubmitCmd(app *App) *cobra.Command {
	var (
		systemID, env string
		passIDs       []string
		failSpecs     []string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "점검 결과 제출 (오늘 기록과의 차이만 전송)",
		Example: strings.TrimSpace(`
  qactl checklist submit --system sys1 --env prd \
    --pass item1 --pass item2 \
    --fail "item3=배치 지연 발생"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			items, err := app.client.CheckItems(ctx, systemID, env)
			if err != nil {
				return err
			}
			records, err := app.client.TodayRecords(ctx, env)
			if err != nil {
				return err
			}

			itemIDs := make([]string, 0, len(items))
			known := make(map[string]bool, len(items))
			for _, item := range items {
				itemIDs = append(itemIDs, item.ID)
				known[item.ID] = true
			}
			recs := make([]checklist.Record, 0, len(records))
			for _, r := range records {
				recs = append(recs, checklist.Record{
					CheckItemID: r.CheckItemID,
					Environment: r.Environment,
					Status:      r.Status,
					FailNotes:   r.FailNotes,
				})
			}

			ed := checklist.NewEditor()
			ed.Load(env, itemIDs, recs)

			for _, id := range passIDs {
				if !known[id] {
					return fmt.Errorf("알 수 없는 점검 항목: %s", id)
				}
				ed.SetStatus(env, id, checklist.StatusPass)
			}
			for _, spec := range failSpecs {
				id, note, ok := strings.Cut(spec, "=")
				if !ok {
					return fmt.Errorf("--fail 형식은 '항목ID=사유'입니다: %s", spec)
				}
				if !known[id] {
					return fmt.Errorf("알 수 없는 점검 항목: %s", id)
				}
				ed.SetStatus(env, id, checklist.StatusFail)
				ed.SetNote(env, id, note)
			}

			if err := ed.Validate(); err != nil {
				return validationMessage(err)
			}

			diff := ed.Diff()
			if len(diff) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "제출할 변경이 없습니다")
				return nil
			}

			submit := make([]client.SubmitItem, 0, len(diff))
			for _, row := range diff {
				submit = append(submit, client.SubmitItem{
					CheckItemID: row.CheckItemID,
					Environment: row.Environment,
					Status:      row.Status,
					FailNotes:   row.FailNotes,
				})
			}
			result, err := app.client.Submit(ctx, submit)
			if err != nil {
				return err
			}
			ed.Commit()

			if app.JSON {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "제출 완료: 신규 %d건, 수정 %d건, 변경 없음 %d건\n",
				result.Created, result.Updated, result.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&systemID, "system", "", "시스템 ID")
	cmd.Flags().StringVar(&env, "env", "", "환경 (dev|stg|prd)")
	cmd.Flags().StringArrayVar(&passIDs, "pass", nil, "PASS 처리할 점검 항목 ID (반복 가능)")
	cmd.Flags().StringArrayVar(&failSpecs, "fail", nil, "FAIL 처리할 '항목ID=사유' (반복 가능)")
	_ = cmd.MarkFlagRequired("system")
	_ = cmd.MarkFlagRequired("env")
	return cmd
}

func newChecklistUncheckedCmd(app *App) *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "unchecked",
		Short: "오늘 아직 점검하지 않은 항목",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			items, err := app.client.Unchecked(cmd.Context(), env)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "미점검 항목이 없습니다")
				return nil
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "시스템\t환경\t점검 항목")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", item.SystemName, item.EnvironmentName, item.CheckItemName)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "환경 필터 (dev|stg|prd)")
	return cmd
}

// validationMessage 제출 전 검증 실패를 한국어 메시지로 변환
func validationMessage(err error) error {
	var incomplete *checklist.IncompleteError
	if errors.As(err, &incomplete) {
		return fmt.Errorf("상태를 입력하지 않은 항목이 있습니다 (%s)", countsKorean(incomplete.Counts))
	}
	var missing *checklist.MissingReasonError
	if errors.As(err, &missing) {
		return fmt.Errorf("FAIL 항목에 사유가 없습니다 (%s)", countsKorean(missing.Counts))
	}
	return err
}

func countsKorean(counts map[string]int) string {
	envs := make([]string, 0, len(counts))
	for env := range counts {
		envs = append(envs, env)
	}
	sort.Strings(envs)
	parts := make([]string, 0, len(envs))
	for _, env := range envs {
		parts = append(parts, fmt.Sprintf("%s %d건", env, counts[env]))
	}
	return strings.Join(parts, ", ")
}
