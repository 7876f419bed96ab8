package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deul428/QA-checklist/internal/client/assign"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "점검 항목/배정 관리 (console 권한 필요)",
	}
	cmd.AddCommand(newAdminSystemsCmd(app))
	cmd.AddCommand(newAdminUsersCmd(app))
	cmd.AddCommand(newAdminCheckItemsCmd(app))
	cmd.AddCommand(newAdminAssignmentsCmd(app))
	cmd.AddCommand(newAdminTreeCmd(app))
	return cmd
}

func newAdminSystemsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "전체 시스템 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			systems, err := app.client.ListSystems(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, systems)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\t시스템\t개발계\t품질계\t운영계\t설명")
			for _, s := range systems {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Name, yesNo(s.HasDev), yesNo(s.HasStg), yesNo(s.HasPrd),
					orDash(s.Description))
			}
			return w.Flush()
		},
	}
}

func newAdminUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "전체 사용자 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			users, err := app.client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, users)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\t이름\t사번\t본부\t부서\t직책")
			for _, u := range users {
				dept := "-"
				if u.Department != nil {
					dept = *u.Department
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					u.ID, u.Name, u.EmployeeID, orDash(u.GeneralHeadquarters), dept,
					orDash(u.Position))
			}
			return w.Flush()
		},
	}
}

func newAdminCheckItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-items",
		Short: "점검 항목 관리",
	}

	var listSystemID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "점검 항목 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			items, err := app.client.ListCheckItems(cmd.Context(), listSystemID)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, items)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\t시스템\t순서\t점검 항목\t설명")
			for _, item := range items {
				systemName := item.SystemID
				if item.System != nil {
					systemName = item.System.Name
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					item.ID, systemName, item.OrderIndex, item.Name, orDash(item.Description))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&listSystemID, "system", "", "시스템 ID 필터")

	var createSystemID, createName, createDesc string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "점검 항목 추가",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			item, err := app.client.CreateCheckItem(cmd.Context(), createSystemID, createName, createDesc)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "추가했습니다: %s (%s)\n", item.Name, item.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&createSystemID, "system", "", "시스템 ID")
	createCmd.Flags().StringVar(&createName, "name", "", "점검 항목 이름")
	createCmd.Flags().StringVar(&createDesc, "description", "", "설명")
	_ = createCmd.MarkFlagRequired("system")
	_ = createCmd.MarkFlagRequired("name")

	var updateName, updateDesc string
	updateCmd := &cobra.Command{
		Use:   "update <점검항목ID>",
		Short: "점검 항목 수정",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			var name, desc *string
			if cmd.Flags().Changed("name") {
				name = &updateName
			}
			if cmd.Flags().Changed("description") {
				desc = &updateDesc
			}
			if name == nil && desc == nil {
				return errors.New("수정할 값을 지정하세요 (--name, --description)")
			}
			item, err := app.client.UpdateCheckItem(cmd.Context(), args[0], name, desc)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "수정했습니다: %s\n", item.Name)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&updateName, "name", "", "점검 항목 이름")
	updateCmd.Flags().StringVar(&updateDesc, "description", "", "설명")

	deleteCmd := &cobra.Command{
		Use:   "delete <점검항목ID>",
		Short: "점검 항목 삭제 (기존 기록은 유지)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			if err := app.client.DeleteCheckItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "삭제했습니다")
			return nil
		},
	}

	cmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd)
	return cmd
}

func newAdminAssignmentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "담당자 배정 관리",
	}

	var listSystemID, listEnv string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "배정 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			assignments, err := app.client.ListAssignments(cmd.Context(), listSystemID, listEnv)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, assignments)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\t담당자\t시스템\t환경\t점검 항목")
			for _, a := range assignments {
				userName := a.UserID
				if a.User != nil {
					userName = a.User.Name
				}
				systemName := a.SystemID
				if a.System != nil {
					systemName = a.System.Name
				}
				itemName := a.CheckItemID
				if a.CheckItem != nil {
					itemName = a.CheckItem.Name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, userName, systemName, a.Environment, itemName)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&listSystemID, "system", "", "시스템 ID 필터")
	listCmd.Flags().StringVar(&listEnv, "env", "", "환경 필터 (dev|stg|prd)")

	var (
		createSystemID, createItemID, createEnv string
		userIDs, teamNames, deptSpecs           []string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "담당자 일괄 배정",
		Example: strings.TrimSpace(`
  # 개별 사용자 배정
  qactl admin assignments create --system sys1 --item item1 --env prd --user u1 --user u2

  # 팀/부서 단위 선택 (팀 전체, 부서는 '팀/부서' 형식)
  qactl admin assignments create --system sys1 --item item1 --env prd \
    --team "DX본부" --department "DX본부/플랫폼팀"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			selected := userIDs
			if len(teamNames) > 0 || len(deptSpecs) > 0 {
				users, err := app.client.ListUsers(ctx)
				if err != nil {
					return err
				}
				tree := assign.NewTree(users)
				tree.SetSelected(userIDs)
				for _, team := range teamNames {
					if tree.TeamState(team) == assign.Checked {
						continue
					}
					tree.ToggleTeam(team)
				}
				for _, spec := range deptSpecs {
					team, dept, ok := strings.Cut(spec, "/")
					if !ok {
						return fmt.Errorf("--department 형식은 '팀/부서'입니다: %s", spec)
					}
					if tree.DepartmentState(team, dept) == assign.Checked {
						continue
					}
					tree.ToggleDepartment(team, dept)
				}
				selected = tree.Selected()
			}
			if len(selected) == 0 {
				return errors.New("배정할 사용자를 지정하세요 (--user, --team, --department)")
			}

			result, err := app.client.CreateAssignments(ctx, selected, createSystemID, createItemID, createEnv)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "배정 완료: 신규 %d건, 건너뜀 %d건\n", result.Created, result.Skipped)
			return nil
		},
	}
	createCmd.Flags().StringVar(&createSystemID, "system", "", "시스템 ID")
	createCmd.Flags().StringVar(&createItemID, "item", "", "점검 항목 ID")
	createCmd.Flags().StringVar(&createEnv, "env", "", "환경 (dev|stg|prd)")
	createCmd.Flags().StringArrayVar(&userIDs, "user", nil, "사용자 ID (반복 가능)")
	createCmd.Flags().StringArrayVar(&teamNames, "team", nil, "팀 전체 선택 (반복 가능)")
	createCmd.Flags().StringArrayVar(&deptSpecs, "department", nil, "부서 선택: '팀/부서' (반복 가능)")
	_ = createCmd.MarkFlagRequired("system")
	_ = createCmd.MarkFlagRequired("item")
	_ = createCmd.MarkFlagRequired("env")

	deleteCmd := &cobra.Command{
		Use:   "delete <배정ID>",
		Short: "배정 해제",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			if err := app.client.DeleteAssignment(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "해제했습니다")
			return nil
		},
	}

	cmd.AddCommand(listCmd, createCmd, deleteCmd)
	return cmd
}

// newAdminTreeCmd 팀 → 부서 → 구성원 트리를 체크 상태와 함께 출력
func newAdminTreeCmd(app *App) *cobra.Command {
	var selectedIDs []string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "담당자 선택 트리 보기",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			users, err := app.client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			tree := assign.NewTree(users)
			tree.SetSelected(selectedIDs)
			tree.ExpandAll()

			out := cmd.OutOrStdout()
			for _, team := range tree.Teams {
				fmt.Fprintf(out, "%s %s\n", checkbox(tree.TeamState(team.Name)), team.Name)
				if !tree.IsExpanded(team.Name) {
					continue
				}
				for _, dept := range team.Departments {
					deptName := "(부서 미지정)"
					if dept.Name != nil {
						deptName = *dept.Name
					}
					fmt.Fprintf(out, "  %s %s\n", checkbox(tree.DepartmentState(team.Name, dept.Key())), deptName)
					for _, m := range dept.Members {
						mark := "[ ]"
						if tree.IsSelected(m.ID) {
							mark = "[x]"
						}
						fmt.Fprintf(out, "    %s %s %s (%s)\n", mark, m.Name, orDash(m.Position), m.ID)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&selectedIDs, "selected", nil, "선택된 사용자 ID (반복 가능)")
	return cmd
}

func checkbox(state assign.CheckState) string {
	switch state {
	case assign.Checked:
		return "[x]"
	case assign.Partial:
		return "[-]"
	default:
		return "[ ]"
	}
}
