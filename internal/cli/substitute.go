package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deul428/QA-checklist/internal/client"
)

func newSubstituteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "substitute",
		Short: "대체 점검자 관리",
	}
	cmd.AddCommand(newSubstituteCreateCmd(app))
	cmd.AddCommand(newSubstituteListCmd(app))
	cmd.AddCommand(newSubstituteActiveCmd(app))
	cmd.AddCommand(newSubstituteDeleteCmd(app))
	return cmd
}

func newSubstituteCreateCmd(app *App) *cobra.Command {
	var userID, systemID, start, end, reason string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "대체 점검자 지정 (시스템 단위)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			sub, err := app.client.CreateSubstitute(cmd.Context(), userID, systemID, start, end, reason)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, sub)
			}
			name := sub.SubstituteUserID
			if sub.SubstituteUser != nil {
				name = sub.SubstituteUser.Name
			}
			system := sub.SystemID
			if sub.System != nil {
				system = sub.System.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "지정했습니다: %s / %s (%s ~ %s)\n", name, system, sub.StartDate, sub.EndDate)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "대체 점검자 사용자 ID")
	cmd.Flags().StringVar(&systemID, "system", "", "대체를 맡길 시스템 ID")
	cmd.Flags().StringVar(&start, "start", "", "시작일 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "종료일 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reason, "reason", "", "사유")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("system")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newSubstituteListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "내가 지정한 대체 점검자 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			subs, err := app.client.MySubstitutes(cmd.Context())
			if err != nil {
				return err
			}
			return printSubstitutes(cmd, app, subs, "지정한 대체 점검자가 없습니다")
		},
	}
}

func newSubstituteActiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "오늘 나를 대체 점검자로 지정한 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			subs, err := app.client.ActiveSubstitutes(cmd.Context())
			if err != nil {
				return err
			}
			return printSubstitutes(cmd, app, subs, "오늘 대신 점검할 대상이 없습니다")
		},
	}
}

func newSubstituteDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <대체지정ID>",
		Short: "대체 지정 해제",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			if err := app.client.DeleteSubstitute(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "해제했습니다")
			return nil
		},
	}
}

func printSubstitutes(cmd *cobra.Command, app *App, subs []client.Substitute, empty string) error {
	if app.JSON {
		return writeJSON(cmd, subs)
	}
	if len(subs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), empty)
		return nil
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "ID\t원 담당자\t대체 점검자\t시스템\t기간\t사유")
	for _, s := range subs {
		original := s.OriginalUserID
		if s.OriginalUser != nil {
			original = s.OriginalUser.Name
		}
		substitute := s.SubstituteUserID
		if s.SubstituteUser != nil {
			substitute = s.SubstituteUser.Name
		}
		system := s.SystemID
		if s.System != nil {
			system = s.System.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s ~ %s\t%s\n",
			s.ID, original, substitute, system, s.StartDate, s.EndDate, orDash(s.Reason))
	}
	return w.Flush()
}
