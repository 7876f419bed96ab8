package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchedulerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "메일 스케줄러 관리 (console 권한 필요)",
	}
	cmd.AddCommand(newSchedulerStatusCmd(app))
	cmd.AddCommand(newSchedulerTestEmailCmd(app))
	cmd.AddCommand(newSchedulerCancelCmd(app))
	return cmd
}

func newSchedulerStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "예약된 잡 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			jobs, err := app.client.SchedulerStatus(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "예약된 잡이 없습니다")
				return nil
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\t이름\t다음 실행\t트리거")
			for _, job := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", job.ID, job.Name, job.NextRunTime, job.Trigger)
			}
			return w.Flush()
		},
	}
}

func newSchedulerTestEmailCmd(app *App) *cobra.Command {
	var hour, minute int
	var now bool

	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "테스트 메일 예약 또는 즉시 발송",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			if now {
				if err := app.client.SendTestEmailNow(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "테스트 메일을 발송했습니다")
				return nil
			}
			job, err := app.client.ScheduleTestEmail(cmd.Context(), hour, minute)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, job)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "예약했습니다: %s (다음 실행 %s)\n", job.ID, job.NextRunTime)
			return nil
		},
	}

	cmd.Flags().IntVar(&hour, "hour", 0, "발송 시 (0-23)")
	cmd.Flags().IntVar(&minute, "minute", 0, "발송 분 (0-59)")
	cmd.Flags().BoolVar(&now, "now", false, "예약 없이 즉시 발송")
	return cmd
}

func newSchedulerCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <잡ID>",
		Short: "예약된 잡 취소",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			if err := app.client.CancelSchedulerJob(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "취소했습니다")
			return nil
		},
	}
}
