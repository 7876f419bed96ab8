package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var employeeID, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "사번/비밀번호로 로그인",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = promptLine(cmd, "비밀번호: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				return errors.New("비밀번호를 입력하세요")
			}

			user, err := app.session.Login(cmd.Context(), employeeID, password)
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "로그인 완료: %s (%s)\n", user.Name, user.EmployeeID)
			return nil
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee-id", "", "사번")
	cmd.Flags().StringVar(&password, "password", "", "비밀번호 (생략 시 입력 프롬프트)")
	_ = cmd.MarkFlagRequired("employee-id")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "저장된 세션 삭제",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "로그아웃했습니다")
			return nil
		},
	}
}

func newMeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "현재 사용자 정보",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			user, err := app.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return writeJSON(cmd, user)
			}

			w := newTable(cmd)
			fmt.Fprintf(w, "이름\t%s\n", user.Name)
			fmt.Fprintf(w, "사번\t%s\n", user.EmployeeID)
			fmt.Fprintf(w, "이메일\t%s\n", orDash(user.Email))
			fmt.Fprintf(w, "소속\t%s\n", orDash(user.Division))
			fmt.Fprintf(w, "본부\t%s\n", orDash(user.GeneralHeadquarters))
			if user.Department != nil {
				fmt.Fprintf(w, "부서\t%s\n", *user.Department)
			} else {
				fmt.Fprintf(w, "부서\t-\n")
			}
			fmt.Fprintf(w, "직책\t%s\n", orDash(user.Position))
			fmt.Fprintf(w, "콘솔 권한\t%s\n", yesNo(user.ConsoleRole))
			return w.Flush()
		},
	}
}

func newPasswdCmd(app *App) *cobra.Command {
	var current, updated string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "비밀번호 변경",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			var err error
			if current == "" {
				if current, err = promptLine(cmd, "현재 비밀번호: "); err != nil {
					return err
				}
			}
			if updated == "" {
				if updated, err = promptLine(cmd, "새 비밀번호: "); err != nil {
					return err
				}
			}
			if len(updated) < 8 {
				return errors.New("새 비밀번호는 8자 이상이어야 합니다")
			}
			if err := app.client.ChangePassword(cmd.Context(), current, updated); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "비밀번호를 변경했습니다")
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "현재 비밀번호")
	cmd.Flags().StringVar(&updated, "new", "", "새 비밀번호")
	return cmd
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
