package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deul428/QA-checklist/internal/client"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "사용자 검색",
	}
	cmd.AddCommand(newUsersSearchCmd(app))
	return cmd
}

func newUsersSearchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <검색어>",
		Short: "이름/사번/부서로 사용자 검색",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			var results []client.User
			searcher := client.NewSearcher(app.client, client.DefaultSearchDebounce,
				func(query string, users []client.User) {
					results = users
				})
			searcher.SetQuery(cmd.Context(), args[0])
			searcher.Flush(cmd.Context())

			if app.JSON {
				return writeJSON(cmd, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "검색 결과가 없습니다")
				return nil
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\t이름\t사번\t부서\t직책")
			for _, u := range results {
				dept := "-"
				if u.Department != nil {
					dept = *u.Department
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.EmployeeID, dept, orDash(u.Position))
			}
			return w.Flush()
		},
	}
	return cmd
}
