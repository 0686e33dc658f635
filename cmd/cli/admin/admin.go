package admin

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/crucial707/blog-api/cmd/cli/client"
	"github.com/crucial707/blog-api/cmd/cli/output"
	"github.com/spf13/cobra"
)

// InitAdmin registers the admin-only reporting commands.
func InitAdmin(rootCmd *cobra.Command) {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin dashboards",
	}
	adminCmd.AddCommand(statsCmd(), auditCmd())
	rootCmd.AddCommand(adminCmd)
}

func statsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show blog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st struct {
				TotalPosts       int            `json:"totalPosts"`
				TotalUsers       int            `json:"totalUsers"`
				TotalComments    int            `json:"totalComments"`
				PendingComments  int            `json:"pendingComments"`
				TotalViews       int            `json:"totalViews"`
				PostsByStatus    map[string]int `json:"postsByStatus"`
				PostsPerCategory []struct {
					Name  string `json:"name"`
					Count int    `json:"count"`
				} `json:"postsPerCategory"`
				MostVotedPost *struct {
					ID    string `json:"id"`
					Title string `json:"title"`
					Votes int    `json:"votes"`
				} `json:"mostVotedPost"`
			}
			if err := client.DoAuth(http.MethodGet, "/api/admin/stats", nil, &st); err != nil {
				return err
			}
			if jsonOutput {
				return output.PrintJSON(cmd.OutOrStdout(), st)
			}

			rows := [][]interface{}{
				{"posts", st.TotalPosts},
				{"users", st.TotalUsers},
				{"comments", st.TotalComments},
				{"pending comments", st.PendingComments},
				{"views", st.TotalViews},
			}
			for _, state := range []string{"borrador", "publicado", "archivado"} {
				rows = append(rows, []interface{}{"posts " + state, st.PostsByStatus[state]})
			}
			for _, c := range st.PostsPerCategory {
				rows = append(rows, []interface{}{"category " + c.Name, c.Count})
			}
			if st.MostVotedPost != nil {
				rows = append(rows, []interface{}{"most voted", fmt.Sprintf("%s (%d)", st.MostVotedPost.Title, st.MostVotedPost.Votes)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Metric", "Value"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output raw JSON instead of a table")
	return cmd
}

func auditCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/admin/audit?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset)
			var out struct {
				Entries []struct {
					Username     string `json:"username"`
					Action       string `json:"action"`
					ResourceType string `json:"resource_type"`
					ResourceID   string `json:"resource_id"`
					Details      string `json:"details"`
					CreatedAt    string `json:"created_at"`
				} `json:"entries"`
			}
			if err := client.DoAuth(http.MethodGet, path, nil, &out); err != nil {
				return err
			}
			rows := make([][]interface{}, 0, len(out.Entries))
			for _, e := range out.Entries {
				rows = append(rows, []interface{}{e.CreatedAt, e.Username, e.Action, e.ResourceType, e.ResourceID, output.Truncate(e.Details, 30)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"When", "User", "Action", "Type", "Resource", "Details"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "entries to show (1..200)")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")
	return cmd
}
