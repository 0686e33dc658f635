package categories

import (
	"fmt"
	"net/http"

	"github.com/crucial707/blog-api/cmd/cli/client"
	"github.com/crucial707/blog-api/cmd/cli/output"
	"github.com/spf13/cobra"
)

type category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func InitCategories(rootCmd *cobra.Command) {
	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "List and create categories",
	}

	categoriesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			RunE: func(cmd *cobra.Command, args []string) error {
				var out struct {
					Categories []category `json:"categories"`
				}
				if err := client.Do(http.MethodGet, "/api/categories", "", nil, &out); err != nil {
					return err
				}
				rows := make([][]interface{}, 0, len(out.Categories))
				for _, c := range out.Categories {
					rows = append(rows, []interface{}{c.ID, c.Name, c.Slug})
				}
				output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Slug"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:   "create [name]",
			Short: "Create a category (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var c category
				if err := client.DoAuth(http.MethodPost, "/api/categories", map[string]string{"name": args[0]}, &c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Category %q created with slug %s\n", c.Name, c.Slug)
				return nil
			},
		},
	)

	rootCmd.AddCommand(categoriesCmd)
}
