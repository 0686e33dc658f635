package comments

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/crucial707/blog-api/cmd/cli/client"
	"github.com/crucial707/blog-api/cmd/cli/output"
	"github.com/spf13/cobra"
)

type comment struct {
	ID            string `json:"id"`
	PostID        string `json:"postId"`
	Autor         string `json:"autor"`
	Email         string `json:"email,omitempty"`
	Contenido     string `json:"contenido"`
	Estado        string `json:"estado"`
	FechaCreacion string `json:"fechaCreacion"`
}

// ==========================
// Init Comments
// ==========================
func InitComments(rootCmd *cobra.Command) {
	commentsCmd := &cobra.Command{
		Use:   "comments",
		Short: "Read, submit and moderate comments",
	}

	commentsCmd.AddCommand(
		listCommentsCmd(),
		addCommentCmd(),
		moderateCommentCmd(),
		deleteCommentCmd(),
	)

	rootCmd.AddCommand(commentsCmd)
}

func listCommentsCmd() *cobra.Command {
	var estado string
	var pagina, limite int

	cmd := &cobra.Command{
		Use:   "list [postId]",
		Short: "List the comments of a post, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if estado != "" {
				q.Set("estado", estado)
			}
			if pagina > 0 {
				q.Set("pagina", strconv.Itoa(pagina))
			}
			if limite > 0 {
				q.Set("limite", strconv.Itoa(limite))
			}
			path := "/api/posts/" + url.PathEscape(args[0]) + "/comments"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var out struct {
				Comments []comment `json:"comments"`
			}
			if err := client.Do(http.MethodGet, path, "", nil, &out); err != nil {
				return err
			}
			rows := make([][]interface{}, 0, len(out.Comments))
			for _, c := range out.Comments {
				rows = append(rows, []interface{}{c.ID, c.Autor, c.Estado, output.Truncate(c.Contenido, 50)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Autor", "Estado", "Contenido"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&estado, "estado", "", "pendiente, aprobado or rechazado")
	cmd.Flags().IntVar(&pagina, "pagina", 0, "page number")
	cmd.Flags().IntVar(&limite, "limite", 0, "page size (1..50)")
	return cmd
}

func addCommentCmd() *cobra.Command {
	var autor, email, contenido string

	cmd := &cobra.Command{
		Use:   "add [postId]",
		Short: "Submit a comment; it waits for moderation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"autor": autor, "contenido": contenido}
			if email != "" {
				payload["email"] = email
			}
			var c comment
			if err := client.Do(http.MethodPost, "/api/posts/"+url.PathEscape(args[0])+"/comments", "", payload, &c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment %s submitted (%s)\n", c.ID, c.Estado)
			return nil
		},
	}
	cmd.Flags().StringVar(&autor, "autor", "", "your name")
	cmd.Flags().StringVar(&email, "email", "", "notified when the comment is approved")
	cmd.Flags().StringVar(&contenido, "contenido", "", "comment text")
	cmd.MarkFlagRequired("autor")
	cmd.MarkFlagRequired("contenido")
	return cmd
}

func moderateCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "moderate [id] [pendiente|aprobado|rechazado]",
		Short:     "Set a comment's moderation state (admin)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"pendiente", "aprobado", "rechazado"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var c comment
			path := "/api/comments/" + url.PathEscape(args[0]) + "/status"
			if err := client.DoAuth(http.MethodPut, path, map[string]string{"estado": args[1]}, &c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment %s is now %s\n", c.ID, c.Estado)
			return nil
		},
	}
}

func deleteCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a comment (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DoAuth(http.MethodDelete, "/api/comments/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Comment deleted")
			return nil
		},
	}
}
