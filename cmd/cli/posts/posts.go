package posts

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/crucial707/blog-api/cmd/cli/client"
	"github.com/crucial707/blog-api/cmd/cli/output"
	"github.com/spf13/cobra"
)

type post struct {
	ID        string   `json:"id"`
	Titulo    string   `json:"titulo"`
	Contenido string   `json:"contenido"`
	Autor     string   `json:"autor"`
	Etiquetas []string `json:"etiquetas"`
	Estado    string   `json:"estado"`
	Categoria string   `json:"categoria,omitempty"`
	Visitas   int      `json:"visitas"`
}

type meta struct {
	Total        int `json:"total"`
	Pagina       int `json:"pagina"`
	Limite       int `json:"limite"`
	PaginasTotal int `json:"paginasTotal"`
}

// ==========================
// Init Posts
// ==========================
func InitPosts(rootCmd *cobra.Command) {
	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse and manage posts",
	}

	postsCmd.AddCommand(
		listPostsCmd(),
		getPostCmd(),
		createPostCmd(),
		deletePostCmd(),
		votePostCmd(),
	)

	rootCmd.AddCommand(postsCmd, searchCmd())
}

// ==========================
// LIST
// ==========================
func listPostsCmd() *cobra.Command {
	var autor, estado, etiqueta, busqueda, categoria, ordenar string
	var pagina, limite int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			for k, v := range map[string]string{
				"autor": autor, "estado": estado, "etiqueta": etiqueta,
				"busqueda": busqueda, "categoria": categoria, "ordenar": ordenar,
			} {
				if v != "" {
					q.Set(k, v)
				}
			}
			if pagina > 0 {
				q.Set("pagina", strconv.Itoa(pagina))
			}
			if limite > 0 {
				q.Set("limite", strconv.Itoa(limite))
			}
			path := "/api/posts"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var out struct {
				Posts []post `json:"posts"`
				Meta  meta   `json:"meta"`
			}
			if err := client.Do(http.MethodGet, path, "", nil, &out); err != nil {
				return err
			}
			if jsonOutput {
				return output.PrintJSON(cmd.OutOrStdout(), out)
			}

			rows := make([][]interface{}, 0, len(out.Posts))
			for _, p := range out.Posts {
				rows = append(rows, []interface{}{p.ID, output.Truncate(p.Titulo, 40), p.Autor, p.Estado, p.Categoria, p.Visitas})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Titulo", "Autor", "Estado", "Categoria", "Visitas"}, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d posts)\n", out.Meta.Pagina, out.Meta.PaginasTotal, out.Meta.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&autor, "autor", "", "filter by author")
	cmd.Flags().StringVar(&estado, "estado", "", "filter by state (borrador, publicado, archivado)")
	cmd.Flags().StringVar(&etiqueta, "etiqueta", "", "filter by tag")
	cmd.Flags().StringVar(&busqueda, "busqueda", "", "substring of title or content")
	cmd.Flags().StringVar(&categoria, "categoria", "", "filter by category slug")
	cmd.Flags().StringVar(&ordenar, "ordenar", "", "sort by titulo, visitas or fechaCreacion")
	cmd.Flags().IntVar(&pagina, "pagina", 0, "page number")
	cmd.Flags().IntVar(&limite, "limite", 0, "page size (1..100)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output raw JSON instead of a table")

	return cmd
}

// ==========================
// GET
// ==========================
func getPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p post
			if err := client.Do(http.MethodGet, "/api/posts/"+url.PathEscape(args[0]), "", nil, &p); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\nby %s | %s | %d views\n", p.Titulo, p.Autor, p.Estado, p.Visitas)
			if len(p.Etiquetas) > 0 {
				fmt.Fprintf(w, "tags: %s\n", strings.Join(p.Etiquetas, ", "))
			}
			fmt.Fprintf(w, "\n%s\n", p.Contenido)
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createPostCmd() *cobra.Command {
	var titulo, contenido, estado, categoria string
	var etiquetas []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post as the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"titulo":    titulo,
				"contenido": contenido,
				"etiquetas": etiquetas,
			}
			if estado != "" {
				payload["estado"] = estado
			}
			if categoria != "" {
				payload["categoria"] = categoria
			}

			var p post
			if err := client.DoAuth(http.MethodPost, "/api/posts", payload, &p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post created: %s\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&titulo, "titulo", "", "post title")
	cmd.Flags().StringVar(&contenido, "contenido", "", "post body")
	cmd.Flags().StringVar(&estado, "estado", "", "borrador (default), publicado or archivado")
	cmd.Flags().StringVar(&categoria, "categoria", "", "category name or slug")
	cmd.Flags().StringSliceVar(&etiquetas, "etiqueta", nil, "tag; repeat or comma-separate")
	cmd.MarkFlagRequired("titulo")
	cmd.MarkFlagRequired("contenido")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deletePostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a post you own (admins: any post)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DoAuth(http.MethodDelete, "/api/posts/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Post deleted")
			return nil
		},
	}
}

// ==========================
// VOTE
// ==========================
func votePostCmd() *cobra.Command {
	var retract bool

	cmd := &cobra.Command{
		Use:   "vote [id] [up|down]",
		Short: "Vote on a post, or retract your vote with --retract",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/posts/" + url.PathEscape(args[0]) + "/votes"
			var out struct {
				Votes struct {
					Upvotes   int `json:"upvotes"`
					Downvotes int `json:"downvotes"`
				} `json:"votes"`
			}
			var err error
			switch {
			case retract:
				err = client.DoAuth(http.MethodDelete, path, nil, &out)
			case len(args) == 2:
				err = client.DoAuth(http.MethodPost, path, map[string]string{"type": args[1]}, &out)
			default:
				return fmt.Errorf("vote direction required (up or down)")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "+%d / -%d\n", out.Votes.Upvotes, out.Votes.Downvotes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&retract, "retract", false, "remove your vote")
	return cmd
}

// ==========================
// SEARCH
// ==========================
func searchCmd() *cobra.Command {
	var limite int

	cmd := &cobra.Command{
		Use:   "search [terms...]",
		Short: "Full-text search over posts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"q": {strings.Join(args, " ")}}
			if limite > 0 {
				q.Set("limite", strconv.Itoa(limite))
			}
			var out struct {
				Results []struct {
					ID        string  `json:"id"`
					Titulo    string  `json:"titulo"`
					Autor     string  `json:"autor"`
					Relevance float64 `json:"relevance"`
				} `json:"results"`
			}
			if err := client.Do(http.MethodGet, "/api/search?"+q.Encode(), "", nil, &out); err != nil {
				return err
			}
			rows := make([][]interface{}, 0, len(out.Results))
			for _, r := range out.Results {
				rows = append(rows, []interface{}{r.ID, output.Truncate(r.Titulo, 40), r.Autor, fmt.Sprintf("%.2f", r.Relevance)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Titulo", "Autor", "Relevance"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limite, "limite", 0, "maximum results (1..50)")
	return cmd
}
