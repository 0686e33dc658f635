package posts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crucial707/blog-api/cmd/cli/config"
	"github.com/spf13/cobra"
)

// newAPI points the CLI at handler and gives it a logged-in token.
func newAPI(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("BLOG_API_URL", srv.URL)
	t.Setenv("BLOG_TOKEN_FILE", filepath.Join(t.TempDir(), "token"))
	if err := config.SaveToken("test-token"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestListPosts_TableOutput(t *testing.T) {
	newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/posts" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("estado"); got != "publicado" {
			t.Errorf("estado query: %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"posts": []post{{ID: "p1", Titulo: "Primer post", Autor: "admin", Estado: "publicado"}, {ID: "p2", Titulo: "Segundo", Autor: "autor", Estado: "publicado"}},
			"meta":  meta{Total: 2, Pagina: 1, Limite: 10, PaginasTotal: 1},
		})
	})

	out, err := run(t, listPostsCmd(), "--estado", "publicado")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Primer post") || !strings.Contains(out, "Segundo") || !strings.Contains(out, "Page 1 of 1 (2 posts)") {
		t.Fatalf("expected posts in output, got: %s", out)
	}
}

func TestListPosts_JSONOutput(t *testing.T) {
	newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"posts": []post{{ID: "p1", Titulo: "Primer post"}}, "meta": meta{Total: 1}})
	})

	out, err := run(t, listPostsCmd(), "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"titulo": "Primer post"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}

func TestCreatePost_SendsTokenAndPayload(t *testing.T) {
	newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("request: %s auth=%q", r.Method, r.Header.Get("Authorization"))
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["titulo"] != "Hola" || body["categoria"] != "go" {
			t.Errorf("payload: %v", body)
		}
		if tags, _ := body["etiquetas"].([]any); len(tags) != 2 {
			t.Errorf("etiquetas: %v", body["etiquetas"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(post{ID: "new-id"})
	})

	out, err := run(t, createPostCmd(), "--titulo", "Hola", "--contenido", "Contenido largo", "--categoria", "go", "--etiqueta", "a,b")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "new-id") {
		t.Errorf("output: %s", out)
	}
}

func TestDeletePost_ForbiddenShowsAPIError(t *testing.T) {
	newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"insufficient permissions","code":"FORBIDDEN"}`))
	})

	_, err := run(t, deletePostCmd(), "p1")
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "FORBIDDEN") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestVotePost(t *testing.T) {
	newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/posts/p1/votes" {
			t.Errorf("path: %s", r.URL.Path)
		}
		up := 1
		if r.Method == http.MethodDelete {
			up = 0
		}
		json.NewEncoder(w).Encode(map[string]any{"postId": "p1", "votes": map[string]int{"upvotes": up, "downvotes": 0}})
	})

	out, err := run(t, votePostCmd(), "p1", "up")
	if err != nil || !strings.Contains(out, "+1 / -0") {
		t.Fatalf("vote: %v %s", err, out)
	}
	out, err = run(t, votePostCmd(), "p1", "--retract")
	if err != nil || !strings.Contains(out, "+0 / -0") {
		t.Fatalf("retract: %v %s", err, out)
	}
}
