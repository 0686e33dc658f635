package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/go-chi/chi/v5"
)

var (
	adminID  = &auth.Identity{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	authorID = &auth.Identity{UserID: 2, Username: "autor", Role: models.RoleAuthor}
	otherID  = &auth.Identity{UserID: 3, Username: "otro", Role: models.RoleAuthor}
)

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

func as(r *http.Request, id *auth.Identity) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), id))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return out
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func (e errorBody) hasField(name string) bool {
	for _, d := range e.Details {
		if d.Field == name {
			return true
		}
	}
	return false
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

// fixture wires every handler to one memory store set.
type fixture struct {
	stores   store.Set
	posts    *PostHandler
	comments *CommentHandler
	votes    *VoteHandler
	mailer   *recordingMailer
}

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) SendCommentApproved(ctx context.Context, postTitle, to string) error {
	m.sent = append(m.sent, postTitle+"|"+to)
	return nil
}

func newFixture() *fixture {
	s := store.NewMemory()
	m := &recordingMailer{}
	return &fixture{
		stores:   s,
		posts:    &PostHandler{Posts: s.Posts, Comments: s.Comments, Categories: s.Categories, Votes: s.Votes, Audit: s.Audit},
		comments: &CommentHandler{Posts: s.Posts, Comments: s.Comments, Votes: s.Votes, Audit: s.Audit, Mailer: m},
		votes:    &VoteHandler{Posts: s.Posts, Comments: s.Comments, Votes: s.Votes, Audit: s.Audit},
		mailer:   m,
	}
}

// createPost creates a post through the handler as id and returns it.
func (f *fixture) createPost(t *testing.T, id *auth.Identity, body map[string]any) models.Post {
	t.Helper()
	req := as(httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(mustJSON(t, body))), id)
	rr := httptest.NewRecorder()
	f.posts.CreatePost(rr, req)
	expectStatus(t, rr, http.StatusCreated)
	return decode[models.Post](t, rr)
}

func (f *fixture) createComment(t *testing.T, postID string, body map[string]any) models.Comment {
	t.Helper()
	req := requestWithChiURLParams(http.MethodPost, "/api/posts/"+postID+"/comments", mustJSON(t, body), map[string]string{"postId": postID})
	rr := httptest.NewRecorder()
	f.comments.CreateComment(rr, req)
	expectStatus(t, rr, http.StatusCreated)
	return decode[models.Comment](t, rr)
}
