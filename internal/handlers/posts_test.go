package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/repo"
)

func validPost() map[string]any {
	return map[string]any{
		"titulo":    "Primer post",
		"contenido": "Contenido suficientemente largo",
		"etiquetas": []string{"go", " blog "},
	}
}

func TestPostHandler_CreatePost(t *testing.T) {
	f := newFixture()
	p := f.createPost(t, authorID, validPost())

	if p.Autor != "autor" {
		t.Errorf("autor: got %q, want the caller", p.Autor)
	}
	if p.Estado != models.PostDraft {
		t.Errorf("estado default: got %q", p.Estado)
	}
	if p.ID == "" || !validID(p.ID) {
		t.Errorf("id: %q", p.ID)
	}
	if len(p.Etiquetas) != 2 || p.Etiquetas[1] != "blog" {
		t.Errorf("etiquetas not trimmed: %q", p.Etiquetas)
	}
	if p.FechaCreacion.IsZero() || !p.FechaCreacion.Equal(p.FechaActualizacion) {
		t.Errorf("timestamps: %v %v", p.FechaCreacion, p.FechaActualizacion)
	}
}

func TestPostHandler_CreatePost_IgnoresClientAutor(t *testing.T) {
	f := newFixture()
	body := validPost()
	body["autor"] = "admin"
	if p := f.createPost(t, authorID, body); p.Autor != "autor" {
		t.Errorf("autor spoofed: %q", p.Autor)
	}
}

func TestPostHandler_CreatePost_Validation(t *testing.T) {
	tags := make([]string, 11)
	for i := range tags {
		tags[i] = "t"
	}
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing titulo", map[string]any{"contenido": "Contenido suficiente"}, "titulo"},
		{"short titulo", map[string]any{"titulo": "ab", "contenido": "Contenido suficiente"}, "titulo"},
		{"long titulo", map[string]any{"titulo": strings.Repeat("x", 201), "contenido": "Contenido suficiente"}, "titulo"},
		{"line break in titulo", map[string]any{"titulo": "Hola\r\nBcc: x@evil.test", "contenido": "Contenido suficiente"}, "titulo"},
		{"short contenido after trim", map[string]any{"titulo": "Titulo", "contenido": "   corto    "}, "contenido"},
		{"too many etiquetas", map[string]any{"titulo": "Titulo", "contenido": "Contenido suficiente", "etiquetas": tags}, "etiquetas"},
		{"bad estado", map[string]any{"titulo": "Titulo", "contenido": "Contenido suficiente", "estado": "publicadisimo"}, "estado"},
		{"unknown categoria", map[string]any{"titulo": "Titulo", "contenido": "Contenido suficiente", "categoria": "nope"}, "categoria"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := as(httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(string(mustJSON(t, tt.body)))), authorID)
			rr := httptest.NewRecorder()
			f.posts.CreatePost(rr, req)
			expectStatus(t, rr, http.StatusBadRequest)
			e := decode[errorBody](t, rr)
			if e.Code != "VALIDATION_ERROR" || !e.hasField(tt.field) {
				t.Errorf("expected detail for %q, got %+v", tt.field, e)
			}
			if list, _ := f.stores.Posts.List(context.Background()); len(list) != 0 {
				t.Errorf("invalid post was stored")
			}
		})
	}
}

func TestPostHandler_CreatePost_WithCategory(t *testing.T) {
	f := newFixture()
	if _, err := f.stores.Categories.Insert(context.Background(), models.Category{Name: "Viajes Largos", Slug: "viajes-largos"}); err != nil {
		t.Fatalf("Insert category: %v", err)
	}
	body := validPost()
	body["categoria"] = "Viajes  Largos"
	if p := f.createPost(t, authorID, body); p.Categoria != "viajes-largos" {
		t.Errorf("categoria: got %q", p.Categoria)
	}
}

func TestPostHandler_ListPosts(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Alpha post", "Beta post", "Gamma post"} {
		f.posts.Now = func() time.Time { return now.Add(time.Duration(i) * time.Hour) }
		body := validPost()
		body["titulo"] = title
		if i == 1 {
			body["estado"] = models.PostPublished
		}
		f.createPost(t, authorID, body)
	}

	rr := httptest.NewRecorder()
	f.posts.ListPosts(rr, httptest.NewRequest(http.MethodGet, "/api/posts?limite=2&pagina=1", nil))
	expectStatus(t, rr, http.StatusOK)
	resp := decode[struct {
		Posts []models.Post `json:"posts"`
		Meta  struct {
			Total, Pagina, Limite, PaginasTotal int
		} `json:"meta"`
	}](t, rr)
	if len(resp.Posts) != 2 || resp.Posts[0].Titulo != "Gamma post" {
		t.Errorf("default order is newest first: %+v", resp.Posts)
	}
	if resp.Meta.Total != 3 || resp.Meta.PaginasTotal != 2 || resp.Meta.Limite != 2 {
		t.Errorf("meta: %+v", resp.Meta)
	}

	rr = httptest.NewRecorder()
	f.posts.ListPosts(rr, httptest.NewRequest(http.MethodGet, "/api/posts?estado=publicado", nil))
	expectStatus(t, rr, http.StatusOK)
	if got := decode[struct {
		Posts []models.Post `json:"posts"`
	}](t, rr); len(got.Posts) != 1 || got.Posts[0].Titulo != "Beta post" {
		t.Errorf("estado filter: %+v", got.Posts)
	}
}

func TestPostHandler_ListPosts_PageBeyondEnd(t *testing.T) {
	f := newFixture()
	f.createPost(t, authorID, validPost())

	for _, pagina := range []string{"2", "9223372036854775807"} {
		rr := httptest.NewRecorder()
		f.posts.ListPosts(rr, httptest.NewRequest(http.MethodGet, "/api/posts?limite=10&pagina="+pagina, nil))
		expectStatus(t, rr, http.StatusOK)
		resp := decode[struct {
			Posts []models.Post `json:"posts"`
			Meta  struct {
				Total int `json:"total"`
			} `json:"meta"`
		}](t, rr)
		if resp.Posts == nil || len(resp.Posts) != 0 || resp.Meta.Total != 1 {
			t.Errorf("pagina=%s: %+v", pagina, resp)
		}
	}
}

func TestPostHandler_ListPosts_InvalidQuery(t *testing.T) {
	f := newFixture()
	for query, field := range map[string]string{
		"limite=0":       "limite",
		"limite=101":     "limite",
		"pagina=0":       "pagina",
		"pagina=abc":     "pagina",
		"ordenar=autor":  "ordenar",
		"estado=borrado": "estado",
	} {
		rr := httptest.NewRecorder()
		f.posts.ListPosts(rr, httptest.NewRequest(http.MethodGet, "/api/posts?"+query, nil))
		expectStatus(t, rr, http.StatusBadRequest)
		if e := decode[errorBody](t, rr); !e.hasField(field) {
			t.Errorf("%s: expected detail for %q, got %+v", query, field, e)
		}
	}
}

func TestPostHandler_GetPost_CountsVisits(t *testing.T) {
	f := newFixture()
	p := f.createPost(t, authorID, validPost())

	for want := 1; want <= 2; want++ {
		rr := httptest.NewRecorder()
		f.posts.GetPost(rr, requestWithChiURLParams(http.MethodGet, "/api/posts/"+p.ID, nil, map[string]string{"id": p.ID}))
		expectStatus(t, rr, http.StatusOK)
		if got := decode[models.Post](t, rr); got.Visitas != want {
			t.Errorf("visitas: got %d, want %d", got.Visitas, want)
		}
	}
}

func TestPostHandler_GetPost_NotFound(t *testing.T) {
	f := newFixture()
	for _, id := range []string{"8a4f3c36-5a3b-4d5e-9f1a-1b2c3d4e5f60", "not-a-uuid"} {
		rr := httptest.NewRecorder()
		f.posts.GetPost(rr, requestWithChiURLParams(http.MethodGet, "/api/posts/"+id, nil, map[string]string{"id": id}))
		expectStatus(t, rr, http.StatusNotFound)
		if e := decode[errorBody](t, rr); e.Code != "NOT_FOUND" {
			t.Errorf("code: %q", e.Code)
		}
	}
}

func TestPostHandler_UpdatePost_Ownership(t *testing.T) {
	tests := []struct {
		name       string
		caller     *auth.Identity
		wantStatus int
	}{
		{"owner", authorID, http.StatusOK},
		{"admin", adminID, http.StatusOK},
		{"other author", otherID, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			p := f.createPost(t, authorID, validPost())

			body := mustJSON(t, map[string]any{"titulo": "Titulo cambiado", "estado": models.PostPublished})
			req := as(requestWithChiURLParams(http.MethodPut, "/api/posts/"+p.ID, body, map[string]string{"id": p.ID}), tt.caller)
			rr := httptest.NewRecorder()
			f.posts.UpdatePost(rr, req)
			expectStatus(t, rr, tt.wantStatus)

			stored, _ := f.stores.Posts.Get(context.Background(), p.ID)
			if tt.wantStatus == http.StatusOK {
				if stored.Titulo != "Titulo cambiado" || stored.Estado != models.PostPublished || stored.Autor != "autor" {
					t.Errorf("update not applied: %+v", stored)
				}
				return
			}
			if e := decode[errorBody](t, rr); e.Code != "AUTH_FORBIDDEN" {
				t.Errorf("code: %q", e.Code)
			}
			if stored.Titulo != p.Titulo || stored.Estado != p.Estado || !stored.FechaActualizacion.Equal(p.FechaActualizacion) {
				t.Errorf("rejected update mutated the post: %+v", stored)
			}
		})
	}
}

func TestPostHandler_UpdatePost_PartialValidation(t *testing.T) {
	f := newFixture()
	p := f.createPost(t, authorID, validPost())

	body := mustJSON(t, map[string]any{"titulo": "x"})
	req := as(requestWithChiURLParams(http.MethodPut, "/api/posts/"+p.ID, body, map[string]string{"id": p.ID}), authorID)
	rr := httptest.NewRecorder()
	f.posts.UpdatePost(rr, req)
	expectStatus(t, rr, http.StatusBadRequest)
	if e := decode[errorBody](t, rr); !e.hasField("titulo") {
		t.Errorf("details: %+v", e)
	}

	// Fields absent from the body are kept.
	body = mustJSON(t, map[string]any{"etiquetas": []string{}})
	req = as(requestWithChiURLParams(http.MethodPut, "/api/posts/"+p.ID, body, map[string]string{"id": p.ID}), authorID)
	rr = httptest.NewRecorder()
	f.posts.UpdatePost(rr, req)
	expectStatus(t, rr, http.StatusOK)
	got := decode[models.Post](t, rr)
	if got.Titulo != p.Titulo || got.Contenido != p.Contenido || len(got.Etiquetas) != 0 {
		t.Errorf("partial update: %+v", got)
	}
}

func TestPostHandler_DeletePost(t *testing.T) {
	f := newFixture()
	p := f.createPost(t, authorID, validPost())
	c := f.createComment(t, p.ID, map[string]any{"autor": "Ana", "contenido": "Un comentario largo"})
	ctx := context.Background()
	f.stores.Votes.Cast(ctx, models.Vote{EntityType: models.EntityPost, EntityID: p.ID, Username: "otro", Type: models.VoteUp})
	f.stores.Votes.Cast(ctx, models.Vote{EntityType: models.EntityComment, EntityID: c.ID, Username: "otro", Type: models.VoteUp})

	// A non-owner cannot delete.
	rr := httptest.NewRecorder()
	f.posts.DeletePost(rr, as(requestWithChiURLParams(http.MethodDelete, "/api/posts/"+p.ID, nil, map[string]string{"id": p.ID}), otherID))
	expectStatus(t, rr, http.StatusForbidden)
	if _, err := f.stores.Posts.Get(ctx, p.ID); err != nil {
		t.Fatalf("post removed by a forbidden delete: %v", err)
	}

	rr = httptest.NewRecorder()
	f.posts.DeletePost(rr, as(requestWithChiURLParams(http.MethodDelete, "/api/posts/"+p.ID, nil, map[string]string{"id": p.ID}), authorID))
	expectStatus(t, rr, http.StatusNoContent)

	if _, err := f.stores.Posts.Get(ctx, p.ID); err == nil {
		t.Error("post still present")
	}
	if list, _ := f.stores.Comments.ListByPost(ctx, p.ID); len(list) != 0 {
		t.Errorf("comments not cascaded: %+v", list)
	}
	if tally, _ := f.stores.Votes.Tally(ctx, models.EntityComment, c.ID); tally.Upvotes != 0 {
		t.Error("comment votes not cascaded")
	}
	if tallies, _ := f.stores.Votes.Tallies(ctx, models.EntityPost); len(tallies) != 0 {
		t.Error("post votes not cascaded")
	}

	entries, _ := f.stores.Audit.List(ctx, 10, 0)
	if len(entries) == 0 || entries[0].Action != ActionDelete || entries[0].Username != "autor" {
		t.Errorf("audit: %+v", entries)
	}
}

func TestPostHandler_GetPost_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	id := "6f1c7a0e-0b7d-4b1e-9d8e-2f0a4c3b5d61"
	now := time.Now()
	mock.ExpectQuery(`UPDATE posts SET visitas = visitas \+ 1 WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "titulo", "contenido", "autor", "etiquetas", "estado", "categoria", "fecha_creacion", "fecha_actualizacion", "visitas"}).
			AddRow(id, "Desde postgres", "contenido del post", "admin", "{}", models.PostPublished, "", now, now, 8))

	h := &PostHandler{Posts: repo.NewPostRepo(db)}
	rr := httptest.NewRecorder()
	h.GetPost(rr, requestWithChiURLParams(http.MethodGet, "/api/posts/"+id, nil, map[string]string{"id": id}))
	expectStatus(t, rr, http.StatusOK)
	if p := decode[models.Post](t, rr); p.Visitas != 8 || p.Titulo != "Desde postgres" || p.Etiquetas == nil {
		t.Errorf("unexpected post: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
