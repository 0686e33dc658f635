package main

import (
	"net/http"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/config"
	"github.com/crucial707/blog-api/internal/handlers"
	"github.com/crucial707/blog-api/internal/middleware"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/notify"
	"github.com/crucial707/blog-api/internal/revocation"
	"github.com/crucial707/blog-api/internal/search"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/crucial707/blog-api/internal/token"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// app holds everything the router needs. Build it in main or in tests.
type app struct {
	cfg      config.Config
	stores   store.Set
	codec    *token.Codec
	denylist revocation.Denylist
	mailer   notify.Mailer

	// Optional; newRouter builds them from cfg when nil.
	apiLimiter   *middleware.IPRateLimiter
	loginLimiter *middleware.IPRateLimiter
}

func newRouter(a app) http.Handler {
	s := a.stores

	authHandler := &handlers.AuthHandler{Service: auth.NewService(s.Users, a.codec), Denylist: a.denylist}
	postHandler := &handlers.PostHandler{Posts: s.Posts, Comments: s.Comments, Categories: s.Categories, Votes: s.Votes, Audit: s.Audit}
	commentHandler := &handlers.CommentHandler{Posts: s.Posts, Comments: s.Comments, Votes: s.Votes, Audit: s.Audit, Mailer: a.mailer}
	categoryHandler := &handlers.CategoryHandler{Categories: s.Categories, Audit: s.Audit}
	voteHandler := &handlers.VoteHandler{Posts: s.Posts, Comments: s.Comments, Votes: s.Votes, Audit: s.Audit}
	searchHandler := &handlers.SearchHandler{Search: search.NewService(s.Posts)}
	adminHandler := &handlers.AdminHandler{Stores: s}
	auditHandler := &handlers.AuditHandler{Repo: s.Audit}

	maxBody := a.cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}
	authn := middleware.Authenticate(a.codec, a.denylist)
	writers := middleware.Authorize(models.RoleAdmin, models.RoleAuthor)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	apiLimiter := a.apiLimiter
	if apiLimiter == nil {
		apiLimiter = middleware.APIRateLimiter(a.cfg.RateLimitRequests, a.cfg.RateLimitBurst)
	}
	loginLimiter := a.loginLimiter
	if loginLimiter == nil {
		loginLimiter = middleware.LoginRateLimiter(a.cfg.LoginRateLimitRequests, a.cfg.LoginRateLimitBurst)
	}

	r := chi.NewRouter()
	if a.cfg.TrustedProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(!a.cfg.IsProd()))
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(a.cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(a.cfg.CORSAllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierr.Write(w, r, apierr.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierr.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(s.Ping))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.MaxBytes(maxBody))
		r.Use(apiLimiter.Middleware)

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", authHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(authn, middleware.IdentityLogger)
				r.Post("/verify", authHandler.Verify)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Public reads and comment submission
		r.Get("/posts", postHandler.ListPosts)
		r.Get("/posts/{id}", postHandler.GetPost)
		r.Get("/posts/{postId}/comments", commentHandler.ListComments)
		r.Post("/posts/{postId}/comments", commentHandler.CreateComment)
		r.Get("/categories", categoryHandler.ListCategories)
		r.Get("/search", searchHandler.SearchPosts)

		r.Group(func(r chi.Router) {
			r.Use(authn, middleware.IdentityLogger)

			r.Post("/posts/{id}/votes", voteHandler.VotePost)
			r.Delete("/posts/{id}/votes", voteHandler.UnvotePost)
			r.Post("/comments/{id}/votes", voteHandler.VoteComment)
			r.Delete("/comments/{id}/votes", voteHandler.UnvoteComment)

			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/posts", postHandler.CreatePost)
				r.Put("/posts/{id}", postHandler.UpdatePost)
				r.Delete("/posts/{id}", postHandler.DeletePost)
			})

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Put("/comments/{id}/status", commentHandler.UpdateStatus)
				r.Delete("/comments/{id}", commentHandler.DeleteComment)
				r.Post("/categories", categoryHandler.CreateCategory)
				r.Get("/admin/stats", adminHandler.Stats)
				r.Get("/admin/audit", auditHandler.ListAudit)
			})
		})
	})

	return r
}
