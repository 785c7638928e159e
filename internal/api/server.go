// Package api provides the HTTP API server and handlers for the BooksHouse backend.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookshouse/bookshouse-server/internal/http/response"
	"github.com/bookshouse/bookshouse-server/internal/service"
	"github.com/bookshouse/bookshouse-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService    *service.AuthService
	bookService    *service.BookService
	reviewService  *service.ReviewService
	contactService *service.ContactService
	router         *chi.Mux
	logger         *slog.Logger
	allowedOrigins []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authService *service.AuthService,
	bookService *service.BookService,
	reviewService *service.ReviewService,
	contactService *service.ContactService,
	allowedOrigins []string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:    authService,
		bookService:    bookService,
		reviewService:  reviewService,
		contactService: contactService,
		router:         chi.NewRouter(),
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes. The catalog paths match the
// routes the existing web client calls.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// Account endpoints.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})
	})

	// Public catalog.
	s.router.Get("/all-books", s.handleListBooks)
	s.router.Get("/book/{id}", s.handleGetBook)
	s.router.Get("/popular-books", s.handleListPopularBooks)
	s.router.Get("/categories/{category}", s.handleListBooksByCategory)
	s.router.Patch("/book/{id}", s.handleSetReadingStatus)
	s.router.Patch("/upvote/{id}", s.handleUpvoteBook)

	// Public reviews.
	s.router.Get("/all-reviews/{id}", s.handleListReviewsForBook)
	s.router.Post("/reviews", s.handleCreateReview)
	s.router.Patch("/update-review/{id}", s.handleUpdateReview)
	s.router.Delete("/reviews/{id}", s.handleDeleteReview)

	// Contact form.
	s.router.Post("/contact", s.handleContact)

	// Authenticated catalog.
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.With(s.verifyEmailQuery).Get("/books", s.handleListOwnBooks)
		r.Get("/update-book/{id}", s.handleGetBookForEdit)
		r.Post("/add-book", s.handleCreateBook)
		r.Patch("/update-book/{id}", s.handleUpdateBook)
		r.Delete("/books/{id}", s.handleDeleteBook)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

// parsePageParams parses page and limit from the query string.
func parsePageParams(r *http.Request) store.PageParams {
	params := store.DefaultPageParams()

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			params.Page = page
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = limit
		}
	}

	params.Validate()
	return params
}
