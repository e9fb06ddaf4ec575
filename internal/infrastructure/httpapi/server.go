package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"NewsForge/internal/domain"
	"NewsForge/internal/ports"
	"NewsForge/internal/usecase"
)

// Server exposes the thin HTTP surface over the pipeline: recent articles,
// seed trigger, seed status, and single-article lookup.
type Server struct {
	orchestrator *usecase.Orchestrator
	repo         ports.ArticleRepository
	logger       *slog.Logger
	recentLimit  int
}

// NewServer wires handlers to the orchestrator and the repository.
func NewServer(orchestrator *usecase.Orchestrator, repo ports.ArticleRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{orchestrator: orchestrator, repo: repo, logger: logger, recentLimit: 50}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/news", s.listNews)
	router.POST("/news/seed", s.startSeed)
	router.GET("/news/seed/status", s.seedStatus)
	router.GET("/news/by-reference-url", s.byReferenceURL)

	return router
}

type articleResponse struct {
	ReferenceURL         string    `json:"reference_url"`
	ReferenceName        string    `json:"reference_name"`
	ReferencePublishedAt time.Time `json:"reference_published_at"`
	Header               string    `json:"header"`
	Subheader            string    `json:"subheader,omitempty"`
	Summary              string    `json:"summary"`
	Body                 string    `json:"body"`
	Category             string    `json:"category"`
}

type statusResponse struct {
	Category   string     `json:"category"`
	State      string     `json:"state"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Inserted   int        `json:"inserted"`
	Error      string     `json:"error,omitempty"`
}

func (s *Server) listNews(c *gin.Context) {
	category, ok := s.category(c)
	if !ok {
		return
	}

	articles, err := s.repo.RecentByCategory(c.Request.Context(), category, s.recentLimit)
	if err != nil {
		s.logger.Error("list news", "category", category, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

// startSeed triggers the bootstrap and answers immediately with the current
// status; it never blocks on or surfaces the background run's failures.
func (s *Server) startSeed(c *gin.Context) {
	category, ok := s.category(c)
	if !ok {
		return
	}

	status := s.orchestrator.StartSeedIfEmpty(c.Request.Context(), category)
	c.JSON(http.StatusAccepted, toStatusResponse(category, status))
}

func (s *Server) seedStatus(c *gin.Context) {
	category, ok := s.category(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toStatusResponse(category, s.orchestrator.SeedStatus(category)))
}

func (s *Server) byReferenceURL(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	article, err := s.repo.ByReferenceURL(c.Request.Context(), rawURL)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		s.logger.Error("lookup by reference url", "url", rawURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(article))
}

func (s *Server) category(c *gin.Context) (domain.Category, bool) {
	category, err := domain.ParseCategory(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return category, true
}

func toArticleResponse(a domain.Article) articleResponse {
	return articleResponse{
		ReferenceURL:         a.ReferenceURL,
		ReferenceName:        a.ReferenceName,
		ReferencePublishedAt: a.ReferencePublishedAt,
		Header:               a.Header,
		Subheader:            a.Subheader,
		Summary:              a.Summary,
		Body:                 a.Body,
		Category:             string(a.Category),
	}
}

func toStatusResponse(category domain.Category, status domain.JobStatus) statusResponse {
	out := statusResponse{
		Category: string(category),
		State:    string(status.State),
		Inserted: status.Inserted,
		Error:    status.Message,
	}
	if !status.StartedAt.IsZero() {
		started := status.StartedAt
		out.StartedAt = &started
	}
	if !status.FinishedAt.IsZero() {
		finished := status.FinishedAt
		out.FinishedAt = &finished
	}
	return out
}
