package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"autoblog/internal/affiliate"
	"autoblog/internal/ai"
	"autoblog/internal/auth"
	"autoblog/internal/cms"
	"autoblog/internal/genflow"
	"autoblog/internal/mirror"
	"autoblog/internal/models"
	"autoblog/internal/news"
	"autoblog/internal/storage"
)

type Server struct {
	DB        *gorm.DB
	News      *news.Client
	LLM       *ai.Client
	CMS       *cms.Client
	Auth      *auth.Client
	Store     *storage.MinioStore
	Mirror    *mirror.Mirror
	Generator *genflow.Generator
	Affiliate affiliate.Config
	Logger    *slog.Logger

	CronSecret   string
	NewsCategory string
	NewsPageSize int
	DashboardURL string
}

// GeneratedResponse is the wire shape of a generated article with the JSON
// columns decoded.
type GeneratedResponse struct {
	ID               string           `json:"id"`
	ScrapedArticleID string           `json:"scrapedArticleId"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	Summary          string           `json:"summary"`
	Keywords         []string         `json:"keywords"`
	AffiliateLinks   []affiliate.Link `json:"affiliateLinks"`
	Status           string           `json:"status"`
	MicroCMSID       string           `json:"microcmsId"`
	PublishedAt      *time.Time       `json:"publishedAt"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func toGeneratedResponse(item models.GeneratedArticle) GeneratedResponse {
	keywords := []string{}
	if len(item.KeywordsJSON) > 0 {
		_ = json.Unmarshal(item.KeywordsJSON, &keywords)
	}
	links := []affiliate.Link{}
	if len(item.AffiliateJSON) > 0 {
		_ = json.Unmarshal(item.AffiliateJSON, &links)
	}
	return GeneratedResponse{
		ID:               item.ID,
		ScrapedArticleID: item.ScrapedArticleID,
		Title:            item.Title,
		Content:          item.Content,
		Summary:          item.Summary,
		Keywords:         keywords,
		AffiliateLinks:   links,
		Status:           string(item.Status),
		MicroCMSID:       item.MicroCMSID,
		PublishedAt:      item.PublishedAt,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	api := r.Group("/api")
	api.GET("/auth/callback", s.authCallback)
	api.POST("/articles/generate", s.generateArticle)
	api.GET("/articles/generate", s.ingestArticles)

	secured := api.Group("", s.requireSession())
	secured.GET("/articles", s.listArticles)
	secured.GET("/articles/scraped/:id", s.getScraped)
	secured.GET("/articles/generated/:id", s.getGenerated)
	secured.PATCH("/articles/generated/:id", s.updateGenerated)
	secured.POST("/articles/publish", s.publishArticle)
	secured.GET("/news/search", s.searchNews)
	secured.GET("/cms/articles", s.listCMSArticles)
	secured.GET("/assets/scraped/:id", s.getScrapedAsset)
}

func (s *Server) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
