package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"autoblog/internal/affiliate"
	"autoblog/internal/cms"
	"autoblog/internal/genflow"
	"autoblog/internal/models"
)

type articleIDRequest struct {
	ArticleID string `json:"articleId"`
}

type updateArticleRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Summary  *string   `json:"summary"`
	Keywords *[]string `json:"keywords"`
}

func (s *Server) listArticles(c *gin.Context) {
	var scraped []models.ScrapedArticle
	if err := s.DB.Order("created_at desc").Find(&scraped).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch articles"})
		return
	}

	var generated []models.GeneratedArticle
	if err := s.DB.Order("created_at desc").Find(&generated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch articles"})
		return
	}

	generatedResp := make([]GeneratedResponse, 0, len(generated))
	for _, item := range generated {
		generatedResp = append(generatedResp, toGeneratedResponse(item))
	}
	if scraped == nil {
		scraped = []models.ScrapedArticle{}
	}

	c.JSON(http.StatusOK, gin.H{
		"scrapedArticles":   scraped,
		"generatedArticles": generatedResp,
	})
}

func (s *Server) getScraped(c *gin.Context) {
	var item models.ScrapedArticle
	if err := s.DB.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch article"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) getGenerated(c *gin.Context) {
	var item models.GeneratedArticle
	if err := s.DB.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch article"})
		return
	}
	c.JSON(http.StatusOK, toGeneratedResponse(item))
}

// ingestArticles is the cron entry point: fetch current headlines and insert
// them as pending rows in one batch. Duplicates are not suppressed.
func (s *Server) ingestArticles(c *gin.Context) {
	if s.CronSecret == "" || c.GetHeader("Authorization") != "Bearer "+s.CronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	headlines, err := s.News.TopHeadlines(c.Request.Context(), s.NewsCategory, s.NewsPageSize)
	if err != nil {
		s.log().Error("headline fetch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to scrape articles"})
		return
	}

	rows := make([]models.ScrapedArticle, 0, len(headlines))
	for _, h := range headlines {
		rows = append(rows, models.ScrapedArticle{
			ID:          uuid.New().String(),
			NewsID:      h.ExternalID,
			Title:       h.Title,
			Description: h.Description,
			URL:         h.URL,
			ImageURL:    h.ImageURL,
			Source:      h.Source,
			Status:      models.ScrapedPending,
			PublishedAt: h.PublishedAt,
		})
	}

	if len(rows) > 0 {
		if err := s.DB.Create(&rows).Error; err != nil {
			s.log().Error("batch insert failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to scrape articles"})
			return
		}
	}

	// Cover mirroring runs after the batch insert and never fails the run.
	if s.Mirror.Enabled() {
		for _, row := range rows {
			objectPath, err := s.Mirror.CoverImage(c.Request.Context(), row.ID, row.ImageURL)
			if err != nil {
				s.log().Warn("cover mirror failed", "article_id", row.ID, "error", err)
				continue
			}
			if err := s.DB.Model(&models.ScrapedArticle{}).
				Where("id = ?", row.ID).
				Update("image_path", objectPath).Error; err != nil {
				s.log().Warn("cover path update failed", "article_id", row.ID, "error", err)
			}
		}
	}

	s.log().Info("ingestion completed", "scraped", len(rows))
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"articlesScraped": len(rows),
	})
}

func (s *Server) generateArticle(c *gin.Context) {
	var req articleIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "articleId required"})
		return
	}

	var scraped models.ScrapedArticle
	if err := s.DB.First(&scraped, "id = ?", req.ArticleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate article"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 120*time.Second)
	defer cancel()

	out, err := s.Generator.Generate(ctx, genflow.GraphInput{
		Article:   scraped,
		LLM:       s.LLM,
		Affiliate: s.Affiliate,
	})
	if err != nil {
		s.log().Error("generation failed", "article_id", scraped.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate article"})
		return
	}

	keywordsJSON, _ := json.Marshal(out.Keywords)
	linksJSON, _ := json.Marshal(out.Links)

	article := models.GeneratedArticle{
		ID:               uuid.New().String(),
		ScrapedArticleID: scraped.ID,
		Title:            out.Title,
		Content:          out.Content,
		Summary:          out.Summary,
		KeywordsJSON:     keywordsJSON,
		AffiliateJSON:    linksJSON,
		Status:           models.StatusDraft,
	}
	if err := s.DB.Create(&article).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"article": toGeneratedResponse(article),
	})
}

// publishArticle pushes a draft to the CMS. The row is moved to publishing
// before the external create and confirmed afterwards; a CMS failure aborts
// back to draft, a failed confirmation write leaves the publishing marker in
// place for reconciliation.
func (s *Server) publishArticle(c *gin.Context) {
	var req articleIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "articleId required"})
		return
	}

	var article models.GeneratedArticle
	if err := s.DB.First(&article, "id = ?", req.ArticleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish article"})
		return
	}

	if err := article.BeginPublish(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "article is not a draft"})
		return
	}
	res := s.DB.Model(&models.GeneratedArticle{}).
		Where("id = ? AND status = ?", article.ID, models.StatusDraft).
		Update("status", models.StatusPublishing)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish article"})
		return
	}
	if res.RowsAffected == 0 {
		// Another publish call claimed this row first.
		c.JSON(http.StatusConflict, gin.H{"error": "article is not a draft"})
		return
	}

	keywords := []string{}
	if len(article.KeywordsJSON) > 0 {
		_ = json.Unmarshal(article.KeywordsJSON, &keywords)
	}

	cmsID, err := s.CMS.Create(c.Request.Context(), cms.Article{
		Title:   article.Title,
		Content: article.Content,
		Summary: article.Summary,
		Tags:    keywords,
	})
	if err != nil {
		s.log().Error("cms create failed", "article_id", article.ID, "error", err)
		if dbErr := s.DB.Model(&models.GeneratedArticle{}).
			Where("id = ? AND status = ?", article.ID, models.StatusPublishing).
			Update("status", models.StatusDraft).Error; dbErr != nil {
			s.log().Error("publish abort failed", "article_id", article.ID, "error", dbErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish article"})
		return
	}

	now := time.Now().UTC()
	if err := article.ConfirmPublish(cmsID, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish article"})
		return
	}
	if err := s.DB.Model(&models.GeneratedArticle{}).
		Where("id = ?", article.ID).
		Updates(map[string]any{
			"status":       article.Status,
			"microcms_id":  article.MicroCMSID,
			"published_at": article.PublishedAt,
		}).Error; err != nil {
		s.log().Error("publish confirm failed", "article_id", article.ID, "cms_id", cmsID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"microCMSArticle": cms.Article{
			ID:          cmsID,
			Title:       article.Title,
			Content:     article.Content,
			Summary:     article.Summary,
			Tags:        keywords,
			PublishedAt: now.Format(time.RFC3339),
		},
	})
}

// updateGenerated edits a stored draft. Stored affiliate positions are
// re-clamped against the edited body; published articles are also patched in
// the CMS.
func (s *Server) updateGenerated(c *gin.Context) {
	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var article models.GeneratedArticle
	if err := s.DB.First(&article, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update article"})
		return
	}

	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Summary != nil {
		article.Summary = *req.Summary
	}
	if req.Keywords != nil {
		article.KeywordsJSON, _ = json.Marshal(*req.Keywords)
	}
	if req.Content != nil {
		article.Content = *req.Content
		links := []affiliate.Link{}
		if len(article.AffiliateJSON) > 0 {
			_ = json.Unmarshal(article.AffiliateJSON, &links)
		}
		links = affiliate.ClampPositions(article.Content, links)
		article.AffiliateJSON, _ = json.Marshal(links)
	}

	if err := s.DB.Model(&models.GeneratedArticle{}).
		Where("id = ?", article.ID).
		Updates(map[string]any{
			"title":          article.Title,
			"content":        article.Content,
			"summary":        article.Summary,
			"keywords_json":  article.KeywordsJSON,
			"affiliate_json": article.AffiliateJSON,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update article"})
		return
	}

	if article.Status == models.StatusPublished && article.MicroCMSID != "" {
		keywords := []string{}
		if len(article.KeywordsJSON) > 0 {
			_ = json.Unmarshal(article.KeywordsJSON, &keywords)
		}
		if err := s.CMS.Update(c.Request.Context(), article.MicroCMSID, cms.Article{
			Title:   article.Title,
			Content: article.Content,
			Summary: article.Summary,
			Tags:    keywords,
		}); err != nil {
			s.log().Error("cms update failed", "article_id", article.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update article"})
			return
		}
	}

	c.JSON(http.StatusOK, toGeneratedResponse(article))
}

func (s *Server) searchNews(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}

	headlines, err := s.News.Search(c.Request.Context(), query)
	if err != nil {
		s.log().Error("news search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search news"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": headlines})
}

func (s *Server) listCMSArticles(c *gin.Context) {
	res, err := s.CMS.List(c.Request.Context())
	if err != nil {
		s.log().Error("cms list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cms articles"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getScrapedAsset(c *gin.Context) {
	if s.Store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var item models.ScrapedArticle
	if err := s.DB.First(&item, "id = ?", c.Param("id")).Error; err != nil || item.ImagePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	obj, err := s.Store.Get(c.Request.Context(), item.ImagePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err == nil && stat.ContentType != "" {
		c.Header("Content-Type", stat.ContentType)
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, obj)
}
