package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ScrapedStatus is the closed status set for scraped articles. Scraped rows
// are written once by ingestion and never transition afterwards; generation
// creates a new generated_articles row instead of mutating the source row.
type ScrapedStatus string

const ScrapedPending ScrapedStatus = "pending"

// ArticleStatus is the closed status set for generated articles.
//
// draft -> publishing -> published. Publishing marks the window between the
// external CMS create and the local confirmation write; a row stuck in
// publishing means the CMS call may have succeeded without being recorded
// and needs manual reconciliation.
type ArticleStatus string

const (
	StatusDraft      ArticleStatus = "draft"
	StatusPublishing ArticleStatus = "publishing"
	StatusPublished  ArticleStatus = "published"
)

type ScrapedArticle struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	NewsID      string         `gorm:"size:128" json:"newsId"`
	Title       string         `gorm:"size:500" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	URL         string         `gorm:"size:2000" json:"url"`
	ImageURL    string         `gorm:"size:2000" json:"imageUrl"`
	ImagePath   string         `gorm:"size:1024" json:"imagePath,omitempty"`
	Source      string         `gorm:"size:255" json:"source"`
	Status      ScrapedStatus  `gorm:"size:16" json:"status"`
	PublishedAt *time.Time     `json:"publishedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (ScrapedArticle) TableName() string { return "scraped_articles" }

type GeneratedArticle struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	ScrapedArticleID string         `gorm:"size:36;index" json:"scrapedArticleId"`
	Title            string         `gorm:"size:500" json:"title"`
	Content          string         `gorm:"type:longtext" json:"content"`
	Summary          string         `gorm:"type:text" json:"summary"`
	KeywordsJSON     datatypes.JSON `gorm:"type:json" json:"keywords"`
	AffiliateJSON    datatypes.JSON `gorm:"type:json" json:"affiliateLinks"`
	Status           ArticleStatus  `gorm:"size:16;index" json:"status"`
	MicroCMSID       string         `gorm:"column:microcms_id;size:64" json:"microcmsId"`
	PublishedAt      *time.Time     `json:"publishedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (GeneratedArticle) TableName() string { return "generated_articles" }

// BeginPublish moves a draft into the publishing window. Any other starting
// state is rejected so overlapping publish calls cannot both proceed.
func (a *GeneratedArticle) BeginPublish() error {
	if a.Status != StatusDraft {
		return fmt.Errorf("cannot publish article in status %q", a.Status)
	}
	a.Status = StatusPublishing
	return nil
}

// ConfirmPublish records the external id and timestamp. The published state
// is only reachable with both set, which keeps the stored invariant:
// status == published iff microcms_id and published_at are present.
func (a *GeneratedArticle) ConfirmPublish(cmsID string, at time.Time) error {
	if a.Status != StatusPublishing {
		return fmt.Errorf("cannot confirm publish from status %q", a.Status)
	}
	if cmsID == "" {
		return fmt.Errorf("cannot confirm publish without a CMS id")
	}
	a.Status = StatusPublished
	a.MicroCMSID = cmsID
	a.PublishedAt = &at
	return nil
}

// AbortPublish returns a row to draft after a failed external create.
func (a *GeneratedArticle) AbortPublish() error {
	if a.Status != StatusPublishing {
		return fmt.Errorf("cannot abort publish from status %q", a.Status)
	}
	a.Status = StatusDraft
	return nil
}
