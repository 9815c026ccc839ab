package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishLifecycle(t *testing.T) {
	article := GeneratedArticle{ID: "a1", Status: StatusDraft}

	require.NoError(t, article.BeginPublish())
	assert.Equal(t, StatusPublishing, article.Status)

	now := time.Now().UTC()
	require.NoError(t, article.ConfirmPublish("cms123", now))
	assert.Equal(t, StatusPublished, article.Status)
	assert.Equal(t, "cms123", article.MicroCMSID)
	require.NotNil(t, article.PublishedAt)
	assert.Equal(t, now, *article.PublishedAt)
}

func TestBeginPublishRejectsNonDraft(t *testing.T) {
	for _, status := range []ArticleStatus{StatusPublishing, StatusPublished} {
		article := GeneratedArticle{Status: status}
		assert.Error(t, article.BeginPublish())
		assert.Equal(t, status, article.Status)
	}
}

func TestConfirmPublishRequiresCMSID(t *testing.T) {
	article := GeneratedArticle{Status: StatusPublishing}
	assert.Error(t, article.ConfirmPublish("", time.Now()))
	assert.Equal(t, StatusPublishing, article.Status)
	assert.Empty(t, article.MicroCMSID)
	assert.Nil(t, article.PublishedAt)
}

func TestConfirmPublishRejectsDraft(t *testing.T) {
	article := GeneratedArticle{Status: StatusDraft}
	assert.Error(t, article.ConfirmPublish("cms123", time.Now()))
	assert.Equal(t, StatusDraft, article.Status)
}

func TestAbortPublishReturnsToDraft(t *testing.T) {
	article := GeneratedArticle{Status: StatusPublishing}
	require.NoError(t, article.AbortPublish())
	assert.Equal(t, StatusDraft, article.Status)

	assert.Error(t, article.AbortPublish())
}
