package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexica/internal/core/domain"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func setupRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	dir := t.TempDir()

	writeDoc(t, dir, "home.json", `{
		"id": 1, "source_type": "pages", "scope_id": 1,
		"title": "Home", "body_text": ["Welcome to our site"],
		"url": "/", "depth": 1
	}`)
	writeDoc(t, dir, "contact.json", `{
		"id": 2, "source_type": "pages", "scope_id": 2,
		"title": "Contact", "body_text": ["Reach us by mail"],
		"url": "/contact", "class": "shortcut", "hidden_in_nav": true
	}`)

	repo, err := NewRepository(dir)
	require.NoError(t, err)
	return repo, dir
}

func TestNewRepositoryRejectsMissingDir(t *testing.T) {
	_, err := NewRepository(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestGetDocument(t *testing.T) {
	repo, _ := setupRepo(t)

	doc, err := repo.GetDocument(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Contact", doc.Title)
	assert.Equal(t, domain.ClassShortcut, doc.Boost.Class)
	assert.True(t, doc.Boost.HiddenInNav)
}

func TestGetDocumentNotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.GetDocument(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDocumentsScopeFilter(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	all, err := repo.ListDocuments(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := repo.ListDocuments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, int64(1), scoped[0].ID)
}

func TestListDocumentsPicksUpNewFiles(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()

	writeDoc(t, dir, "news.json", `{
		"id": 3, "source_type": "news", "title": "Launch", "url": "/news/launch"
	}`)

	all, err := repo.ListDocuments(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestScanRejectsUnknownClass(t *testing.T) {
	repo, dir := setupRepo(t)

	writeDoc(t, dir, "bad.json", `{"id": 4, "title": "Bad", "class": "banner"}`)

	_, err := repo.ListDocuments(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScanIgnoresNonJSONFiles(t *testing.T) {
	repo, dir := setupRepo(t)

	writeDoc(t, dir, "notes.txt", "not a document")

	all, err := repo.ListDocuments(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
