package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/craftsites/autopost/internal/models"
	"github.com/craftsites/autopost/internal/repository"
	"github.com/craftsites/autopost/internal/service"
	"github.com/stretchr/testify/require"
)

var postsHeader = []string{
	models.ColDomain, models.ColBusinessName, models.ColTitle, models.ColPostID,
	models.ColCreatedAt, models.ColLanguage, models.ColIndustry, models.ColFolder,
	models.ColBody, models.ColImageURLs,
}

// fakeLatestPosts keeps the latest-posts table in memory with sheet row
// numbering (header is row 1).
type fakeLatestPosts struct {
	header  []string
	rows    []map[string]string
	updates int
	appends int
}

func newFakeLatestPosts(rows ...map[string]string) *fakeLatestPosts {
	return &fakeLatestPosts{header: postsHeader, rows: rows}
}

func (f *fakeLatestPosts) ReadTable(_ context.Context) (*repository.SheetTable, error) {
	table := &repository.SheetTable{Header: f.header}
	for i, values := range f.rows {
		copied := make(map[string]string, len(values))
		for k, v := range values {
			copied[k] = v
		}
		table.Rows = append(table.Rows, &repository.SheetRow{Number: i + 2, Values: copied})
	}
	return table, nil
}

func (f *fakeLatestPosts) UpdateRow(_ context.Context, rowNumber int, _ []string, values map[string]string) error {
	f.rows[rowNumber-2] = values
	f.updates++
	return nil
}

func (f *fakeLatestPosts) AppendRow(_ context.Context, _ []string, values map[string]string) error {
	f.rows = append(f.rows, values)
	f.appends++
	return nil
}

type fakeArchive struct {
	entries map[string]map[string]string // "tenant|ts" -> row
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{entries: make(map[string]map[string]string)}
}

func (f *fakeArchive) Save(_ context.Context, tenant, archivedTS string, row map[string]string) error {
	f.entries[tenant+"|"+archivedTS] = row
	return nil
}

func (f *fakeArchive) Get(_ context.Context, tenant, archivedTS string) (map[string]string, error) {
	return f.entries[tenant+"|"+archivedTS], nil
}

func TestUpsert_AppendsWhenNoExistingRow(t *testing.T) {
	posts := newFakeLatestPosts()
	archive := newFakeArchive()
	p := service.NewPersisterService(posts, archive, "craftsites.app")

	tenant := &models.Tenant{Domain: "1234", BusinessName: "River City Roofing", Industry: "roofing", Language: "English"}
	postID, err := p.Upsert(context.Background(), tenant, &models.GeneratedPost{Title: "T", Body: "B"}, "kitchens", nil)

	require.NoError(t, err)
	require.NotEmpty(t, postID)
	require.Equal(t, 1, posts.appends)
	require.Equal(t, 0, posts.updates)
	require.Empty(t, archive.entries)
	require.Equal(t, "kitchens", posts.rows[0][models.ColFolder])
}

func TestUpsert_ArchivesThenOverwritesExistingRow(t *testing.T) {
	prior := map[string]string{
		models.ColDomain:    "1234.craftsites.app",
		models.ColTitle:     "Old title",
		models.ColCreatedAt: "2026-07-14 09:30:00",
		models.ColFolder:    "decks",
		models.ColBody:      "old body",
	}
	posts := newFakeLatestPosts(prior)
	archive := newFakeArchive()
	p := service.NewPersisterService(posts, archive, "craftsites.app")

	tenant := &models.Tenant{Domain: "1234", BusinessName: "River City Roofing"}
	_, err := p.Upsert(context.Background(), tenant, &models.GeneratedPost{Title: "New title", Body: "new body"}, "kitchens", []string{"https://cdn/x.jpg"})
	require.NoError(t, err)

	// Still exactly one latest row, now the new post.
	require.Len(t, posts.rows, 1)
	require.Equal(t, 1, posts.updates)
	require.Equal(t, 0, posts.appends)
	require.Equal(t, "New title", posts.rows[0][models.ColTitle])
	require.Equal(t, "kitchens", posts.rows[0][models.ColFolder])
	require.Equal(t, "https://cdn/x.jpg", posts.rows[0][models.ColImageURLs])

	// Exactly one archive entry, keyed by the prior row's own timestamp.
	require.Len(t, archive.entries, 1)
	archived, err := archive.Get(context.Background(), "1234", "2026-07-14 09:30:00")
	require.NoError(t, err)
	require.Equal(t, "Old title", archived[models.ColTitle])
}

func TestUpsert_SecondPostLeavesOneRowAndOneArchiveEntry(t *testing.T) {
	posts := newFakeLatestPosts()
	archive := newFakeArchive()
	p := service.NewPersisterService(posts, archive, "craftsites.app")
	tenant := &models.Tenant{Domain: "1234", BusinessName: "River City Roofing"}

	_, err := p.Upsert(context.Background(), tenant, &models.GeneratedPost{Title: "First", Body: "B1"}, "decks", nil)
	require.NoError(t, err)
	firstCreatedAt := posts.rows[0][models.ColCreatedAt]

	_, err = p.Upsert(context.Background(), tenant, &models.GeneratedPost{Title: "Second", Body: "B2"}, "kitchens", nil)
	require.NoError(t, err)

	require.Len(t, posts.rows, 1)
	require.Equal(t, "Second", posts.rows[0][models.ColTitle])
	require.Len(t, archive.entries, 1)
	archived, _ := archive.Get(context.Background(), "1234", firstCreatedAt)
	require.Equal(t, "First", archived[models.ColTitle])
}

func TestLastFolder_DerivedFromLatestRow(t *testing.T) {
	posts := newFakeLatestPosts(map[string]string{
		models.ColDomain: "1234",
		models.ColFolder: "decks",
	})
	p := service.NewPersisterService(posts, newFakeArchive(), "craftsites.app")

	folder, err := p.LastFolder(context.Background(), &models.Tenant{Domain: "1234"})
	require.NoError(t, err)
	require.Equal(t, "decks", folder)
}

func TestLastFolder_NoRowMeansNoCursor(t *testing.T) {
	p := service.NewPersisterService(newFakeLatestPosts(), newFakeArchive(), "craftsites.app")

	folder, err := p.LastFolder(context.Background(), &models.Tenant{Domain: "9999"})
	require.NoError(t, err)
	require.Empty(t, folder)
}

func TestUpsert_PostIDIsBase36OfMillis(t *testing.T) {
	posts := newFakeLatestPosts()
	p := service.NewPersisterService(posts, newFakeArchive(), "craftsites.app")

	postID, err := p.Upsert(context.Background(), &models.Tenant{Domain: "1234"}, &models.GeneratedPost{Title: "T", Body: "B"}, "decks", nil)
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(postID), postID)
	require.NotContains(t, postID, " ")
	require.GreaterOrEqual(t, len(postID), 8)
}
