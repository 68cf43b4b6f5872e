package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/craftsites/autopost/internal/models"
	"github.com/craftsites/autopost/internal/repository"
	"github.com/craftsites/autopost/pkg/utils"
)

// PersisterService owns the "latest post" slot per tenant: reading the
// rotation cursor out of it and replacing its occupant with archive
// semantics.
type PersisterService interface {
	LastFolder(ctx context.Context, tenant *models.Tenant) (string, error)
	Upsert(ctx context.Context, tenant *models.Tenant, post *models.GeneratedPost, folderUsed string, imageURLs []string) (string, error)
}

type persisterService struct {
	posts      repository.LatestPostRepository
	archive    repository.ArchiveRepository
	baseDomain string
}

func NewPersisterService(posts repository.LatestPostRepository, archive repository.ArchiveRepository, baseDomain string) PersisterService {
	return &persisterService{posts: posts, archive: archive, baseDomain: baseDomain}
}

// LastFolder derives the rotation cursor from the tenant's current latest
// row. No row, or no folder column, means no cursor.
func (s *persisterService) LastFolder(ctx context.Context, tenant *models.Tenant) (string, error) {
	table, err := s.posts.ReadTable(ctx)
	if err != nil {
		return "", err
	}
	if row := s.findRow(table, tenant.Domain); row != nil {
		return row.Values[models.ColFolder], nil
	}
	return "", nil
}

// Upsert writes the new post into the tenant's latest slot. An existing
// occupant is first copied into the archive keyed by its own timestamp, then
// overwritten in place. The two writes are independent calls; a crash
// between them leaves a stale row that the next successful run replaces.
func (s *persisterService) Upsert(ctx context.Context, tenant *models.Tenant, post *models.GeneratedPost, folderUsed string, imageURLs []string) (string, error) {
	now := time.Now()
	record := &models.PostRecord{
		Domain:       tenant.Domain,
		BusinessName: tenant.BusinessName,
		Title:        post.Title,
		PostID:       utils.PostID(now),
		CreatedAt:    utils.CreatedAt(now),
		Language:     tenant.Language,
		Industry:     tenant.Industry,
		Folder:       folderUsed,
		Body:         post.Body,
		ImageURLs:    strings.Join(imageURLs, ","),
	}

	table, err := s.posts.ReadTable(ctx)
	if err != nil {
		return "", err
	}

	existing := s.findRow(table, tenant.Domain)
	if existing == nil {
		if err := s.posts.AppendRow(ctx, table.Header, record.ToRow()); err != nil {
			return "", err
		}
		slog.Info("appended latest post", "tenant", tenant.Domain, "post_id", record.PostID)
		return record.PostID, nil
	}

	archivedTS := existing.Values[models.ColCreatedAt]
	if archivedTS == "" {
		archivedTS = utils.CreatedAt(now)
	}
	if err := s.archive.Save(ctx, tenant.Domain, archivedTS, existing.Values); err != nil {
		return "", err
	}

	if err := s.posts.UpdateRow(ctx, existing.Number, table.Header, record.ToRow()); err != nil {
		return "", err
	}
	slog.Info("replaced latest post", "tenant", tenant.Domain, "post_id", record.PostID, "archived_ts", archivedTS)
	return record.PostID, nil
}

func (s *persisterService) findRow(table *repository.SheetTable, domain string) *repository.SheetRow {
	for _, row := range table.Rows {
		if utils.NormalizeDomain(row.Values[models.ColDomain], s.baseDomain) == domain {
			return row
		}
	}
	return nil
}
