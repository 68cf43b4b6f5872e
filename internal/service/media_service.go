package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/craftsites/autopost/internal/apperr"
	"github.com/craftsites/autopost/internal/models"
	"github.com/h2non/filetype"
	"google.golang.org/api/drive/v3"
)

// MediaStore is the folder/file surface of the media backend, narrow enough
// to fake in tests.
type MediaStore interface {
	ListFolders(ctx context.Context, parentID string) ([]models.MediaFolder, error)
	ListFiles(ctx context.Context, folderID string) ([]models.MediaFile, error)
	DownloadThumbnail(ctx context.Context, fileID string) ([]byte, error)
}

type driveMediaStore struct {
	svc *drive.Service
}

func NewDriveMediaStore(svc *drive.Service) MediaStore {
	return &driveMediaStore{svc: svc}
}

func (d *driveMediaStore) ListFolders(ctx context.Context, parentID string) ([]models.MediaFolder, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = 'application/vnd.google-apps.folder' and trashed = false", parentID)

	var folders []models.MediaFolder
	pageToken := ""
	for {
		call := d.svc.Files.List().Q(query).Fields("nextPageToken, files(id, name)").PageSize(100).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			slog.Error(err.Error())
			return nil, err
		}
		for _, f := range resp.Files {
			folders = append(folders, models.MediaFolder{ID: f.Id, Name: f.Name})
		}
		if resp.NextPageToken == "" {
			return folders, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (d *driveMediaStore) ListFiles(ctx context.Context, folderID string) ([]models.MediaFile, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != 'application/vnd.google-apps.folder' and trashed = false", folderID)

	var files []models.MediaFile
	pageToken := ""
	for {
		call := d.svc.Files.List().Q(query).Fields("nextPageToken, files(id, name, mimeType)").PageSize(200).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			slog.Error(err.Error())
			return nil, err
		}
		for _, f := range resp.Files {
			files = append(files, models.MediaFile{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
		}
		if resp.NextPageToken == "" {
			return files, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (d *driveMediaStore) DownloadThumbnail(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := d.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// MediaService resolves a tenant's content folders and fetches a bounded set
// of images from one of them.
type MediaService interface {
	ListFolders(ctx context.Context, tenant *models.Tenant) ([]models.MediaFolder, error)
	FetchImages(ctx context.Context, folderID string) ([]models.MediaImage, error)
}

type mediaService struct {
	store    MediaStore
	rootID   string
	imageCap int
}

func NewMediaService(store MediaStore, rootID string, imageCap int) MediaService {
	return &mediaService{store: store, rootID: rootID, imageCap: imageCap}
}

// Folder names excluded from rotation.
var reservedFolders = map[string]bool{
	"archive": true,
	"logo":    true,
}

func (s *mediaService) ListFolders(ctx context.Context, tenant *models.Tenant) ([]models.MediaFolder, error) {
	root, err := s.resolveRoot(ctx, tenant)
	if err != nil {
		return nil, err
	}

	children, err := s.store.ListFolders(ctx, root.ID)
	if err != nil {
		return nil, err
	}

	var eligible []models.MediaFolder
	for _, f := range children {
		if reservedFolders[strings.ToLower(f.Name)] {
			continue
		}
		eligible = append(eligible, f)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Name < eligible[j].Name })
	return eligible, nil
}

// resolveRoot finds the tenant's media root under the fleet root: an exact
// name match when the registry assigns a folder, a substring match on the
// tenant id otherwise.
func (s *mediaService) resolveRoot(ctx context.Context, tenant *models.Tenant) (*models.MediaFolder, error) {
	folders, err := s.store.ListFolders(ctx, s.rootID)
	if err != nil {
		return nil, err
	}

	for i := range folders {
		if tenant.AssignedFolder != "" {
			if folders[i].Name == tenant.AssignedFolder {
				return &folders[i], nil
			}
		} else if strings.Contains(folders[i].Name, tenant.Domain) {
			return &folders[i], nil
		}
	}
	return nil, fmt.Errorf("media root for tenant %s: %w", tenant.Domain, apperr.ErrNotFound)
}

// NextFolder computes the round-robin rotation target. A nil or stale cursor
// resets to the first folder.
func NextFolder(folders []models.MediaFolder, lastUsed string) models.MediaFolder {
	if len(folders) == 0 {
		return models.MediaFolder{}
	}
	for i, f := range folders {
		if f.Name == lastUsed {
			return folders[(i+1)%len(folders)]
		}
	}
	return folders[0]
}

const downloadConcurrency = 4

func (s *mediaService) FetchImages(ctx context.Context, folderID string) ([]models.MediaImage, error) {
	files, err := s.store.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var candidates []models.MediaFile
	for _, f := range files {
		if strings.HasPrefix(f.MimeType, "image/") {
			candidates = append(candidates, f)
		}
	}
	candidates = sampleFiles(candidates, s.imageCap)

	images := make([]*models.MediaImage, len(candidates))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, downloadConcurrency)

	for i, f := range candidates {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, f models.MediaFile) {
			defer wg.Done()
			defer func() { <-semaphore }()

			data, err := s.store.DownloadThumbnail(ctx, f.ID)
			if err != nil {
				// A lost thumbnail degrades the post, it does not fail it.
				slog.Info("dropping image after failed download", "file", f.ID, "error", err.Error())
				return
			}

			mimeType := f.MimeType
			if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
				mimeType = kind.MIME.Value
			}

			images[i] = &models.MediaImage{
				SourceID: f.ID,
				Name:     f.Name,
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(data),
			}
		}(i, f)
	}
	wg.Wait()

	var out []models.MediaImage
	for _, img := range images {
		if img != nil {
			out = append(out, *img)
		}
	}
	return out, nil
}

// sampleFiles draws a uniform random sample of size cap. Truncating instead
// would permanently favor the earliest uploads.
func sampleFiles(files []models.MediaFile, max int) []models.MediaFile {
	if max <= 0 || len(files) <= max {
		return files
	}
	sampled := make([]models.MediaFile, 0, max)
	for _, i := range rand.Perm(len(files))[:max] {
		sampled = append(sampled, files[i])
	}
	return sampled
}
