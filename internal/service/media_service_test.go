package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/craftsites/autopost/internal/apperr"
	"github.com/craftsites/autopost/internal/models"
	"github.com/craftsites/autopost/internal/service"
	"github.com/stretchr/testify/require"
)

type fakeMediaStore struct {
	folders  map[string][]models.MediaFolder
	files    map[string][]models.MediaFile
	failures map[string]bool // file ids whose download fails
}

func (f *fakeMediaStore) ListFolders(_ context.Context, parentID string) ([]models.MediaFolder, error) {
	return f.folders[parentID], nil
}

func (f *fakeMediaStore) ListFiles(_ context.Context, folderID string) ([]models.MediaFile, error) {
	return f.files[folderID], nil
}

func (f *fakeMediaStore) DownloadThumbnail(_ context.Context, fileID string) ([]byte, error) {
	if f.failures[fileID] {
		return nil, errors.New("download failed")
	}
	return []byte("image-bytes-" + fileID), nil
}

func folderNames(folders []models.MediaFolder) []string {
	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Name
	}
	return names
}

func TestNextFolder_RoundRobinVisitsEveryFolderOnce(t *testing.T) {
	folders := []models.MediaFolder{
		{ID: "a", Name: "bathrooms"},
		{ID: "b", Name: "decks"},
		{ID: "c", Name: "kitchens"},
		{ID: "d", Name: "roofs"},
	}

	seen := make(map[string]int)
	cursor := ""
	for i := 0; i < len(folders); i++ {
		next := service.NextFolder(folders, cursor)
		seen[next.Name]++
		cursor = next.Name
	}

	for _, f := range folders {
		require.Equal(t, 1, seen[f.Name], "folder %s not visited exactly once", f.Name)
	}

	// The cycle wraps back to the start.
	require.Equal(t, folders[0].Name, service.NextFolder(folders, cursor).Name)
}

func TestNextFolder_NilOrStaleCursorResets(t *testing.T) {
	folders := []models.MediaFolder{
		{ID: "a", Name: "bathrooms"},
		{ID: "b", Name: "decks"},
	}

	require.Equal(t, "bathrooms", service.NextFolder(folders, "").Name)
	require.Equal(t, "bathrooms", service.NextFolder(folders, "not-in-list").Name)
}

func TestListFolders_ExcludesReservedAndSorts(t *testing.T) {
	store := &fakeMediaStore{
		folders: map[string][]models.MediaFolder{
			"root": {{ID: "t1", Name: "1234-site"}},
			"t1": {
				{ID: "f3", Name: "kitchens"},
				{ID: "f1", Name: "Archive"},
				{ID: "f2", Name: "decks"},
				{ID: "f4", Name: "LOGO"},
				{ID: "f5", Name: "bathrooms"},
			},
		},
	}
	svc := service.NewMediaService(store, "root", 10)

	folders, err := svc.ListFolders(context.Background(), &models.Tenant{Domain: "1234"})
	require.NoError(t, err)
	require.Equal(t, []string{"bathrooms", "decks", "kitchens"}, folderNames(folders))
}

func TestListFolders_AssignedFolderExactMatch(t *testing.T) {
	store := &fakeMediaStore{
		folders: map[string][]models.MediaFolder{
			"root": {
				{ID: "t1", Name: "1234-site"},
				{ID: "t2", Name: "special"},
			},
			"t2": {{ID: "f1", Name: "work"}},
		},
	}
	svc := service.NewMediaService(store, "root", 10)

	folders, err := svc.ListFolders(context.Background(), &models.Tenant{Domain: "1234", AssignedFolder: "special"})
	require.NoError(t, err)
	require.Equal(t, []string{"work"}, folderNames(folders))
}

func TestListFolders_MissingRoot(t *testing.T) {
	store := &fakeMediaStore{folders: map[string][]models.MediaFolder{}}
	svc := service.NewMediaService(store, "root", 10)

	_, err := svc.ListFolders(context.Background(), &models.Tenant{Domain: "9999"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFetchImages_SamplesToCap(t *testing.T) {
	files := make([]models.MediaFile, 25)
	for i := range files {
		files[i] = models.MediaFile{ID: fmt.Sprintf("f%d", i), Name: fmt.Sprintf("%d.jpg", i), MimeType: "image/jpeg"}
	}
	store := &fakeMediaStore{files: map[string][]models.MediaFile{"folder": files}}
	svc := service.NewMediaService(store, "root", 10)

	images, err := svc.FetchImages(context.Background(), "folder")
	require.NoError(t, err)
	require.Len(t, images, 10)
}

func TestFetchImages_BelowCapReturnsAll(t *testing.T) {
	store := &fakeMediaStore{
		files: map[string][]models.MediaFile{
			"folder": {
				{ID: "f1", Name: "a.jpg", MimeType: "image/jpeg"},
				{ID: "f2", Name: "b.png", MimeType: "image/png"},
				{ID: "f3", Name: "notes.txt", MimeType: "text/plain"},
			},
		},
	}
	svc := service.NewMediaService(store, "root", 10)

	images, err := svc.FetchImages(context.Background(), "folder")
	require.NoError(t, err)
	require.Len(t, images, 2, "non-image files are filtered out")
	for _, img := range images {
		require.NotEmpty(t, img.Data)
	}
}

func TestFetchImages_FailedDownloadIsDropped(t *testing.T) {
	store := &fakeMediaStore{
		files: map[string][]models.MediaFile{
			"folder": {
				{ID: "f1", Name: "a.jpg", MimeType: "image/jpeg"},
				{ID: "f2", Name: "b.jpg", MimeType: "image/jpeg"},
			},
		},
		failures: map[string]bool{"f1": true},
	}
	svc := service.NewMediaService(store, "root", 10)

	images, err := svc.FetchImages(context.Background(), "folder")
	require.NoError(t, err)
	require.Len(t, images, 1)
	require.Equal(t, "f2", images[0].SourceID)
}
