package services_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_admin/internal/domain/models"
	"portfolio_admin/internal/previews"
	services "portfolio_admin/internal/services/draft_service"
)

func newService(t *testing.T) (*services.DraftService, *previews.Registry) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := previews.NewRegistry(log, "/api/v1/previews")

	return services.New(log, registry, "graphic-design"), registry
}

// newAsset регистрирует превью так же, как это делает нормализатор.
func newAsset(registry *previews.Registry, name string) *models.ImageAsset {
	handle := registry.Acquire(name, "image/jpeg", []byte(name))

	return &models.ImageAsset{
		Filename: name,
		Data:     []byte(name),
		Preview: models.PreviewRef{
			Handle: handle,
			URL:    registry.URL(handle),
		},
	}
}

func TestSetCoverImageReleasesPrevious(t *testing.T) {
	svc, registry := newService(t)
	draft := svc.NewDraft()

	first := newAsset(registry, "first.jpg")
	svc.SetCoverImage(draft, first)
	require.Equal(t, 1, registry.Len())

	second := newAsset(registry, "second.jpg")
	svc.SetCoverImage(draft, second)

	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, second, draft.Cover)

	_, ok := registry.Get(first.Preview.Handle)
	assert.False(t, ok, "previous cover preview must be released")

	_, ok = registry.Get(second.Preview.Handle)
	assert.True(t, ok)
}

func TestAppendGalleryImagesPreservesOrder(t *testing.T) {
	svc, registry := newService(t)
	draft := svc.NewDraft()

	svc.AppendGalleryImages(draft, []*models.ImageAsset{
		newAsset(registry, "a.jpg"),
		newAsset(registry, "b.jpg"),
	})
	svc.AppendGalleryImages(draft, []*models.ImageAsset{
		newAsset(registry, "c.jpg"),
	})

	require.Len(t, draft.Gallery, 3)
	assert.Equal(t, "a.jpg", draft.Gallery[0].Asset.Filename)
	assert.Equal(t, "b.jpg", draft.Gallery[1].Asset.Filename)
	assert.Equal(t, "c.jpg", draft.Gallery[2].Asset.Filename)
}

func TestRemoveGalleryImage(t *testing.T) {
	svc, registry := newService(t)
	draft := svc.NewDraft()

	svc.AppendGalleryImages(draft, []*models.ImageAsset{
		newAsset(registry, "a.jpg"),
		newAsset(registry, "b.jpg"),
		newAsset(registry, "c.jpg"),
	})
	require.Equal(t, 3, registry.Len())

	removed := draft.Gallery[1].Preview.Handle

	require.NoError(t, svc.RemoveGalleryImage(draft, 1))

	// удален ровно один, ровно тот, порядок остальных сохранен
	require.Len(t, draft.Gallery, 2)
	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, "a.jpg", draft.Gallery[0].Asset.Filename)
	assert.Equal(t, "c.jpg", draft.Gallery[1].Asset.Filename)

	_, ok := registry.Get(removed)
	assert.False(t, ok)
}

func TestRemoveGalleryImageOutOfRange(t *testing.T) {
	svc, registry := newService(t)
	draft := svc.NewDraft()

	svc.AppendGalleryImages(draft, []*models.ImageAsset{newAsset(registry, "a.jpg")})

	assert.ErrorIs(t, svc.RemoveGalleryImage(draft, -1), models.ErrIndexOutOfRange)
	assert.ErrorIs(t, svc.RemoveGalleryImage(draft, 1), models.ErrIndexOutOfRange)

	assert.Len(t, draft.Gallery, 1)
	assert.Equal(t, 1, registry.Len())
}

func TestResetReleasesEverything(t *testing.T) {
	svc, registry := newService(t)
	draft := svc.NewDraft()

	svc.SetCoverImage(draft, newAsset(registry, "cover.jpg"))
	svc.AppendGalleryImages(draft, []*models.ImageAsset{
		newAsset(registry, "a.jpg"),
		newAsset(registry, "b.jpg"),
	})
	require.Equal(t, 3, registry.Len())

	svc.Reset(draft)

	assert.Equal(t, 0, registry.Len())
	assert.Nil(t, draft.Cover)
	assert.Empty(t, draft.Gallery)
	assert.Empty(t, draft.Title)
	assert.Equal(t, "graphic-design", draft.Category)
}

func TestLoadForEditSeedsRemotePreviews(t *testing.T) {
	svc, registry := newService(t)
	draft := svc.NewDraft()

	project := &models.Project{
		ID:            "p1",
		Title:         "Logo Pack",
		Description:   "Brand identity",
		Category:      "graphic-design",
		CoverImageURL: "https://cdn.example.com/p1-cover.jpg",
		ImagesURLs: []string{
			"https://cdn.example.com/p1-1.jpg",
			"https://cdn.example.com/p1-2.jpg",
		},
	}

	svc.LoadForEdit(draft, project)

	assert.Equal(t, "Logo Pack", draft.Title)
	assert.Equal(t, "Brand identity", draft.Description)
	assert.Equal(t, "graphic-design", draft.Category)

	// бинарники пустые — "оставить как есть"
	assert.Nil(t, draft.Cover)
	assert.Empty(t, draft.LocalImages())

	assert.False(t, draft.CoverPreview.Local())
	assert.Equal(t, project.CoverImageURL, draft.CoverPreview.URL)

	require.Len(t, draft.Gallery, 2)
	assert.Equal(t, project.ImagesURLs[0], draft.Gallery[0].Preview.URL)
	assert.Equal(t, project.ImagesURLs[1], draft.Gallery[1].Preview.URL)

	// удаленные превью не требуют освобождения
	assert.Equal(t, 0, registry.Len())
}

func TestLoadForEditReleasesLocalState(t *testing.T) {
	svc, registry := newService(t)
	draft := svc.NewDraft()

	svc.SetCoverImage(draft, newAsset(registry, "cover.jpg"))
	svc.AppendGalleryImages(draft, []*models.ImageAsset{newAsset(registry, "a.jpg")})
	require.Equal(t, 2, registry.Len())

	svc.LoadForEdit(draft, &models.Project{ID: "p1", Title: "X"})

	assert.Equal(t, 0, registry.Len())
}
