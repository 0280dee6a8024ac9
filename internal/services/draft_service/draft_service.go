package services

import (
	"fmt"
	"log/slog"

	"portfolio_admin/internal/domain/models"
	"portfolio_admin/internal/lib/logger/sl"
	"portfolio_admin/internal/previews"
)

// DraftService управляет переходами состояния черновика проекта. Черновик
// принадлежит одной интерактивной сессии, конкурентных писателей нет.
// Инвариант: каждое локально созданное превью освобождается ровно один раз —
// при замене, удалении или сбросе формы.
type DraftService struct {
	log             *slog.Logger
	previews        *previews.Registry
	defaultCategory string
}

func New(log *slog.Logger, registry *previews.Registry, defaultCategory string) *DraftService {
	return &DraftService{
		log:             log,
		previews:        registry,
		defaultCategory: defaultCategory,
	}
}

// NewDraft возвращает пустой черновик с категорией по умолчанию.
func (s *DraftService) NewDraft() *models.Draft {
	return &models.Draft{Category: s.defaultCategory}
}

// SetCoverImage заменяет обложку черновика, освобождая превью предыдущей.
func (s *DraftService) SetCoverImage(d *models.Draft, asset *models.ImageAsset) {
	const op = "draft_service.SetCoverImage"

	s.release(op, d.CoverPreview)

	d.Cover = asset
	d.CoverPreview = asset.Preview
}

// AppendGalleryImages дописывает изображения в конец галереи, сохраняя
// порядок поступления. Прежние позиции не затрагиваются.
func (s *DraftService) AppendGalleryImages(d *models.Draft, assets []*models.ImageAsset) {
	for _, asset := range assets {
		d.Gallery = append(d.Gallery, models.GalleryEntry{
			Asset:   asset,
			Preview: asset.Preview,
		})
	}
}

// RemoveGalleryImage удаляет позицию index, освобождая ее локальное превью.
// Невалидный индекс — ошибка, а не тихий no-op.
func (s *DraftService) RemoveGalleryImage(d *models.Draft, index int) error {
	const op = "draft_service.RemoveGalleryImage"

	if index < 0 || index >= len(d.Gallery) {
		s.log.Warn("remove at invalid index",
			slog.String("op", op),
			slog.Int("index", index),
			slog.Int("len", len(d.Gallery)),
		)
		return fmt.Errorf("%s: %w", op, models.ErrIndexOutOfRange)
	}

	s.release(op, d.Gallery[index].Preview)

	d.Gallery = append(d.Gallery[:index], d.Gallery[index+1:]...)

	return nil
}

// Reset очищает черновик, освобождая все удерживаемые локальные превью.
func (s *DraftService) Reset(d *models.Draft) {
	const op = "draft_service.Reset"

	s.release(op, d.CoverPreview)
	for _, entry := range d.Gallery {
		s.release(op, entry.Preview)
	}

	*d = models.Draft{Category: s.defaultCategory}
}

// LoadForEdit заполняет черновик редактируемыми полями существующего проекта.
// Бинарники не заполняются ("оставить как есть"), превью указывают на уже
// загруженные URL — для них обязательств по освобождению нет.
func (s *DraftService) LoadForEdit(d *models.Draft, project *models.Project) {
	s.Reset(d)

	d.Title = project.Title
	d.Description = project.Description
	d.Category = project.Category
	d.CoverPreview = models.PreviewRef{URL: project.CoverImageURL}

	for _, u := range project.ImagesURLs {
		d.Gallery = append(d.Gallery, models.GalleryEntry{
			Preview: models.PreviewRef{URL: u},
		})
	}
}

func (s *DraftService) release(op string, ref models.PreviewRef) {
	if !ref.Local() {
		return
	}

	if err := s.previews.Release(ref.Handle); err != nil {
		// double release упускать нельзя: это признак нарушенного владения
		s.log.Error("preview release failed", slog.String("op", op), sl.Err(err))
	}
}
