package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"strings"

	"portfolio_admin/internal/domain/models"
	"portfolio_admin/internal/lib/logger/sl"
	"portfolio_admin/internal/metrics"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// Контрольные точки прогресса. Прогресс — грубая монотонная шкала для
// обратной связи пользователю, не побайтовое измерение.
const (
	progressValidated = 20
	progressFields    = 30
	progressCover     = 50
	progressImages    = 70
	progressResponse  = 90
	progressDone      = 100
)

// ProgressFunc вызывается на контрольных точках с процентом 0..100.
type ProgressFunc func(percent int)

// ProjectAPI — создающая/обновляющая часть внешнего API.
type ProjectAPI interface {
	CreateProject(ctx context.Context, body io.Reader, contentType string) (*models.UploadResult, error)
	UpdateProject(ctx context.Context, id string, body io.Reader, contentType string) (*models.UploadResult, error)
}

// UploadService валидирует черновик, собирает multipart-запрос и выполняет
// ровно один create/update вызов. Ретраев нет: повтор создания задублировал
// бы проект.
type UploadService struct {
	log *slog.Logger
	api ProjectAPI
}

func New(log *slog.Logger, api ProjectAPI) *UploadService {
	return &UploadService{
		log: log,
		api: api,
	}
}

// Submit выполняет один create/update вызов для черновика.
// До успешной валидации никаких сетевых вызовов и побочных эффектов нет;
// при любой ошибке черновик остается нетронутым, чтобы пользователь мог
// повторить отправку без повторного ввода.
func (s *UploadService) Submit(ctx context.Context, draft *models.Draft, mode Mode, targetID string, progress ProgressFunc) (*models.UploadResult, error) {
	const op = "upload_service.Submit"

	log := s.log.With(
		slog.String("op", op),
		slog.String("mode", string(mode)),
		slog.String("title", draft.Title),
	)

	rep := &progressReporter{fn: progress}

	if err := validate(draft, mode, targetID); err != nil {
		log.Warn("validation failed", sl.Err(err))
		metrics.ProjectSubmitsTotal.WithLabelValues(string(mode), "validation_error").Inc()
		return nil, err
	}

	rep.report(progressValidated)

	body, contentType, err := buildMultipart(draft, mode, rep)
	if err != nil {
		log.Error("failed to build request body", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("submitting project",
		slog.Int("body_size", body.Len()),
		slog.Int("gallery_images", len(draft.LocalImages())),
		slog.Bool("has_cover", draft.Cover != nil),
	)

	var result *models.UploadResult
	switch mode {
	case ModeCreate:
		result, err = s.api.CreateProject(ctx, body, contentType)
	case ModeUpdate:
		result, err = s.api.UpdateProject(ctx, targetID, body, contentType)
	}

	rep.report(progressResponse)

	if err != nil {
		log.Error("submit failed", sl.Err(err))
		metrics.ProjectSubmitsTotal.WithLabelValues(string(mode), "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rep.report(progressDone)
	metrics.ProjectSubmitsTotal.WithLabelValues(string(mode), "ok").Inc()

	log.Info("project submitted", slog.String("project_id", result.Project.ID))

	return result, nil
}

// validate проверяет предусловия отправки. Сообщения показываются
// пользователю дословно.
func validate(draft *models.Draft, mode Mode, targetID string) error {
	if strings.TrimSpace(draft.Title) == "" {
		return &models.ValidationError{Reason: "title is required"}
	}

	switch mode {
	case ModeCreate:
		if draft.Cover == nil {
			return &models.ValidationError{Reason: "cover image is required for new projects"}
		}
	case ModeUpdate:
		if targetID == "" {
			return &models.ValidationError{Reason: "project id is required for update"}
		}
	default:
		return &models.ValidationError{Reason: fmt.Sprintf("unknown submit mode %q", mode)}
	}

	return nil
}

// buildMultipart собирает тело запроса: текстовые поля, опциональная обложка,
// накопленные в этой сессии изображения галереи в порядке добавления.
// Для update отсутствие файлов галереи означает "не менять"; явная замена
// выражается полем replaceImages.
func buildMultipart(draft *models.Draft, mode Mode, rep *progressReporter) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
		"category":    draft.Category,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if mode == ModeUpdate && draft.ReplaceGallery {
		if err := w.WriteField("replaceImages", "true"); err != nil {
			return nil, "", fmt.Errorf("write field replaceImages: %w", err)
		}
	}

	rep.report(progressFields)

	if draft.Cover != nil {
		if err := writeImagePart(w, "coverImage", draft.Cover); err != nil {
			return nil, "", err
		}
	}

	rep.report(progressCover)

	for _, asset := range draft.LocalImages() {
		if err := writeImagePart(w, "images", asset); err != nil {
			return nil, "", err
		}
	}

	rep.report(progressImages)

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, w.FormDataContentType(), nil
}

func writeImagePart(w *multipart.Writer, field string, asset *models.ImageAsset) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, asset.Filename))
	h.Set("Content-Type", "image/jpeg")

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}

	if _, err := part.Write(asset.Data); err != nil {
		return fmt.Errorf("write part %s: %w", field, err)
	}

	return nil
}

// progressReporter гарантирует монотонность: отстающие значения отбрасываются.
type progressReporter struct {
	fn   ProgressFunc
	last int
}

func (p *progressReporter) report(percent int) {
	if p.fn == nil || percent <= p.last {
		return
	}

	p.last = percent
	p.fn(percent)
}
