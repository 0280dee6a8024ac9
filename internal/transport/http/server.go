package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"portfolio_admin/internal/domain/models"
	"portfolio_admin/internal/imaging"
	"portfolio_admin/internal/lib/logger/sl"
	"portfolio_admin/internal/previews"
	uploader "portfolio_admin/internal/services/upload_service"
	"portfolio_admin/internal/transport/http/dto"
	"portfolio_admin/internal/transport/http/dto/request"
	"portfolio_admin/internal/transport/http/dto/response"
)

type ImageNormalizer interface {
	Normalize(ctx context.Context, filename string, data []byte) (*models.ImageAsset, error)
	NormalizeBatch(ctx context.Context, inputs []models.ImageInput) ([]*models.ImageAsset, error)
}

type DraftService interface {
	NewDraft() *models.Draft
	SetCoverImage(d *models.Draft, asset *models.ImageAsset)
	AppendGalleryImages(d *models.Draft, assets []*models.ImageAsset)
	RemoveGalleryImage(d *models.Draft, index int) error
	Reset(d *models.Draft)
}

type UploadService interface {
	Submit(ctx context.Context, draft *models.Draft, mode uploader.Mode, targetID string, progress uploader.ProgressFunc) (*models.UploadResult, error)
}

type GalleryService interface {
	Categories(ctx context.Context) []models.Category
	ListProjects(ctx context.Context, category string) []models.Project
	GetProject(ctx context.Context, id string) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	Refresh(ctx context.Context)
	Selected() *models.Project
}

type PreviewStore interface {
	Get(handle string) (*previews.Preview, bool)
	Release(handle string) error
}

type InquiryService interface {
	Link(name, email, project, message string) string
}

type Routers struct {
	log        *slog.Logger
	Normalizer ImageNormalizer
	Drafts     DraftService
	Uploads    UploadService
	Gallery    GalleryService
	Previews   PreviewStore
	Inquiries  InquiryService
}

func NewRouter(
	log *slog.Logger,
	normalizer ImageNormalizer,
	drafts DraftService,
	uploads UploadService,
	gallery GalleryService,
	previewStore PreviewStore,
	inquiries InquiryService,
) *Routers {
	return &Routers{
		log:        log,
		Normalizer: normalizer,
		Drafts:     drafts,
		Uploads:    uploads,
		Gallery:    gallery,
		Previews:   previewStore,
		Inquiries:  inquiries,
	}
}

// GetCategories возвращает каталог категорий. Ошибка чтения у коллаборатора
// деградирует до пустого каталога — для фронта это не ошибка.
func (r *Routers) GetCategories(c echo.Context) error {
	categories := r.Gallery.Categories(c.Request().Context())

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.CategoriesResponse{
		Categories: categories,
	}))
}

// ListProjects перечитывает список проектов с опциональным фильтром
// ?category=. Сбой чтения отдает пустой список, а не 5xx.
func (r *Routers) ListProjects(c echo.Context) error {
	projects := r.Gallery.ListProjects(c.Request().Context(), c.QueryParam("category"))

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.ProjectListResponse{
		Projects: projects,
	}))
}

func (r *Routers) GetProject(c echo.Context) error {
	const op = "http.routers.GetProject"

	log := r.log.With(
		slog.String("op", op),
		slog.String("project_id", c.Param("id")),
	)

	project, err := r.Gallery.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		log.Warn("project fetch failed", sl.Err(err))

		var srvErr *models.ServerError
		if errors.As(err, &srvErr) && srvErr.StatusCode == http.StatusNotFound {
			return c.JSON(http.StatusNotFound, response.ErrProjectNotFound)
		}

		return r.upstreamError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(project))
}

// CreateProject godoc
// @Summary Создание проекта
// @Description Принимает multipart-форму, нормализует изображения и создает проект во внешнем API
// @Tags Проекты
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Название проекта"
// @Param description formData string false "Описание"
// @Param category formData string false "Код категории"
// @Param coverImage formData file true "Обложка"
// @Param images formData file false "Изображения галереи"
// @Success 201 {object} response.Response{data=dto.SubmitResponse}
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или нечитаемое изображение"
// @Failure 502 {object} response.ErrorResponse "Внешний API недоступен"
// @Router /api/v1/projects [post]
func (r *Routers) CreateProject(c echo.Context) error {
	return r.submitProject(c, uploader.ModeCreate, "")
}

// UpdateProject godoc
// @Summary Обновление проекта
// @Description То же, что создание, но PUT по id; отсутствие новых файлов означает "не менять"
// @Tags Проекты
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "ID проекта"
// @Param replaceImages formData boolean false "Заменить галерею целиком"
// @Success 200 {object} response.Response{data=dto.SubmitResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/projects/{id} [put]
func (r *Routers) UpdateProject(c echo.Context) error {
	return r.submitProject(c, uploader.ModeUpdate, c.Param("id"))
}

func (r *Routers) submitProject(c echo.Context, mode uploader.Mode, targetID string) error {
	const op = "http.routers.submitProject"

	log := r.log.With(
		slog.String("op", op),
		slog.String("mode", string(mode)),
	)

	ctx := c.Request().Context()

	draft := r.Drafts.NewDraft()
	// превью живут только на время запроса
	defer r.Drafts.Reset(draft)

	draft.Title = c.FormValue("title")
	draft.Description = c.FormValue("description")
	if category := c.FormValue("category"); category != "" {
		draft.Category = category
	}
	if mode == uploader.ModeUpdate {
		draft.ReplaceGallery = c.FormValue("replaceImages") == "true"
	}

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		log.Warn("bad multipart form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if form != nil {
		if fhs := form.File["coverImage"]; len(fhs) > 0 {
			asset, err := r.normalizeFile(ctx, fhs[0])
			if err != nil {
				return r.normalizeError(c, log, err)
			}
			r.Drafts.SetCoverImage(draft, asset)
		}

		inputs, err := readFormFiles(form.File["images"])
		if err != nil {
			log.Error("failed to read gallery files", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
		}

		if len(inputs) > 0 {
			assets, err := r.Normalizer.NormalizeBatch(ctx, inputs)
			if err != nil {
				return r.normalizeError(c, log, err)
			}
			r.Drafts.AppendGalleryImages(draft, assets)
		}
	}

	result, err := r.Uploads.Submit(ctx, draft, mode, targetID, func(percent int) {
		log.Debug("upload progress", slog.Int("percent", percent))
	})
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			log.Warn("validation failed", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", validationErr.Reason))
		}

		log.Error("submit failed", sl.Err(err))
		return r.upstreamError(c, err)
	}

	r.Gallery.Refresh(ctx)

	status := http.StatusOK
	if mode == uploader.ModeCreate {
		status = http.StatusCreated
	}

	return c.JSON(status, response.SuccessResponse(dto.SubmitResponse{
		Project:    result.Project,
		UploadTime: result.UploadTime,
	}))
}

// DeleteProject удаляет проект во внешнем API. Подтверждение удаления —
// обязанность вызывающего UI.
func (r *Routers) DeleteProject(c echo.Context) error {
	const op = "http.routers.DeleteProject"

	log := r.log.With(
		slog.String("op", op),
		slog.String("project_id", c.Param("id")),
	)

	if err := r.Gallery.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		log.Error("delete failed", sl.Err(err))
		return r.upstreamError(c, err)
	}

	return c.JSON(http.StatusOK, response.Response{
		Status:  "success",
		Message: "Project deleted successfully",
	})
}

// UploadPreview нормализует один файл и регистрирует его превью, чтобы форма
// могла показать результат без похода во внешнее API.
func (r *Routers) UploadPreview(c echo.Context) error {
	const op = "http.routers.UploadPreview"

	log := r.log.With(
		slog.String("op", op),
	)

	fh, err := c.FormFile("file")
	if err != nil {
		log.Warn("empty file in request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "File is required"))
	}

	asset, err := r.normalizeFile(c.Request().Context(), fh)
	if err != nil {
		return r.normalizeError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.PreviewResponse{
		Handle: asset.Preview.Handle,
		URL:    asset.Preview.URL,
		Width:  asset.Width,
		Height: asset.Height,
	}))
}

func (r *Routers) GetPreview(c echo.Context) error {
	preview, ok := r.Previews.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrPreviewNotFound)
	}

	return c.Blob(http.StatusOK, preview.ContentType, preview.Data)
}

func (r *Routers) DeletePreview(c echo.Context) error {
	const op = "http.routers.DeletePreview"

	if err := r.Previews.Release(c.Param("id")); err != nil {
		r.log.Warn("preview release failed",
			slog.String("op", op),
			slog.String("handle", c.Param("id")),
			sl.Err(err),
		)
		return c.JSON(http.StatusNotFound, response.ErrPreviewNotFound)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

// CreateInquiry обслуживает форму обратной связи публичной страницы.
func (r *Routers) CreateInquiry(c echo.Context) error {
	const op = "http.routers.CreateInquiry"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.InquiryRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid inquiry", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	link := r.Inquiries.Link(req.Name, req.Email, req.Project, req.Message)

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.InquiryResponse{
		WhatsAppURL: link,
	}))
}

func (r *Routers) normalizeFile(ctx context.Context, fh *multipart.FileHeader) (*models.ImageAsset, error) {
	data, err := readFormFile(fh)
	if err != nil {
		return nil, err
	}

	return r.Normalizer.Normalize(ctx, fh.Filename, data)
}

func (r *Routers) normalizeError(c echo.Context, log *slog.Logger, err error) error {
	log.Warn("image normalization failed", sl.Err(err))

	if errors.Is(err, imaging.ErrDecode) {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_image", "cannot decode image"))
	}

	return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", err.Error()))
}

// upstreamError транслирует ошибки коллаборатора: сообщение сервера отдается
// дословно с его статусом, сетевые сбои — 502.
func (r *Routers) upstreamError(c echo.Context, err error) error {
	var srvErr *models.ServerError
	if errors.As(err, &srvErr) {
		return c.JSON(srvErr.StatusCode, response.ErrorResponseWithDetails("server_error", srvErr.Message))
	}

	var transportErr *models.TransportError
	if errors.As(err, &transportErr) {
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("upstream_unreachable", transportErr.Error()))
	}

	return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "Internal server error"))
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

func readFormFiles(fhs []*multipart.FileHeader) ([]models.ImageInput, error) {
	inputs := make([]models.ImageInput, 0, len(fhs))
	for _, fh := range fhs {
		data, err := readFormFile(fh)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, models.ImageInput{
			Filename: fh.Filename,
			Data:     data,
		})
	}

	return inputs, nil
}
