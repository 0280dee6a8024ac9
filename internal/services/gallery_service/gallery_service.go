package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	cache "github.com/patrickmn/go-cache"

	"portfolio_admin/internal/domain/models"
	"portfolio_admin/internal/lib/logger/sl"
)

const (
	snapshotKey   = "projects"
	categoriesKey = "categories"
)

// GalleryAPI — читающая/удаляющая часть внешнего API.
type GalleryAPI interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProjects(ctx context.Context, category string) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// GalleryService держит последний полученный снимок коллекции и текущий
// выбранный проект. Источник истины всегда сервер: после каждой мутации
// коллекция перечитывается, никакого кеширования сверх "последнего снимка
// для отрисовки" нет. Опрос по таймеру не используется — обновление только
// явное или после мутации.
type GalleryService struct {
	log  *slog.Logger
	api  GalleryAPI
	snap *cache.Cache

	mu       sync.RWMutex
	filter   string
	selected *models.Project
}

func New(log *slog.Logger, api GalleryAPI) *GalleryService {
	return &GalleryService{
		log:  log,
		api:  api,
		snap: cache.New(cache.NoExpiration, 0),
	}
}

// Categories возвращает каталог категорий. Каталог запрашивается один раз и
// далее отдается из снимка. Ошибка чтения деградирует до пустого каталога
// с диагностикой в логе — UI остается рабочим.
func (s *GalleryService) Categories(ctx context.Context) []models.Category {
	const op = "gallery_service.Categories"

	if v, ok := s.snap.Get(categoriesKey); ok {
		return v.([]models.Category)
	}

	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to fetch categories", slog.String("op", op), sl.Err(err))
		return []models.Category{}
	}

	s.snap.Set(categoriesKey, categories, cache.NoExpiration)

	return categories
}

// ListProjects перечитывает коллекцию с опциональным фильтром по категории и
// обновляет снимок. Ошибка чтения деградирует до пустого списка: UI покажет
// "no projects found", а не упадет.
func (s *GalleryService) ListProjects(ctx context.Context, category string) []models.Project {
	const op = "gallery_service.ListProjects"

	log := s.log.With(
		slog.String("op", op),
		slog.String("category", category),
	)

	projects, err := s.api.ListProjects(ctx, category)
	if err != nil {
		log.Error("failed to fetch projects", sl.Err(err))
		return []models.Project{}
	}

	if projects == nil {
		projects = []models.Project{}
	}

	s.mu.Lock()
	s.filter = category
	s.mu.Unlock()

	s.snap.Set(snapshotKey, projects, cache.NoExpiration)

	log.Debug("projects fetched", slog.Int("count", len(projects)))

	return projects
}

// Snapshot возвращает последний успешно полученный список без похода в сеть.
func (s *GalleryService) Snapshot() []models.Project {
	if v, ok := s.snap.Get(snapshotKey); ok {
		return v.([]models.Project)
	}

	return []models.Project{}
}

// GetProject запрашивает один проект и делает его выбранным.
func (s *GalleryService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	const op = "gallery_service.GetProject"

	project, err := s.api.GetProject(ctx, id)
	if err != nil {
		s.log.Error("failed to fetch project",
			slog.String("op", op),
			slog.String("project_id", id),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.selected = project
	s.mu.Unlock()

	return project, nil
}

// Selected возвращает текущий выбранный проект, nil если выбора нет.
func (s *GalleryService) Selected() *models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected
}

// ClearSelection снимает выбор проекта.
func (s *GalleryService) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// DeleteProject удаляет проект. При успехе перечитывает коллекцию и, если
// удален выбранный проект, снимает выбор.
func (s *GalleryService) DeleteProject(ctx context.Context, id string) error {
	const op = "gallery_service.DeleteProject"

	log := s.log.With(
		slog.String("op", op),
		slog.String("project_id", id),
	)

	if err := s.api.DeleteProject(ctx, id); err != nil {
		log.Error("failed to delete project", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}
	filter := s.filter
	s.mu.Unlock()

	s.ListProjects(ctx, filter)

	log.Info("project deleted")

	return nil
}

// Refresh перечитывает коллекцию с текущим фильтром и, если открыт один
// проект, перечитывает и его — локальное состояние сводится к серверному
// после мутаций.
func (s *GalleryService) Refresh(ctx context.Context) {
	const op = "gallery_service.Refresh"

	s.mu.RLock()
	filter := s.filter
	selected := s.selected
	s.mu.RUnlock()

	s.ListProjects(ctx, filter)

	if selected != nil {
		if _, err := s.GetProject(ctx, selected.ID); err != nil {
			s.log.Warn("failed to refresh selected project",
				slog.String("op", op),
				slog.String("project_id", selected.ID),
				sl.Err(err),
			)
		}
	}
}
