package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio_admin/internal/domain/models"
	services "portfolio_admin/internal/services/gallery_service"
)

type MockGalleryAPI struct {
	mock.Mock
}

func (m *MockGalleryAPI) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockGalleryAPI) ListProjects(ctx context.Context, category string) ([]models.Project, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockGalleryAPI) GetProject(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockGalleryAPI) DeleteProject(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newService(api *MockGalleryAPI) *services.GalleryService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.New(log, api)
}

func TestListProjectsUpdatesSnapshot(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	projects := []models.Project{
		{ID: "p1", Title: "Logo Pack"},
		{ID: "p2", Title: "Shoot"},
	}

	api.On("ListProjects", mock.Anything, "").Return(projects, nil).Once()

	got := svc.ListProjects(context.Background(), "")
	assert.Equal(t, projects, got)
	assert.Equal(t, projects, svc.Snapshot())

	api.AssertExpectations(t)
}

func TestListProjectsDegradesToEmpty(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	good := []models.Project{{ID: "p1"}}

	api.On("ListProjects", mock.Anything, "").Return(good, nil).Once()
	api.On("ListProjects", mock.Anything, "photography").
		Return(nil, &models.TransportError{Err: io.ErrUnexpectedEOF}).Once()

	svc.ListProjects(context.Background(), "")

	got := svc.ListProjects(context.Background(), "photography")
	assert.Empty(t, got)

	// снимок не затирается неудачным чтением
	assert.Equal(t, good, svc.Snapshot())
}

func TestCategoriesFetchedOnce(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	categories := []models.Category{
		{Value: "graphic-design", Label: "Graphic Design"},
		{Value: "photography", Label: "Photography"},
	}

	api.On("ListCategories", mock.Anything).Return(categories, nil).Once()

	assert.Equal(t, categories, svc.Categories(context.Background()))
	assert.Equal(t, categories, svc.Categories(context.Background()))

	api.AssertNumberOfCalls(t, "ListCategories", 1)
}

func TestCategoriesDegradeToEmpty(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	api.On("ListCategories", mock.Anything).
		Return(nil, &models.ServerError{StatusCode: 500, Message: "boom"})

	got := svc.Categories(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetProjectSetsSelection(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	project := &models.Project{ID: "p1", Title: "Logo Pack"}
	api.On("GetProject", mock.Anything, "p1").Return(project, nil)

	got, err := svc.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, project, got)
	assert.Equal(t, project, svc.Selected())

	svc.ClearSelection()
	assert.Nil(t, svc.Selected())
}

func TestGetProjectErrorKeepsSelection(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	project := &models.Project{ID: "p1"}
	api.On("GetProject", mock.Anything, "p1").Return(project, nil)
	api.On("GetProject", mock.Anything, "missing").
		Return(nil, &models.ServerError{StatusCode: 404, Message: "Project not found"})

	_, err := svc.GetProject(context.Background(), "p1")
	require.NoError(t, err)

	_, err = svc.GetProject(context.Background(), "missing")
	require.Error(t, err)

	var srvErr *models.ServerError
	assert.ErrorAs(t, err, &srvErr)
	assert.Equal(t, "p1", svc.Selected().ID)
}

func TestDeleteProjectClearsSelectionAndRefetches(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	project := &models.Project{ID: "p1"}
	api.On("GetProject", mock.Anything, "p1").Return(project, nil)
	api.On("ListProjects", mock.Anything, "graphic-design").
		Return([]models.Project{{ID: "p1"}, {ID: "p2"}}, nil).Once()

	svc.ListProjects(context.Background(), "graphic-design")
	_, err := svc.GetProject(context.Background(), "p1")
	require.NoError(t, err)

	api.On("DeleteProject", mock.Anything, "p1").Return(nil).Once()
	// перечитывание после мутации сохраняет текущий фильтр
	api.On("ListProjects", mock.Anything, "graphic-design").
		Return([]models.Project{{ID: "p2"}}, nil).Once()

	require.NoError(t, svc.DeleteProject(context.Background(), "p1"))

	assert.Nil(t, svc.Selected())
	assert.Equal(t, []models.Project{{ID: "p2"}}, svc.Snapshot())

	api.AssertExpectations(t)
}

func TestDeleteProjectKeepsOtherSelection(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	project := &models.Project{ID: "p2"}
	api.On("GetProject", mock.Anything, "p2").Return(project, nil)
	api.On("ListProjects", mock.Anything, "").Return([]models.Project{{ID: "p2"}}, nil)
	api.On("DeleteProject", mock.Anything, "p1").Return(nil)

	_, err := svc.GetProject(context.Background(), "p2")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(context.Background(), "p1"))

	assert.Equal(t, "p2", svc.Selected().ID)
}

func TestDeleteProjectErrorPassedThrough(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	api.On("DeleteProject", mock.Anything, "p1").
		Return(&models.ServerError{StatusCode: 404, Message: "Project not found"})

	err := svc.DeleteProject(context.Background(), "p1")
	require.Error(t, err)

	var srvErr *models.ServerError
	assert.ErrorAs(t, err, &srvErr)

	// коллекция при неудачном удалении не перечитывается
	api.AssertNotCalled(t, "ListProjects")
}

func TestRefreshRefetchesListAndSelected(t *testing.T) {
	api := &MockGalleryAPI{}
	svc := newService(api)

	api.On("ListProjects", mock.Anything, "").
		Return([]models.Project{{ID: "p1", Likes: 1}}, nil)
	api.On("GetProject", mock.Anything, "p1").
		Return(&models.Project{ID: "p1", Likes: 1}, nil).Once()

	svc.ListProjects(context.Background(), "")
	_, err := svc.GetProject(context.Background(), "p1")
	require.NoError(t, err)

	api.On("GetProject", mock.Anything, "p1").
		Return(&models.Project{ID: "p1", Likes: 5}, nil).Once()

	svc.Refresh(context.Background())

	assert.Equal(t, 5, svc.Selected().Likes)
	api.AssertNumberOfCalls(t, "ListProjects", 2)
}
