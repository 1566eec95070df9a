package store_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockCategoryRepository is a testify mock of repositories.CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, d models.NameDraft) (models.Category, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, id string, d models.NameDraft) (models.Category, error) {
	args := m.Called(ctx, id, d)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	panties = models.Category{ID: "1", Name: "Panties"}
	bras    = models.Category{ID: "2", Name: "Bras"}
)

func TestFetchAllReplacesCollection(t *testing.T) {
	repo := new(MockCategoryRepository)
	repo.On("List", mock.Anything).Return([]models.Category{panties}, nil).Once()
	repo.On("List", mock.Anything).Return([]models.Category{bras}, nil).Once()
	s := store.New[models.Category, models.NameDraft]("categories", repo)

	assert.False(t, s.Loaded())
	require.NoError(t, s.FetchAll(context.Background()))
	assert.Equal(t, []models.Category{panties}, s.Items())
	require.NoError(t, s.FetchAll(context.Background()))
	assert.Equal(t, []models.Category{bras}, s.Items())
	assert.True(t, s.Loaded())
	assert.False(t, s.Loading())
	repo.AssertExpectations(t)
}

func TestFailedFetchKeepsPreviousCollection(t *testing.T) {
	repo := new(MockCategoryRepository)
	repo.On("List", mock.Anything).Return([]models.Category{panties}, nil).Once()
	backendDown := &apiclient.RequestError{Status: http.StatusInternalServerError, Body: "boom"}
	repo.On("List", mock.Anything).Return(nil, backendDown).Once()
	s := store.New[models.Category, models.NameDraft]("categories", repo)

	require.NoError(t, s.FetchAll(context.Background()))
	err := s.FetchAll(context.Background())

	assert.ErrorIs(t, err, backendDown)
	assert.Equal(t, []models.Category{panties}, s.Items())
}

func TestCreateAppendsCanonicalRecord(t *testing.T) {
	repo := new(MockCategoryRepository)
	repo.On("List", mock.Anything).Return([]models.Category{panties}, nil).Once()
	repo.On("Create", mock.Anything, models.NameDraft{Name: " Bras "}).Return(bras, nil).Once()
	s := store.New[models.Category, models.NameDraft]("categories", repo)
	require.NoError(t, s.FetchAll(context.Background()))

	created, err := s.Create(context.Background(), models.NameDraft{Name: " Bras "})

	require.NoError(t, err)
	assert.Equal(t, bras, created)
	assert.Equal(t, []models.Category{panties, bras}, s.Items())
}

func TestUpdateOfAbsentIDAddsNothing(t *testing.T) {
	repo := new(MockCategoryRepository)
	repo.On("List", mock.Anything).Return([]models.Category{panties, bras}, nil).Once()
	repo.On("Update", mock.Anything, "42", models.NameDraft{Name: "New"}).
		Return(models.Category{ID: "42", Name: "New"}, nil).Once()
	s := store.New[models.Category, models.NameDraft]("categories", repo)
	require.NoError(t, s.FetchAll(context.Background()))

	_, err := s.Update(context.Background(), "42", models.NameDraft{Name: "New"})

	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	_, found := s.Find("42")
	assert.False(t, found)
}

func TestUpdateReplacesMatchingElement(t *testing.T) {
	repo := new(MockCategoryRepository)
	repo.On("List", mock.Anything).Return([]models.Category{panties, bras}, nil).Once()
	renamed := models.Category{ID: "1", Name: "Briefs"}
	repo.On("Update", mock.Anything, "1", models.NameDraft{Name: "Briefs"}).Return(renamed, nil).Once()
	s := store.New[models.Category, models.NameDraft]("categories", repo)
	require.NoError(t, s.FetchAll(context.Background()))

	_, err := s.Update(context.Background(), "1", models.NameDraft{Name: "Briefs"})

	require.NoError(t, err)
	assert.Equal(t, []models.Category{renamed, bras}, s.Items())
}

func TestFailedUpdateKeepsCollection(t *testing.T) {
	repo := new(MockCategoryRepository)
	repo.On("List", mock.Anything).Return([]models.Category{panties}, nil).Once()
	repo.On("Update", mock.Anything, "1", mock.Anything).
		Return(models.Category{}, &apiclient.RequestError{Status: http.StatusBadRequest}).Once()
	s := store.New[models.Category, models.NameDraft]("categories", repo)
	require.NoError(t, s.FetchAll(context.Background()))

	_, err := s.Update(context.Background(), "1", models.NameDraft{Name: "x"})

	assert.Equal(t, http.StatusBadRequest, apiclient.StatusOf(err))
	assert.Equal(t, []models.Category{panties}, s.Items())
}

func TestDeleteIsNotOptimistic(t *testing.T) {
	repo := new(MockCategoryRepository)
	repo.On("List", mock.Anything).Return([]models.Category{panties, bras}, nil).Once()
	repo.On("Delete", mock.Anything, "1").Return(&apiclient.NetworkError{Err: errors.New("refused")}).Once()
	repo.On("Delete", mock.Anything, "1").Return(nil).Once()
	s := store.New[models.Category, models.NameDraft]("categories", repo)
	require.NoError(t, s.FetchAll(context.Background()))

	err := s.Delete(context.Background(), "1")
	assert.True(t, apiclient.IsNetwork(err))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Delete(context.Background(), "1"))
	assert.Equal(t, []models.Category{bras}, s.Items())
}

func TestSecondDeleteNeverCorruptsCollection(t *testing.T) {
	repo := repositories.NewMockCategoryRepository()
	repo.Seed(panties, bras)
	s := store.New[models.Category, models.NameDraft]("categories", repo)
	ctx := context.Background()
	require.NoError(t, s.FetchAll(ctx))

	require.NoError(t, s.Delete(ctx, "1"))
	err := s.Delete(ctx, "1")

	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
	assert.Equal(t, []models.Category{bras}, s.Items())
}

func TestCreateThenFetchConverges(t *testing.T) {
	repo := repositories.NewMockColorRepository()
	repo.Seed(models.Color{ID: "c1", Name: "Red"})
	other := store.New[models.Color, models.NameDraft]("colors", repo)
	s := store.New[models.Color, models.NameDraft]("colors", repo)
	ctx := context.Background()

	require.NoError(t, s.FetchAll(ctx))
	_, err := other.Create(ctx, models.NameDraft{Name: "Blue"})
	require.NoError(t, err)
	_, err = s.Create(ctx, models.NameDraft{Name: "Black"})
	require.NoError(t, err)
	require.NoError(t, s.FetchAll(ctx))

	backend, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, backend, s.Items())
	assert.Len(t, s.Items(), 3)
}

// gatedRepository blocks the first List call until released.
type gatedRepository struct {
	repositories.CategoryRepository
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRepository) List(ctx context.Context) ([]models.Category, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()

	if call == 1 {
		close(g.entered)
		<-g.release
		return []models.Category{panties}, nil
	}
	return []models.Category{bras}, nil
}

func TestStaleFetchResponseIsDiscarded(t *testing.T) {
	repo := &gatedRepository{entered: make(chan struct{}), release: make(chan struct{})}
	s := store.New[models.Category, models.NameDraft]("categories", repo)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.FetchAll(ctx) }()
	<-repo.entered
	assert.True(t, s.Loading())

	require.NoError(t, s.FetchAll(ctx))
	assert.Equal(t, []models.Category{bras}, s.Items())

	close(repo.release)
	require.NoError(t, <-done)

	assert.Equal(t, []models.Category{bras}, s.Items())
	assert.False(t, s.Loading())
}

// cancellingRepository cancels the caller's context before answering.
type cancellingRepository struct {
	repositories.CategoryRepository
	cancel context.CancelFunc
}

func (c *cancellingRepository) List(context.Context) ([]models.Category, error) {
	c.cancel()
	return []models.Category{bras}, nil
}

func TestResponseAfterCallerGoneIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := store.New[models.Category, models.NameDraft]("categories", &cancellingRepository{cancel: cancel})

	err := s.FetchAll(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Items())
	assert.False(t, s.Loaded())
}

func TestEnsureLoadedSkipsWhenPopulated(t *testing.T) {
	repo := new(MockCategoryRepository)
	repo.On("List", mock.Anything).Return([]models.Category{panties}, nil).Once()
	s := store.New[models.Category, models.NameDraft]("categories", repo)

	require.NoError(t, s.EnsureLoaded(context.Background()))
	require.NoError(t, s.EnsureLoaded(context.Background()))

	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestItemsReturnsCopy(t *testing.T) {
	repo := repositories.NewMockCategoryRepository()
	repo.Seed(panties)
	s := store.New[models.Category, models.NameDraft]("categories", repo)
	require.NoError(t, s.FetchAll(context.Background()))

	items := s.Items()
	items[0].Name = "changed"

	got, ok := s.Find("1")
	require.True(t, ok)
	assert.Equal(t, "Panties", got.Name)
}
