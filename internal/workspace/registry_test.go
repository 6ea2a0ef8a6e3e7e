package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/logging"
	"github.com/pageza/mealtrack/backend/internal/mocks"
	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/realtime"
	"github.com/pageza/mealtrack/backend/internal/session"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return nil
}

func (r *recordingInvalidator) calls() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.users...)
}

type recordingConn struct {
	mu    sync.Mutex
	types []string
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	var e realtime.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, e.Type)
	return nil
}

func (c *recordingConn) SetWriteDeadline(time.Time) error { return nil }

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.types...)
}

func setup(t *testing.T, opts ...Option) (*Registry, *mocks.MockAuthService, *mocks.MockDataGateway) {
	t.Helper()
	auth := new(mocks.MockAuthService)
	data := new(mocks.MockDataGateway)
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return NewRegistry(auth, data, opts...), auth, data
}

func signedIn(auth *mocks.MockAuthService, data *mocks.MockDataGateway, token string) *gateway.Identity {
	id := &gateway.Identity{ID: uuid.New(), Email: "jiho@example.com", Token: token}
	auth.On("GetSession", mock.Anything, token).Return(id, nil)
	data.On("GetProfile", mock.Anything, id.ID).Return(&models.Profile{ID: id.ID, Email: id.Email}, nil)
	return id
}

func TestOpenCreatesOneWorkspacePerToken(t *testing.T) {
	r, auth, data := setup(t)
	id := signedIn(auth, data, "tok-1")

	var wg sync.WaitGroup
	results := make([]*Workspace, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws, err := r.Open(context.Background(), "tok-1")
			require.NoError(t, err)
			results[i] = ws
		}(i)
	}
	wg.Wait()

	for _, ws := range results {
		assert.Same(t, results[0], ws)
	}
	assert.Equal(t, id.ID, results[0].UserID)
	assert.NotNil(t, results[0].Store)
	assert.Equal(t, 1, r.Len())
	auth.AssertNumberOfCalls(t, "GetSession", 1)
}

func TestOpenRejectsUnknownToken(t *testing.T) {
	r, auth, _ := setup(t)
	auth.On("GetSession", mock.Anything, "stale").Return(nil, nil).Once()

	_, err := r.Open(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, r.Len())

	_, err = r.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestOpenGatewayFailureIsNotCached(t *testing.T) {
	r, auth, data := setup(t)
	auth.On("GetSession", mock.Anything, "tok").Return(nil, errors.New("connection refused")).Once()

	_, err := r.Open(context.Background(), "tok")
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, r.Len())

	signedIn(auth, data, "tok")
	ws, err := r.Open(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotNil(t, ws.Store)
}

func TestAdoptAfterSignIn(t *testing.T) {
	r, auth, data := setup(t)
	id := &gateway.Identity{ID: uuid.New(), Email: "seoyeon@example.com", Token: "fresh"}
	auth.On("SignInWithPassword", mock.Anything, "seoyeon@example.com", "password1").Return(id, nil).Once()
	data.On("GetProfile", mock.Anything, id.ID).Return(&models.Profile{ID: id.ID, Email: id.Email}, nil).Once()

	ws := r.NewAnonymous()
	assert.ErrorIs(t, r.Adopt(ws), ErrNotAuthenticated)

	require.NoError(t, ws.Session.SignInWithPassword(context.Background(), "seoyeon@example.com", "password1"))
	require.NoError(t, r.Adopt(ws))

	got, err := r.Open(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Same(t, ws, got)
	assert.Equal(t, id.ID, got.UserID)
	auth.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
}

func TestCloseSignsOut(t *testing.T) {
	r, auth, data := setup(t)
	signedIn(auth, data, "tok")
	auth.On("SignOut", mock.Anything, "tok").Return(nil).Twice()

	ws, err := r.Open(context.Background(), "tok")
	require.NoError(t, err)

	require.NoError(t, r.Close(context.Background(), "tok"))
	assert.Zero(t, r.Len())
	assert.Nil(t, ws.Session.Identity())

	// Unknown tokens are still revoked remotely.
	require.NoError(t, r.Close(context.Background(), "tok"))
	auth.AssertExpectations(t)
}

func TestSweepEvictsIdleWorkspaces(t *testing.T) {
	r, auth, data := setup(t, WithIdleTimeout(time.Minute))
	signedIn(auth, data, "old")
	signedIn(auth, data, "new")

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return start }
	_, err := r.Open(context.Background(), "old")
	require.NoError(t, err)

	r.now = func() time.Time { return start.Add(50 * time.Second) }
	_, err = r.Open(context.Background(), "new")
	require.NoError(t, err)

	assert.Equal(t, 1, r.Sweep(start.Add(90*time.Second)))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.Sweep(start.Add(3*time.Minute)))
	assert.Zero(t, r.Len())
}

func TestStoreMutationInvalidatesStatsAndBroadcasts(t *testing.T) {
	inv := &recordingInvalidator{}
	hub := realtime.NewHub(logging.Discard())
	r, auth, data := setup(t, WithStats(inv), WithHub(hub))
	id := signedIn(auth, data, "tok")

	ws, err := r.Open(context.Background(), "tok")
	require.NoError(t, err)

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	food := &models.Food{ID: uuid.New(), Name: "사과", CaloriesPer100g: 52}
	meal := &models.Meal{ID: uuid.New(), UserID: id.ID, Date: "2024-01-01", MealType: models.MealTypeBreakfast, TotalCalories: 78}
	item := &models.MealItem{ID: uuid.New(), MealID: meal.ID, FoodID: food.ID, Quantity: 150, Calories: 78}

	data.On("GetFood", mock.Anything, food.ID).Return(food, nil).Once()
	data.On("CreateMeal", mock.Anything, id.ID, date, models.MealTypeBreakfast, 78).Return(meal, nil).Once()
	data.On("InsertMealItem", mock.Anything, meal.ID, food.ID, 150, 78).Return(item, nil).Once()
	withItem := *meal
	withItem.MealItems = []models.MealItem{*item}
	data.On("QueryMeals", mock.Anything, id.ID, date).Return([]models.Meal{withItem}, nil).Once()

	ws.Store.SetCurrentDate(date)
	require.NoError(t, ws.Store.AddMealItem(context.Background(), models.MealTypeBreakfast, food.ID, 150, id.ID))

	assert.Equal(t, []uuid.UUID{id.ID}, inv.calls())
	assert.Equal(t, 78, ws.Store.TotalCalories())
	data.AssertExpectations(t)
}

func TestSnapshotsStayWithinWorkspace(t *testing.T) {
	hub := realtime.NewHub(logging.Discard())
	r, auth, data := setup(t, WithHub(hub))

	userID := uuid.New()
	for _, token := range []string{"laptop", "phone"} {
		auth.On("GetSession", mock.Anything, token).Return(&gateway.Identity{ID: userID, Email: "jiho@example.com", Token: token}, nil).Once()
	}
	data.On("GetProfile", mock.Anything, userID).Return(&models.Profile{ID: userID, Email: "jiho@example.com"}, nil)

	laptop, err := r.Open(context.Background(), "laptop")
	require.NoError(t, err)
	phone, err := r.Open(context.Background(), "phone")
	require.NoError(t, err)
	require.NotEqual(t, laptop.ID, phone.ID)
	require.Equal(t, laptop.UserID, phone.UserID)

	lConn, pConn := &recordingConn{}, &recordingConn{}
	lClient := realtime.NewClient(userID, laptop.ID, lConn)
	pClient := realtime.NewClient(userID, phone.ID, pConn)
	hub.Register(lClient)
	hub.Register(pClient)

	done := make(chan struct{}, 2)
	go func() { lClient.WritePump(); done <- struct{}{} }()
	go func() { pClient.WritePump(); done <- struct{}{} }()

	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	data.On("QueryMeals", mock.Anything, userID, date).Return([]models.Meal{}, nil).Once()
	require.NoError(t, phone.Store.FetchMeals(context.Background(), date, userID))

	hub.Unregister(lClient)
	hub.Unregister(pClient)
	<-done
	<-done

	assert.Contains(t, pConn.events(), realtime.EventSnapshot)
	assert.NotContains(t, lConn.events(), realtime.EventSnapshot)
}
