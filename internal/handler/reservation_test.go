package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/reservation/internal/catalog"
	"github.com/campushub/reservation/internal/middleware"
	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/queue"
	"github.com/campushub/reservation/internal/repository"
	"github.com/campushub/reservation/internal/utils"
)

const (
	testSecret   = "test-secret"
	testRoomID   = "6f1b0c52-7a3f-4b86-9a3e-3d3c2b1a0f9e"
	testRoomName = "Study Room 101"
)

type stubCatalog struct{}

func (stubCatalog) ResourceName(_ context.Context, id, _ string) (string, error) {
	if id == testRoomID {
		return testRoomName, nil
	}
	return "", catalog.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.NotificationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) all() []queue.NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.NotificationEvent(nil), p.events...)
}

type fixture struct {
	e      *echo.Echo
	store  *repository.MemoryReservationStore
	pub    *recordingPublisher
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryReservationStore()
	pub := &recordingPublisher{}
	h := &ReservationHandler{
		Store:   store,
		Catalog: stubCatalog{},
		Events:  pub,
		Log:     zerolog.Nop(),
	}

	e := echo.New()
	authed := middleware.JWTAuth(testSecret)
	admin := middleware.RequireRole(string(model.RoleAdmin))
	v1 := e.Group("/api/v1", authed)
	v1.POST("/reservations", h.Create)
	v1.GET("/reservations/my", h.ListMine)
	v1.GET("/reservations", h.ListAll, admin)
	v1.GET("/reservations/:id", h.Get)
	v1.PUT("/reservations/:id", h.Update)
	v1.POST("/reservations/:id/cancel", h.Cancel)
	v1.POST("/reservations/:id/complete", h.Complete, admin)
	v1.POST("/reservations/:id/no-show", h.NoShow, admin)
	v1.GET("/availability/:resource_id", h.Availability)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &fixture{e: e, store: store, pub: pub, server: srv}
}

func token(t *testing.T, userID int64, username, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, userID, username, role, time.Minute)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, tok, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func createBody(start, end string) string {
	return `{"resource_id":"` + testRoomID + `","date":"2025-06-01","start_time":"` + start + `","end_time":"` + end + `"}`
}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")

	resp, body := f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, testRoomName, body["resource_name"])
	assert.Equal(t, "alice", body["username"])

	events := f.pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, queue.EventReservationCreated, events[0].EventType)
	assert.Equal(t, body["id"], events[0].ReservationID)
}

func TestCreateConflict(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")
	bob := token(t, 2, "bob", "student")

	resp, _ := f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/v1/reservations", bob, createBody("09:30", "10:30"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "time slot is not available", body["error"])

	// back-to-back is not a conflict
	resp, _ = f.do(t, http.MethodPost, "/api/v1/reservations", bob, createBody("10:00", "11:00"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, f.pub.all(), 2)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")

	resp, _ := f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("10:00", "09:00"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("9am", "10am"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/reservations", alice,
		`{"resource_id":"not-in-catalog","date":"2025-06-01","start_time":"09:00","end_time":"10:00"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodPost, "/api/v1/reservations", "", createBody("09:00", "10:00"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, f.pub.all())
}

func TestGetOwnership(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")
	bob := token(t, 2, "bob", "student")
	admin := token(t, 3, "root", "admin")

	_, created := f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))
	id := created["id"].(string)

	resp, _ := f.do(t, http.MethodGet, "/api/v1/reservations/"+id, alice, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/reservations/"+id, bob, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/reservations/"+id, admin, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// missing ids 404 before any ownership check
	resp, _ = f.do(t, http.MethodGet, "/api/v1/reservations/not-a-uuid", bob, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelFlow(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")

	_, created := f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))
	id := created["id"].(string)

	resp, body := f.do(t, http.MethodPost, "/api/v1/reservations/"+id+"/cancel", alice, `{"reason":"sick"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", body["status"])
	assert.NotNil(t, body["cancelled_at"])

	events := f.pub.all()
	require.Len(t, events, 2)
	assert.Equal(t, queue.EventReservationCancelled, events[1].EventType)
	assert.Equal(t, "sick", events[1].AdditionalData["reason"])

	resp, body = f.do(t, http.MethodPost, "/api/v1/reservations/"+id+"/cancel", alice, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "reservation is already cancelled", body["error"])

	// the slot opened up again
	resp, _ = f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestUpdateReschedule(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")

	_, created := f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))
	f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("10:00", "11:00"))
	id := created["id"].(string)

	resp, _ := f.do(t, http.MethodPut, "/api/v1/reservations/"+id, alice,
		`{"start_time":"10:00","end_time":"11:00"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := f.do(t, http.MethodPut, "/api/v1/reservations/"+id, alice,
		`{"start_time":"11:00","end_time":"12:00"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "11:00", body["start_time"])

	// rescheduling emits no event
	assert.Len(t, f.pub.all(), 2)
}

func TestCompleteAdminOnly(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")
	admin := token(t, 3, "root", "admin")

	_, created := f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))
	id := created["id"].(string)

	resp, _ := f.do(t, http.MethodPost, "/api/v1/reservations/"+id+"/complete", alice, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/v1/reservations/"+id+"/complete", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["status"])

	// completions are silent
	assert.Len(t, f.pub.all(), 1)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/reservations/"+id+"/no-show", admin, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")
	bob := token(t, 2, "bob", "student")

	f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("13:00", "14:00"))
	f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))
	f.do(t, http.MethodPost, "/api/v1/reservations", bob, createBody("10:00", "11:00"))

	resp, body := f.do(t, http.MethodGet, "/api/v1/reservations/my", alice, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["total"])
	items := body["reservations"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "09:00", first["start_time"], "earliest start first")
}

func TestListMineUpcomingOnlyQueryParam(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")

	past := `{"resource_id":"` + testRoomID + `","date":"2000-01-01","start_time":"09:00","end_time":"10:00"}`
	future := `{"resource_id":"` + testRoomID + `","date":"2999-01-01","start_time":"09:00","end_time":"10:00"}`
	resp, _ := f.do(t, http.MethodPost, "/api/v1/reservations", alice, past)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/v1/reservations", alice, future)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, "/api/v1/reservations/my?upcoming_only=true", alice, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["reservations"].([]any)
	require.Len(t, items, 1)
	only := items[0].(map[string]any)
	assert.Equal(t, "2999-01-01", only["date"])

	// without the filter both come back
	resp, body = f.do(t, http.MethodGet, "/api/v1/reservations/my", alice, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["reservations"].([]any), 2)
}

func TestListAllAdminOnly(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")
	admin := token(t, 3, "root", "admin")

	f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))

	resp, _ := f.do(t, http.MethodGet, "/api/v1/reservations", alice, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, "/api/v1/reservations", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])
}

func TestAvailabilityGrid(t *testing.T) {
	f := newFixture(t)
	alice := token(t, 1, "alice", "student")

	f.do(t, http.MethodPost, "/api/v1/reservations", alice, createBody("09:00", "10:00"))

	resp, body := f.do(t, http.MethodGet,
		"/api/v1/availability/"+testRoomID+"?date=2025-06-01", alice, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slots := body["slots"].([]any)
	require.Len(t, slots, 14)

	first := slots[0].(map[string]any)
	assert.Equal(t, "08:00", first["start_time"])
	assert.Equal(t, true, first["is_available"])
	second := slots[1].(map[string]any)
	assert.Equal(t, "09:00", second["start_time"])
	assert.Equal(t, false, second["is_available"])

	resp, _ = f.do(t, http.MethodGet,
		"/api/v1/availability/"+testRoomID+"?date=junk", alice, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
