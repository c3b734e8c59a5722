package server_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelab/vacancyload/internal/config"
	"github.com/hirelab/vacancyload/internal/model"
	"github.com/hirelab/vacancyload/internal/ratelimit"
	"github.com/hirelab/vacancyload/internal/server"
	"github.com/hirelab/vacancyload/internal/session"
	"github.com/hirelab/vacancyload/internal/store"
)

type testEnv struct {
	handler http.Handler
	store   *store.Store
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sessions, err := session.NewRegistry([]config.Credential{
		{Identity: "a@x.com", Secret: "pw1"},
		{Identity: "b@x.com", Secret: "pw2"},
	})
	require.NoError(t, err)

	token, err := sessions.SignIn("a@x.com", "pw1")
	require.NoError(t, err)

	st := store.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := server.New(server.Config{
		Store:    st,
		Sessions: sessions,
		Logger:   logger,
		Version:  "test",
	})

	return &testEnv{handler: srv.Handler(), store: st, token: token}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope model.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestSignInWithoutHeaderSucceeds(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/signin", "", model.SignInRequest{Identity: "a@x.com", Secret: "pw1"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeData[model.SignInResponse](t, rec)
	assert.Equal(t, env.token, resp.Token)
}

func TestSignInWrongSecret(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/signin", "", model.SignInRequest{Identity: "a@x.com", Secret: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.ErrCodeNotFound, errorCode(t, rec))
}

func TestSignInWithBadBearerIsRejected(t *testing.T) {
	// The bypass applies only when no Authorization header is present.
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/signin", "wrongtoken", model.SignInRequest{Identity: "a@x.com", Secret: "pw1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, model.ErrCodeUnauthenticated, errorCode(t, rec))
}

func TestSignUpIsAnonymousButUnimplemented(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/signup", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestCreateWithoutHeaderIsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/vacancies", "", model.CreateVacancyRequest{
		Title: "Engineer", Division: model.DivisionDevelopment,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, model.ErrCodeUnauthenticated, errorCode(t, rec))
	assert.Zero(t, env.store.Len(), "gate must reject before the handler runs")
}

func TestCreateWithUnknownTokenIsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/vacancies", "not-a-token", model.CreateVacancyRequest{
		Title: "Engineer", Division: model.DivisionDevelopment,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVacancyCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/vacancies", env.token, model.CreateVacancyRequest{
		Title:       "Engineer",
		Description: "builds things",
		Division:    model.DivisionDevelopment,
		Country:     "NL",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData[model.Vacancy](t, rec)
	require.NotEmpty(t, created.ID)

	rec = env.do(http.MethodGet, "/v1/vacancies/"+created.ID, env.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[model.Vacancy](t, rec)
	assert.Equal(t, created, got)

	rec = env.do(http.MethodPut, "/v1/vacancies/"+created.ID, env.token, model.UpdateVacancyRequest{
		Title:       "Senior Engineer",
		Description: "builds bigger things",
		Division:    model.DivisionSecurity,
		Country:     "DE",
		Views:       7,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeData[model.Vacancy](t, rec)
	assert.Equal(t, "Senior Engineer", updated.Title)
	assert.Equal(t, 7, updated.Views)

	rec = env.do(http.MethodDelete, "/v1/vacancies/"+created.ID, env.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decodeData[model.DeleteVacancyResponse](t, rec)
	assert.True(t, deleted.Success)

	rec = env.do(http.MethodGet, "/v1/vacancies/"+created.ID, env.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.ErrCodeNotFound, errorCode(t, rec))
}

func TestCreateDuplicateTitleConflicts(t *testing.T) {
	env := newTestEnv(t)

	req := model.CreateVacancyRequest{Title: "Engineer", Division: model.DivisionDevelopment}
	rec := env.do(http.MethodPost, "/v1/vacancies", env.token, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/v1/vacancies", env.token, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, model.ErrCodeAlreadyExists, errorCode(t, rec))
}

func TestNotFoundCarriesOffendingID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/vacancies/deadbeef", env.token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var envelope model.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Error.Message, "deadbeef")
}

func TestCreateRejectsUnknownDivision(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/vacancies", env.token, map[string]any{
		"title":    "Engineer",
		"division": "marketing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeInvalidInput, errorCode(t, rec))
}

func TestListStreamsNDJSONPage(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed(25)

	rec := env.do(http.MethodGet, "/v1/vacancies?page=1&limit=10", env.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	var titles []string
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		var v model.Vacancy
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &v))
		titles = append(titles, v.Title)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, titles, 10)
	for i, title := range titles {
		assert.Equal(t, "Title"+strconv.Itoa(i), title, "collection order preserved")
	}
}

func TestListPagesReconstructCollection(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed(25)

	var total int
	for page := 1; page <= 3; page++ {
		rec := env.do(http.MethodGet, "/v1/vacancies?page="+strconv.Itoa(page)+"&limit=10", env.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		total += strings.Count(rec.Body.String(), "\n")
	}
	assert.Equal(t, 25, total)
}

func TestListOutOfRangeIsEmptyNotError(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed(5)

	rec := env.do(http.MethodGet, "/v1/vacancies?page=99&limit=10", env.token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHealthIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed(3)

	rec := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeData[model.HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Vacancies)
}

func TestResponsesCarryRequestID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRateLimitReturns429(t *testing.T) {
	sessions, err := session.NewRegistry([]config.Credential{
		{Identity: "a@x.com", Secret: "pw1"},
	})
	require.NoError(t, err)
	token, err := sessions.SignIn("a@x.com", "pw1")
	require.NoError(t, err)

	limiter := ratelimit.NewMemoryLimiter(1, 2)
	defer func() { _ = limiter.Close() }()

	srv := server.New(server.Config{
		Store:       store.New(),
		Sessions:    sessions,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimiter: limiter,
		Version:     "test",
	})
	env := &testEnv{handler: srv.Handler(), token: token}

	// Burst of 2, so the third request from the same address is throttled.
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "", nil).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "", nil).Code)

	rec := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, model.ErrCodeRateLimited, errorCode(t, rec))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
