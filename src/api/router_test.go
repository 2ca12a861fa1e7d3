package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealth-server/src/jobs"
	"wealth-server/src/middleware"
)

const secret = "router-secret"

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.Claims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + s
}

func newTestRouter(t *testing.T, mock pgxmock.PgxPoolIface, demo bool) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Pool:          mock,
		Jobs:          jobs.NewRegistry(),
		JWTSecret:     secret,
		JobSigningKey: []byte("job-key"),
		CORSOrigins:   []string{"http://localhost:3000"},
		DemoMode:      demo,
	})
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := do(newTestRouter(t, mock, false), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := newTestRouter(t, mock, false)
	for _, path := range []string{"/api/accounts", "/api/dashboard", "/api/insights", "/api/user"} {
		rec := do(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestUnknownUserIsNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM users WHERE external_user_id").
		WithArgs("user_new").
		WillReturnError(pgx.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", bearer(t, "user_new"))
	rec := do(newTestRouter(t, mock, false), req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoriesForKnownUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE external_user_id").
		WithArgs("user_1").
		WillReturnRows(mock.NewRows([]string{"id", "external_user_id", "email", "name", "image_url", "created_at", "updated_at"}).
			AddRow(id, "user_1", "ada@example.com", (*string)(nil), (*string)(nil), now, now))

	req := httptest.NewRequest(http.MethodGet, "/api/categories?type=INCOME", nil)
	req.Header.Set("Authorization", bearer(t, "user_1"))
	rec := do(newTestRouter(t, mock, false), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"salary"`)
	assert.NotContains(t, rec.Body.String(), `"id":"groceries"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobsWebhookIsSigned(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := do(newTestRouter(t, mock, false), httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"job":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDemoModeBlocksWrites(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := newTestRouter(t, mock, true)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, "user_1"))
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	// The job webhook stays reachable and fails on its signature instead.
	rec := do(r, httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaidRoutesDisabledWithoutClient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := do(newTestRouter(t, mock, false), httptest.NewRequest(http.MethodPost, "/api/plaid/webhook", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
