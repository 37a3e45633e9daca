package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/hotel-listing/app"
	"github.com/upb/hotel-listing/config"
	"github.com/upb/hotel-listing/identity"
	"github.com/upb/hotel-listing/internal/memstore"
	"github.com/upb/hotel-listing/middleware"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories/postgres"
	"github.com/upb/hotel-listing/services/auth"
	"github.com/upb/hotel-listing/services/catalog"
	"github.com/upb/hotel-listing/token"
	"go.uber.org/zap"
)

type testServer struct {
	handler  http.Handler
	mock     sqlmock.Sqlmock
	identity *identity.Manager
}

// newTestServer keeps principals and refresh tokens in memory and the catalog
// behind sqlmock.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db := postgres.WrapDB(sqlDB, logger)

	store := memstore.New()
	repos := store.Repositories()
	repos.Countries = postgres.NewCountryRepository(db, logger)
	repos.Hotels = postgres.NewHotelRepository(db, logger)

	hasher, err := identity.NewArgon2Hasher(identity.Argon2Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	idm, err := identity.NewManager(repos, store.Tokens(), hasher, identity.DefaultPasswordPolicy, logger)
	require.NoError(t, err)

	codec, err := token.NewCodec(token.Config{
		SigningKey: "routes-test-signing-key-0123456789abcdef",
		Issuer:     "HotelListingAPI",
		Audience:   "HotelListingAPIClient",
		Duration:   10 * time.Minute,
	})
	require.NoError(t, err)

	deps := &app.Dependencies{
		Config: &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 300}},
		Logger: logger,
		Repos:  repos,
		Codec:  codec,
		Auth: auth.NewManager(idm, codec, nil, auth.Config{
			LoginProvider:    "HotelListingApi",
			RefreshTokenName: "RefreshToken",
		}, logger),
		Identity:       idm,
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.NewCodecValidator(codec), logger),
		Countries:      catalog.NewCountryService(repos.Countries, logger),
		Hotels:         catalog.NewHotelService(repos.Hotels, repos.Countries, postgres.NewTransactionManager(db, logger), logger),
	}

	return &testServer{handler: SetupRoutes(deps), mock: mock, identity: idm}
}

func (s *testServer) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email, password string) models.AuthResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/account/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func (s *testServer) register(t *testing.T, email string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/account/register",
		`{"email":"`+email+`","password":"Pw123456","firstName":"Alice","lastName":"Smith"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/does-not-exist", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"endpoint not found"}`, w.Body.String())
}

func TestAccountFlow(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice@example.com")

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/account/register",
			`{"email":"ALICE@example.com","password":"Pw123456","firstName":"A","lastName":"S"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), identity.CodeDuplicateEmail)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		wrong := s.do(t, http.MethodPost, "/api/account/login", `{"email":"alice@example.com","password":"Wrong123"}`, "")
		unknown := s.do(t, http.MethodPost, "/api/account/login", `{"email":"bob@example.com","password":"Pw123456"}`, "")
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, wrong.Code, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("refresh rotates and the old pair dies", func(t *testing.T) {
		first := s.login(t, "alice@example.com", "Pw123456")

		body, err := json.Marshal(first)
		require.NoError(t, err)

		w := s.do(t, http.MethodPost, "/api/account/refreshtoken", string(body), "")
		require.Equal(t, http.StatusOK, w.Code)
		var second models.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&second))
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
		assert.Equal(t, first.UserID, second.UserID)

		w = s.do(t, http.MethodPost, "/api/account/refreshtoken", string(body), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		// the replay bumped the stamp so the newest pair is dead too
		body, err = json.Marshal(second)
		require.NoError(t, err)
		w = s.do(t, http.MethodPost, "/api/account/refreshtoken", string(body), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCountryRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/countries/GetAll", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.register(t, "alice@example.com")
	session := s.login(t, "alice@example.com", "Pw123456")

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, short_name, created_at, updated_at FROM countries ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "short_name", "created_at", "updated_at"}).
			AddRow(1, "Jamaica", "JM", time.Now(), time.Now()))

	w = s.do(t, http.MethodGet, "/api/v1/countries/GetAll", "", session.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Jamaica","shortName":"JM"}]`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/v1/countries/1", "", session.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestAdministratorCanDelete(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "admin@example.com")

	user, err := s.identity.FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.NoError(t, s.identity.AddToRole(context.Background(), user, models.RoleAdministrator))
	session := s.login(t, "admin@example.com", "Pw123456")

	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM hotels WHERE id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := s.do(t, http.MethodDelete, "/api/hotels/5", "", session.AccessToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestHotelReadsArePublic(t *testing.T) {
	s := newTestServer(t)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM hotels`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM hotels ORDER BY id OFFSET $1 LIMIT $2`)).
		WithArgs(0, 25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "rating", "country_id", "created_at", "updated_at"}))

	w := s.do(t, http.MethodGet, "/api/hotels", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalCount":0,"pageNumber":1,"recordNumber":25,"items":[]}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/hotels", `{"name":"Sandals","countryId":1}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestCountryV2Routes(t *testing.T) {
	s := newTestServer(t)
	countryRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "short_name", "created_at", "updated_at"}).
			AddRow(1, "Jamaica", "JM", time.Now(), time.Now()).
			AddRow(2, "Cuba", "CU", time.Now(), time.Now()).
			AddRow(3, "Cayman Island", "CI", time.Now(), time.Now())
	}

	t.Run("listing is public and honours query options", func(t *testing.T) {
		s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, short_name, created_at, updated_at FROM countries ORDER BY id`)).
			WillReturnRows(countryRows())

		w := s.do(t, http.MethodGet, "/api/v2/countries?$filter=contains(shortName,'C')&$orderby=name%20desc&$top=1", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":2,"name":"Cuba","shortName":"CU"}]`, w.Body.String())
		assert.Equal(t, "2.0", w.Header().Get("api-supported-versions"))
	})

	t.Run("unsupported filter is a bad request", func(t *testing.T) {
		s.mock.ExpectQuery(regexp.QuoteMeta(`FROM countries ORDER BY id`)).WillReturnRows(countryRows())

		w := s.do(t, http.MethodGet, "/api/v2/countries?$filter=name%20gt%20'A'", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("details are public", func(t *testing.T) {
		s.mock.ExpectQuery(regexp.QuoteMeta(`FROM countries WHERE id = $1`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "short_name", "created_at", "updated_at"}).
				AddRow(1, "Jamaica", "JM", time.Now(), time.Now()))
		s.mock.ExpectQuery(regexp.QuoteMeta(`FROM hotels`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "rating", "country_id", "created_at", "updated_at"}))

		w := s.do(t, http.MethodGet, "/api/v2/countries/1", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":1,"name":"Jamaica","shortName":"JM"}`, w.Body.String())
	})

	t.Run("writes need a token", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v2/countries", `{"name":"Barbados","shortName":"BB"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = s.do(t, http.MethodPut, "/api/v2/countries/1", `{"id":1,"name":"Jamaica","shortName":"JM"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("delete is administrator only", func(t *testing.T) {
		s.register(t, "alice@example.com")
		user := s.login(t, "alice@example.com", "Pw123456")

		w := s.do(t, http.MethodDelete, "/api/v2/countries/3", "", user.AccessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		s.register(t, "admin@example.com")
		admin, err := s.identity.FindByEmail(context.Background(), "admin@example.com")
		require.NoError(t, err)
		require.NoError(t, s.identity.AddToRole(context.Background(), admin, models.RoleAdministrator))
		session := s.login(t, "admin@example.com", "Pw123456")

		s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM countries WHERE id = $1`)).
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w = s.do(t, http.MethodDelete, "/api/v2/countries/3", "", session.AccessToken)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestCountryV1IsMarkedDeprecated(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/countries/GetAll", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("api-deprecated-versions"))
	assert.Equal(t, "2.0", w.Header().Get("api-supported-versions"))
}
