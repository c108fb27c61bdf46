// api/handlers/handlers_integration_test.go
package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astro-datacenter/rundb/api"
	"github.com/astro-datacenter/rundb/api/models"
	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/auth"
	"github.com/astro-datacenter/rundb/internal/storage"
)

const (
	testUser      = "tbretz"
	testPassword  = "StrongPassword123!"
	otherUser     = "mallory"
	otherPassword = "AnotherPassword456!"
)

var seed = []string{
	`INSERT INTO Source (fSourceKEY, fSourceName, fRealSourceKEY) VALUES (1, 'Crab', 1), (2, 'OffCrab', NULL)`,
	`INSERT INTO ObservationMode (fObservationModeKEY, fObservationModeName) VALUES (1, 'N/A'), (2, 'On'), (3, 'Wobble')`,
	`INSERT INTO Sequences (fSequenceFirst, fSourceKEY, fObservationModeKEY, fDiscriminatorThresholdTableKEY,
		fRunStart, fRunStop, fRunTime, fZenithDistanceMin, fZenithDistanceMax) VALUES
		(10000, 1, 2, 1, '2004-03-01 22:00:00', '2004-03-01 23:00:00', 3600, 10, 20),
		(15000, 1, 2, 1, '2004-03-02 22:00:00', '2004-03-02 23:00:00', 1800, 15, 25),
		(20000, 2, 2, 1, '2004-03-03 22:00:00', '2004-03-03 23:00:00', 3000, 12, 22)`,
	`INSERT INTO SequenceProcessStatus (fSequenceFirst, fSequenceFileWritten, fCallisto, fStartTime, fFailedTime) VALUES
		(10000, '2024-01-01 00:00:00', '2023-05-01 00:00:00', NULL, NULL),
		(15000, '2024-01-01 00:00:00', NULL, '2024-01-01 00:00:00', '2024-01-01 01:00:00'),
		(20000, '2024-01-01 00:00:00', '2024-02-01 00:00:00', NULL, NULL)`,
	`INSERT INTO MarsVersion (fMarsVersion, fMarsVersionName, fStartDate) VALUES
		(1, '1.0', '2023-01-01 00:00:00'), (2, '2.0', '2024-01-15 00:00:00')`,
	`INSERT INTO Calibration (fSequenceFirst, fUnsuitableInner, fIsolatedInner, fIsolatedMaxCluster, fMeanPedRmsInner) VALUES
		(10000, 5, 0, 0, 1.0), (15000, 5, 0, 0, 1.0), (20000, 5, 0, 0, 1.0)`,
	`INSERT INTO Star (fSequenceFirst, fNumStarsMed, fNumStarsCorMed, fInhomogeneity) VALUES
		(10000, 30, 15, 5), (15000, 30, 15, 5), (20000, 30, 15, 5)`,
}

// testDBSetup creates a temporary SQLite database with schema, seed rows and one user.
func testDBSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	testCfg := &config.Config{
		ServerPort:      ":0",
		DBDriver:        config.DriverSQLite,
		DatabaseDir:     t.TempDir(),
		DatabaseFile:    "test_datacenter.db",
		JWTSecret:       "test_secret_key_for_integration_tests_1234567890",
		JWTExpiration:   5 * time.Minute,
		DefaultPageSize: 20,
		MaxPageSize:     100,
		PlotDir:         t.TempDir(),
		StatusTimeLimit: 12 * time.Hour,
		ResetUsers:      []string{testUser},
	}

	db, err := storage.Connect(testCfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	ctx := context.Background()
	require.NoError(t, storage.EnsureSchema(ctx, db, config.DriverSQLite))
	for _, stmt := range seed {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	for name, password := range map[string]string{testUser: testPassword, otherUser: otherPassword} {
		hash, err := auth.HashPassword(password)
		require.NoError(t, err)
		_, err = storage.CreateUser(ctx, db, name, hash)
		require.NoError(t, err)
	}

	return db, testCfg
}

// setupTestServer creates a test server instance with a test DB.
func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cfg := testDBSetup(t)
	server := httptest.NewServer(api.SetupRouter(db, cfg))
	t.Cleanup(server.Close)
	return server, db
}

type testClient struct {
	t        *testing.T
	base     string
	client   *http.Client
	user     string
	password string
}

func newTestClient(t *testing.T, base string) *testClient {
	return newTestClientAs(t, base, testUser, testPassword)
}

// newTestClientAs creates a client with its own session for another user.
func newTestClientAs(t *testing.T, base, user, password string) *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: base, client: &http.Client{Jar: jar}, user: user, password: password}
}

func (tc *testClient) do(method, path string, body any) (*http.Response, []byte) {
	tc.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, tc.base+path, reader)
	require.NoError(tc.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(tc.user, tc.password)

	res, err := tc.client.Do(req)
	require.NoError(tc.t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(tc.t, err)
	return res, data
}

func decode(t *testing.T, data []byte, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

func TestAuthEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)

	t.Run("Ping", func(t *testing.T) {
		res, err := http.Get(server.URL + "/ping")
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	testCases := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "Login Success", body: models.LoginRequest{UserName: testUser, Password: testPassword}, wantStatus: http.StatusOK},
		{name: "Login Wrong Password", body: models.LoginRequest{UserName: testUser, Password: "wrong"}, wantStatus: http.StatusUnauthorized},
		{name: "Login Unknown User", body: models.LoginRequest{UserName: "nobody", Password: testPassword}, wantStatus: http.StatusUnauthorized},
		{name: "Login Missing Fields", body: map[string]string{"user_name": testUser}, wantStatus: http.StatusBadRequest},
		{name: "Login Malformed JSON", body: "{not json", wantStatus: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var body []byte
			if s, ok := tc.body.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tc.body)
			}
			res, err := http.Post(server.URL+"/auth/login", "application/json", bytes.NewReader(body))
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.wantStatus, res.StatusCode)
		})
	}

	t.Run("Bearer Token", func(t *testing.T) {
		body, _ := json.Marshal(models.LoginRequest{UserName: testUser, Password: testPassword})
		res, err := http.Post(server.URL+"/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		var login models.LoginResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&login))
		res.Body.Close()
		require.NotEmpty(t, login.Token)

		req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+login.Token)
		res, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		var me map[string]any
		require.NoError(t, json.NewDecoder(res.Body).Decode(&me))
		assert.Equal(t, testUser, me["user_name"])
	})

	t.Run("No Credentials", func(t *testing.T) {
		res, err := http.Get(server.URL + "/api/v1/pages")
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Contains(t, res.Header.Get("WWW-Authenticate"), "Basic")
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/v1/pages", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

type queryResponse struct {
	Total   int64               `json:"total"`
	Query   string              `json:"query"`
	Rows    []map[string]string `json:"rows"`
	Columns []struct {
		Label string `json:"label"`
	} `json:"columns"`
}

func TestQueryEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)
	client := newTestClient(t, server.URL)

	t.Run("Pages", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/pages", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var body struct {
			Pages []models.PageInfo `json:"pages"`
		}
		decode(t, data, &body)
		names := make([]string, 0, len(body.Pages))
		for _, p := range body.Pages {
			names = append(names, p.Name)
		}
		assert.Contains(t, names, "sequences")
	})

	t.Run("JSON", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/query/sequences?format=json&fShowQuery=On", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		var body queryResponse
		decode(t, data, &body)
		assert.Equal(t, int64(3), body.Total)
		assert.Len(t, body.Rows, 3)
		assert.Contains(t, body.Query, "SELECT")
	})

	t.Run("Status Filter", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/query/sequences?format=json&fReset=1&fSequenceFileWritten=On&fAllFilesAvailStatus=failed", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		var body queryResponse
		decode(t, data, &body)
		assert.Equal(t, int64(1), body.Total)
	})

	t.Run("Session Keeps Filters", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/query/sequences?format=json&fReset=1", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))

		res, data = client.do(http.MethodGet, "/api/v1/query/sequences?format=json&fSourceN=Crab", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		var body queryResponse
		decode(t, data, &body)
		assert.Equal(t, int64(2), body.Total)

		_, data = client.do(http.MethodGet, "/api/v1/query/sequences?format=json", nil)
		decode(t, data, &body)
		assert.Equal(t, int64(2), body.Total, "filter of the previous call is kept")

		_, data = client.do(http.MethodGet, "/api/v1/query/sequences?format=json&fReset=1", nil)
		decode(t, data, &body)
		assert.Equal(t, int64(3), body.Total)
	})

	t.Run("Text Export", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/query/sequences?fReset=1&fSendTxt=1", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		assert.Equal(t, "text/octet", res.Header.Get("Content-Type"))
		assert.Contains(t, res.Header.Get("Content-Disposition"), "query-result.txt")
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, 4)
	})

	t.Run("HTML", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/query/sequences?fReset=1", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, string(data), "Found 3 entries")
	})

	errorCases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "Unknown Page", path: "/api/v1/query/nothing", wantStatus: http.StatusNotFound},
		{name: "Bad Page Name", path: "/api/v1/query/runs;DROP", wantStatus: http.StatusBadRequest},
		{name: "Half Range", path: "/api/v1/query/sequences?fReset=1&fRunMin=10000", wantStatus: http.StatusBadRequest},
		{name: "Unknown Sort", path: "/api/v1/query/sequences?fReset=1&fSortBy=fPassword", wantStatus: http.StatusBadRequest},
		{name: "Sort By Hidden Step", path: "/api/v1/query/sequences?fReset=1&fSortBy=fCallisto-", wantStatus: http.StatusBadRequest},
		{name: "Sort By Aggregate Without Grouping", path: "/api/v1/query/sequences?fReset=1&fSortBy=Time+%5Bh%5D-", wantStatus: http.StatusBadRequest},
		{name: "Unknown Format", path: "/api/v1/query/sequences?format=xml", wantStatus: http.StatusBadRequest},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			res, data := client.do(http.MethodGet, tc.path, nil)
			assert.Equal(t, tc.wantStatus, res.StatusCode, string(data))
		})
	}
}

func TestDataSetEndpoints(t *testing.T) {
	server, db := setupTestServer(t)
	client := newTestClient(t, server.URL)

	req := models.DataSetRequest{On: "10000 15000", Off: "20000", Name: "crab", Comment: "integration"}

	t.Run("Check", func(t *testing.T) {
		res, data := client.do(http.MethodPost, "/api/v1/datasets/check", req)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		var body map[string]any
		decode(t, data, &body)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "On", body["mode"])
	})

	t.Run("Check Rejects Bad List", func(t *testing.T) {
		res, data := client.do(http.MethodPost, "/api/v1/datasets/check", models.DataSetRequest{On: "10000 abc"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, string(data))
	})

	t.Run("Store And File", func(t *testing.T) {
		res, data := client.do(http.MethodPost, "/api/v1/datasets", req)
		require.Equal(t, http.StatusCreated, res.StatusCode, string(data))
		var out struct {
			Number int64 `json:"number"`
		}
		decode(t, data, &out)
		assert.Equal(t, int64(1), out.Number)

		on, off, err := storage.DataSetSequences(context.Background(), db, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{10000, 15000}, on)
		assert.Equal(t, []int{20000}, off)

		res, data = client.do(http.MethodGet, "/api/v1/datasets/1/file", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		assert.Contains(t, string(data), "SequencesOn: 10000 15000")
	})

	t.Run("Update By Other User", func(t *testing.T) {
		other := newTestClientAs(t, server.URL, otherUser, otherPassword)
		takeover := models.DataSetRequest{On: "10000", Name: "mine now", Comment: "x", Update: 1}
		res, data := other.do(http.MethodPost, "/api/v1/datasets", takeover)
		assert.Equal(t, http.StatusForbidden, res.StatusCode, string(data))

		owner, err := storage.FindUserByName(context.Background(), db, testUser)
		require.NoError(t, err)
		ds, err := storage.FindDataSet(context.Background(), db, 1)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, ds.UserKey)
		assert.Equal(t, "crab", ds.Name)
		on, _, err := storage.DataSetSequences(context.Background(), db, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{10000, 15000}, on)
	})

	t.Run("Update By Owner", func(t *testing.T) {
		upd := req
		upd.Comment = "updated"
		upd.Update = 1
		res, data := client.do(http.MethodPost, "/api/v1/datasets", upd)
		require.Equal(t, http.StatusCreated, res.StatusCode, string(data))
		ds, err := storage.FindDataSet(context.Background(), db, 1)
		require.NoError(t, err)
		assert.Equal(t, "updated", ds.Comment)
	})

	t.Run("Store Blocked By Errors", func(t *testing.T) {
		bad := req
		bad.Name = ""
		res, data := client.do(http.MethodPost, "/api/v1/datasets", bad)
		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode, string(data))
	})

	t.Run("Unknown Data Set", func(t *testing.T) {
		res, _ := client.do(http.MethodGet, "/api/v1/datasets/42/file", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestCommentEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)
	client := newTestClient(t, server.URL)

	res, data := client.do(http.MethodPost, "/api/v1/comments/sequences",
		models.CommentRequest{Night: "20040301", Target: 10000, Comment: "clouds"})
	require.Equal(t, http.StatusCreated, res.StatusCode, string(data))

	res, data = client.do(http.MethodPut, "/api/v1/comments/sequences",
		models.UpdateCommentRequest{Night: "20040301", Target: 10000, Comment: "thin clouds", OldComment: "clouds"})
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))

	res, data = client.do(http.MethodGet, "/api/v1/comments/sequences?night=20040301", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var body struct {
		Comments []struct {
			Comment string `json:"comment"`
			User    string `json:"user"`
		} `json:"comments"`
	}
	decode(t, data, &body)
	require.Len(t, body.Comments, 1)
	assert.Equal(t, "thin clouds", body.Comments[0].Comment)
	assert.Equal(t, testUser, body.Comments[0].User)

	errorCases := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{name: "Bad Night", method: http.MethodPost, path: "/api/v1/comments/runs",
			body: models.CommentRequest{Night: "2004-03-01", Target: 1, Comment: "x"}, wantStatus: http.StatusBadRequest},
		{name: "Unknown Kind", method: http.MethodGet, path: "/api/v1/comments/plots", wantStatus: http.StatusBadRequest},
		{name: "Bad Kind Name", method: http.MethodPost, path: "/api/v1/comments/runs%20OR%201",
			body: models.CommentRequest{Night: "20040301", Target: 1, Comment: "x"}, wantStatus: http.StatusBadRequest},
		{name: "Missing Old Comment", method: http.MethodPut, path: "/api/v1/comments/sequences",
			body: models.UpdateCommentRequest{Night: "20040301", Target: 10000, Comment: "x", OldComment: "nope"}, wantStatus: http.StatusNotFound},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			res, data := client.do(tc.method, tc.path, tc.body)
			assert.Equal(t, tc.wantStatus, res.StatusCode, string(data))
		})
	}
}

func TestSequenceEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)
	client := newTestClient(t, server.URL)

	t.Run("Reset Preview", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/sequences/reset?step=callisto&sequences=10000,15000,20000", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		var body models.ResetPreviewResponse
		decode(t, data, &body)
		assert.Equal(t, "callisto", body.Step)
		require.Len(t, body.Sequences, 3)
		assert.Equal(t, storage.StepState{State: storage.StepOutdated, Version: "1.0"}, body.Sequences[0].Callisto)
		assert.True(t, body.Sequences[0].Marked)
		assert.Equal(t, storage.StepCrashed, body.Sequences[1].Callisto.State)
		assert.False(t, body.Sequences[1].Marked)
		assert.Equal(t, storage.StepState{State: storage.StepUpToDate, Version: "2.0"}, body.Sequences[2].Callisto)
		assert.False(t, body.Sequences[2].Marked)
	})

	t.Run("Reset Not Permitted", func(t *testing.T) {
		other := newTestClientAs(t, server.URL, otherUser, otherPassword)
		res, data := other.do(http.MethodPost, "/api/v1/sequences/reset", models.ResetRequest{Sequences: "10000, 15000"})
		assert.Equal(t, http.StatusForbidden, res.StatusCode, string(data))
	})

	t.Run("Reset", func(t *testing.T) {
		res, data := client.do(http.MethodPost, "/api/v1/sequences/reset", models.ResetRequest{Sequences: "10000, 15000"})
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		var body models.ResetResponse
		decode(t, data, &body)
		assert.Equal(t, int64(1), body.Rows)
	})

	t.Run("Reset Rejects Short Numbers", func(t *testing.T) {
		res, data := client.do(http.MethodPost, "/api/v1/sequences/reset", models.ResetRequest{Sequences: "100"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, string(data))
	})

	t.Run("Reset Rejects Unknown Step", func(t *testing.T) {
		res, data := client.do(http.MethodPost, "/api/v1/sequences/reset", models.ResetRequest{Step: "ganymed", Sequences: "10000"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, string(data))
	})

	t.Run("Plot Navigation", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/plots/sequences?from=10000&to=20000&seq=15000&type=star&tab=2", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(data))
		var body struct {
			Position struct {
				Current, Prev, Next, Count int
			} `json:"position"`
			Plot string `json:"plot"`
		}
		decode(t, data, &body)
		assert.Equal(t, 15000, body.Position.Current)
		assert.Equal(t, 10000, body.Position.Prev)
		assert.Equal(t, 20000, body.Position.Next)
		assert.Equal(t, 3, body.Position.Count)
		assert.Equal(t, "star/0001/00015000/star00015000-tab2.png", body.Plot)
	})

	t.Run("Missing Plot", func(t *testing.T) {
		res, _ := client.do(http.MethodGet, "/api/v1/plots/file?type=star&n=15000&tab=1", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("Sources", func(t *testing.T) {
		res, data := client.do(http.MethodGet, "/api/v1/sources", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, string(data), "OffCrab")
	})
}
