package grouping

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/gorilla/mux"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hyking/hyking-backend/internal/auth"
    "github.com/hyking/hyking-backend/internal/common/utils"
)

const testSecret = "test-secret"

func token(t *testing.T, profileID, role string) string {
    t.Helper()
    claims := utils.NewAccessClaims(profileID, "", time.Hour)
    if role != "" {
        claims.Role = role
    }
    signed, err := utils.GenerateJWT(claims, testSecret)
    require.NoError(t, err)
    return "Bearer " + signed
}

func newTestRouter(t *testing.T, profileIDs ...string) (*mux.Router, *memoryRepository) {
    t.Helper()
    pool := trio("h", 2)
    svc, repo := newTestService(append(registeredIDs(pool), profileIDs...)...)
    runner := NewRunner(svc, &staticProfiles{profiles: pool}, nil, nil, DefaultRules(), StrategyCompatibility)

    router := mux.NewRouter()
    RegisterRoutes(router, NewHandler(svc, runner), auth.NewMiddleware(testSecret, ""))
    return router, repo
}

func serve(router http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    if auth != "" {
        req.Header.Set("Authorization", auth)
    }
    rec := httptest.NewRecorder()
    router.ServeHTTP(rec, req)
    return rec
}

func TestRunFormationRequiresAdmin(t *testing.T) {
    router, repo := newTestRouter(t)

    rec := serve(router, http.MethodPost, "/api/v1/admin/groups/run", "", "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    rec = serve(router, http.MethodPost, "/api/v1/admin/groups/run", token(t, "h1", ""), "")
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Empty(t, repo.state.groups)

    rec = serve(router, http.MethodPost, "/api/v1/admin/groups/run", token(t, "ops", "service_role"), "")
    require.Equal(t, http.StatusOK, rec.Code)

    var summary RunSummary
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
    assert.Equal(t, 1, summary.Created)
    assert.Len(t, repo.state.groups, 1)
}

func TestGroupMatchHandlers(t *testing.T) {
    router, _ := newTestRouter(t, "solo", "late")

    rec := serve(router, http.MethodPost, "/api/v1/groupmatches", token(t, "solo", ""), `{"activity_id":0}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = serve(router, http.MethodPost, "/api/v1/groupmatches", token(t, "solo", ""), `{"activity_id":3}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code, "closed activity")

    rec = serve(router, http.MethodPost, "/api/v1/groupmatches", token(t, "solo", ""), `{"activity_id":1}`)
    require.Equal(t, http.StatusCreated, rec.Code)

    var gm GroupMatch
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gm))
    assert.Equal(t, 1, gm.AcceptedCount())

    rec = serve(router, http.MethodPost, "/api/v1/groupmatches/"+gm.ID+"/accept", token(t, "late", ""), "")
    require.Equal(t, http.StatusOK, rec.Code)
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gm))
    assert.Equal(t, 2, gm.AcceptedCount())

    rec = serve(router, http.MethodPut, "/api/v1/groupmatches/"+gm.ID+"/hike", token(t, "h1", ""), `{"activity_id":2}`)
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = serve(router, http.MethodGet, "/api/v1/groupmatches/open", token(t, "h1", ""), "")
    require.Equal(t, http.StatusOK, rec.Code)
    var open []GroupMatch
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &open))
    assert.Len(t, open, 1)

    rec = serve(router, http.MethodGet, "/api/v1/groupmatches/missing", token(t, "h1", ""), "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}
