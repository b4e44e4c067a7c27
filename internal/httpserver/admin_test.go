package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/transport"
)

func TestHealthAndStatus(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.doJSONRequest(http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(http.MethodGet, "/health/ready", nil).Code)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(http.MethodGet, "/metrics", nil).Code)

	rec := env.doJSONRequest(http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[transport.StatusResponse](t, rec)
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, "test", st.Environment)

	rec = env.doJSONRequest(http.MethodGet, "/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", messageOf(t, rec))
}

func TestSettings_Visibility(t *testing.T) {
	env := newTestEnv(t)
	_, ck := env.user(t, "bob", false)
	_, adminCk := env.user(t, "root", true)

	rec := env.doJSONRequest(http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	public := decode[[]models.Setting](t, rec)
	for _, s := range public {
		assert.NotEqual(t, "VOUCHER_EXPIRY_DAYS", s.Key)
	}

	rec = env.doJSONRequest(http.MethodGet, "/api/settings", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, public, decode[[]models.Setting](t, rec))

	rec = env.doJSONRequest(http.MethodGet, "/api/settings", nil, adminCk)
	require.Equal(t, http.StatusOK, rec.Code)
	full := decode[[]models.Setting](t, rec)
	assert.Len(t, full, len(public)+1)
	keys := map[string]bool{}
	for _, s := range full {
		keys[s.Key] = true
	}
	assert.True(t, keys["VOUCHER_EXPIRY_DAYS"])

	rec = env.doJSONRequest(http.MethodPut, "/api/settings/REFERRAL_COUNT", map[string]string{"value": "5"}, ck)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)
	_, userCk := env.user(t, "bob", false)
	_, adminCk := env.user(t, "root", true)
	env.product(t, "Kettle", 1800, 2, nil)

	rec := env.doJSONRequest(http.MethodGet, "/api/download", nil, userCk)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSONRequest(http.MethodGet, "/api/download", nil, adminCk)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=markethub-data-")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json")
	snap := decode[struct {
		Products []models.Product `json:"products"`
		Users    []models.User    `json:"users"`
		Version  string           `json:"version"`
	}](t, rec)
	assert.Equal(t, "1.0.0", snap.Version)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Users, 2)

	rec = env.doJSONRequest(http.MethodGet, "/api/download?format=xlsx", nil, adminCk)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())

	rec = env.doJSONRequest(http.MethodGet, "/api/download?format=csv", nil, adminCk)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
