package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-sp/app-sicap/internal/config"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHealthCheck(t *testing.T, cfg *config.Config) (int, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/health", NewHealthHandlers(cfg, logging.Logger).HealthCheck)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthCheck_Healthy(t *testing.T) {
	dir := t.TempDir()
	mappingFile := filepath.Join(dir, "mapeamentos.json")
	require.NoError(t, os.WriteFile(mappingFile, []byte("{}"), 0644))

	code, response := runHealthCheck(t, &config.Config{
		MappingFile: mappingFile,
		UploadDir:   filepath.Join(dir, "uploads"),
		FrontendDir: dir,
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, map[string]string{
		"mapping_file": "healthy",
		"upload_dir":   "healthy",
		"frontend":     "available",
	}, response.Services)
	assert.False(t, response.Timestamp.IsZero())
	assert.DirExists(t, filepath.Join(dir, "uploads"))
}

func TestHealthCheck_MissingMappingFile(t *testing.T) {
	dir := t.TempDir()

	code, response := runHealthCheck(t, &config.Config{
		MappingFile: filepath.Join(dir, "mapeamentos.json"),
		UploadDir:   dir,
		FrontendDir: filepath.Join(dir, "frontend"),
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", response.Status)
	assert.Equal(t, "unhealthy", response.Services["mapping_file"])
	assert.Equal(t, "healthy", response.Services["upload_dir"])
	assert.Equal(t, "not_found", response.Services["frontend"])
}

func TestHealthCheck_UnusableUploadDir(t *testing.T) {
	dir := t.TempDir()
	mappingFile := filepath.Join(dir, "mapeamentos.json")
	require.NoError(t, os.WriteFile(mappingFile, []byte("{}"), 0644))

	code, response := runHealthCheck(t, &config.Config{
		MappingFile: mappingFile,
		UploadDir:   filepath.Join(mappingFile, "uploads"),
		FrontendDir: dir,
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", response.Services["upload_dir"])
}
