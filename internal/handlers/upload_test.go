package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-sp/app-sicap/internal/config"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcessor records the request and answers with a fixed result.
type fakeProcessor struct {
	result   *models.Result
	calls    int
	req      services.Request
	ctxErr   error
	fileSeen bool
}

func (f *fakeProcessor) Process(ctx context.Context, req services.Request) *models.Result {
	f.calls++
	f.req = req
	f.ctxErr = ctx.Err()
	_, err := os.Stat(req.FilePath)
	f.fileSeen = err == nil
	return f.result
}

func setupUploadHandlersTest(t *testing.T, result *models.Result) (*fakeProcessor, *config.Config, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		UploadDir:     t.TempDir(),
		MaxUploadSize: 1 << 20,
	}
	processor := &fakeProcessor{result: result}
	handlers := NewUploadHandlers(processor, cfg, logging.Logger)

	router := gin.New()
	router.POST("/api/processar", handlers.ProcessSpreadsheet)
	return processor, cfg, router
}

func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/processar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func credentials() map[string]string {
	return map[string]string{
		"usuario":      "operador",
		"senha":        "segredo",
		"mes":          "out",
		"ano":          "2025",
		"prestacao_id": "9002",
	}
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) models.Result {
	t.Helper()
	var result models.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), w.Body.String())
	return result
}

func TestProcessSpreadsheet_Success(t *testing.T) {
	processor, cfg, router := setupUploadHandlersTest(t, models.Success("Folha enviada com sucesso! NF: 123",
		map[string]interface{}{"prestadores_enviados": 1}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "PSM Santana (out.25).xlsx", []byte("conteudo"), credentials()))

	assert.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, float64(1), result.Detalhes["prestadores_enviados"])

	require.Equal(t, 1, processor.calls)
	assert.Equal(t, "PSM Santana (out.25).xlsx", processor.req.SourceName)
	assert.Equal(t, "operador", processor.req.Username)
	assert.Equal(t, "segredo", processor.req.Password)
	assert.Equal(t, "out", processor.req.Month)
	assert.Equal(t, "2025", processor.req.Year)
	assert.Equal(t, "9002", processor.req.AccountingPeriodID)
	assert.False(t, processor.req.PeriodFromMapping)
	assert.True(t, processor.fileSeen, "upload should exist while the pipeline runs")
	assert.NoError(t, processor.ctxErr)

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "upload should be removed after processing")
}

func TestProcessSpreadsheet_StatusFollowsKind(t *testing.T) {
	tests := []struct {
		kind models.ResultKind
		want int
	}{
		{models.KindValidation, http.StatusUnprocessableEntity},
		{models.KindMalformed, http.StatusBadRequest},
		{models.KindConfiguration, http.StatusInternalServerError},
		{models.KindAuth, http.StatusUnprocessableEntity},
		{models.KindSubmission, http.StatusUnprocessableEntity},
		{models.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			_, cfg, router := setupUploadHandlersTest(t, models.Failure(tt.kind, "falhou", nil))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, "folha.xlsx", []byte("x"), credentials()))

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, models.StatusError, decodeResult(t, w).Status)

			entries, err := os.ReadDir(cfg.UploadDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestProcessSpreadsheet_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		fields   map[string]string
		wantMsg  string
	}{
		{name: "legacy xls", filename: "folha.xls", fields: credentials(), wantMsg: "Formato invalido. Use .xlsx"},
		{name: "csv", filename: "folha.csv", fields: credentials(), wantMsg: "Formato invalido. Use .xlsx"},
		{name: "no file", fields: credentials(), wantMsg: "Arquivo não enviado. Use o campo 'file'."},
		{name: "no credentials", filename: "folha.xlsx", fields: map[string]string{"prestacao_id": "1"}, wantMsg: "Usuário e senha do SICAP são obrigatórios."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor, _, router := setupUploadHandlersTest(t, models.Success("ok", nil))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, tt.filename, []byte("x"), tt.fields))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			result := decodeResult(t, w)
			assert.Equal(t, models.StatusError, result.Status)
			assert.Equal(t, tt.wantMsg, result.Mensagem)
			assert.Equal(t, 0, processor.calls)
		})
	}
}

func TestProcessSpreadsheet_AcceptsUppercaseExtension(t *testing.T) {
	processor, _, router := setupUploadHandlersTest(t, models.Success("ok", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "FOLHA.XLSX", []byte("x"), credentials()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, processor.calls)
}

func TestProcessSpreadsheet_TooLarge(t *testing.T) {
	processor, cfg, router := setupUploadHandlersTest(t, models.Success("ok", nil))
	cfg.MaxUploadSize = 1 << 10

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "folha.xlsx", bytes.Repeat([]byte("x"), 4<<10), credentials()))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, processor.calls)
}

func TestProcessSpreadsheet_ClientCancellationDoesNotReachPipeline(t *testing.T) {
	processor, _, router := setupUploadHandlersTest(t, models.Success("ok", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := uploadRequest(t, "folha.xlsx", []byte("x"), credentials()).WithContext(ctx)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, 1, processor.calls)
	assert.NoError(t, processor.ctxErr)
}
