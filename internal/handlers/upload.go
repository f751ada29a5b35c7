package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prefeitura-sp/app-sicap/internal/config"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/observability"
	"github.com/prefeitura-sp/app-sicap/internal/services"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// acceptedExtensions are the workbook formats excelize can open.
var acceptedExtensions = map[string]bool{".xlsx": true, ".xlsm": true}

// PayrollProcessor runs one spreadsheet through the pipeline.
type PayrollProcessor interface {
	Process(ctx context.Context, req services.Request) *models.Result
}

// UploadHandlers handles spreadsheet uploads
type UploadHandlers struct {
	pipeline PayrollProcessor
	cfg      *config.Config
	logger   *logging.SafeLogger
}

// NewUploadHandlers creates a new upload handlers instance
func NewUploadHandlers(pipeline PayrollProcessor, cfg *config.Config, logger *logging.SafeLogger) *UploadHandlers {
	return &UploadHandlers{
		pipeline: pipeline,
		cfg:      cfg,
		logger:   logger,
	}
}

// ProcessSpreadsheet godoc
// @Summary Processar planilha de folha
// @Description Recebe a planilha (.xlsx) com as abas 600 e 610, valida os dados e envia a folha de pagamento ao SICAP. Nenhuma chamada externa é feita quando a validação encontra problemas.
// @Tags folha
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Planilha .xlsx"
// @Param usuario formData string true "Usuário do SICAP"
// @Param senha formData string true "Senha do SICAP"
// @Param mes formData string false "Mês de referência (ex: out)"
// @Param ano formData string false "Ano de referência"
// @Param prestacao_id formData string true "ID da Prestação de Contas no SICAP"
// @Success 200 {object} models.Result "Folha enviada com sucesso"
// @Failure 400 {object} models.Result "Arquivo ou parâmetros inválidos"
// @Failure 413 {object} models.Result "Arquivo maior que o limite permitido"
// @Failure 422 {object} models.Result "Erros de validação, autenticação ou envio"
// @Failure 500 {object} models.Result "Erro de configuração ou erro interno"
// @Router /processar [post]
func (h *UploadHandlers) ProcessSpreadsheet(c *gin.Context) {
	startTime := time.Now()
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ProcessSpreadsheet")
	defer span.End()

	span.SetAttributes(
		attribute.String("operation", "process_spreadsheet"),
		attribute.String("service", "upload"),
	)

	logger := observability.Logger()

	if c.Request.ContentLength > h.cfg.MaxUploadSize {
		h.rejectTooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadSize)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rejectTooLarge(c)
			return
		}
		utils.RecordErrorInSpan(span, err, nil)
		c.JSON(http.StatusBadRequest, models.Failure(models.KindMalformed, "Arquivo não enviado. Use o campo 'file'.", nil))
		return
	}

	name := filepath.Base(file.Filename)
	span.SetAttributes(attribute.String("upload.filename", name), attribute.Int64("upload.size", file.Size))

	if !acceptedExtensions[strings.ToLower(filepath.Ext(name))] {
		logger.Warn("rejected upload format", zap.String("arquivo", name))
		c.JSON(http.StatusBadRequest, models.Failure(models.KindMalformed, "Formato invalido. Use .xlsx", nil))
		return
	}

	username := strings.TrimSpace(c.PostForm("usuario"))
	password := c.PostForm("senha")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, models.Failure(models.KindMalformed, "Usuário e senha do SICAP são obrigatórios.", nil))
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0755); err != nil {
		logger.Error("failed to create upload directory", zap.String("dir", h.cfg.UploadDir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Failure(models.KindConfiguration, "Diretório de upload indisponível.", nil))
		return
	}

	path := filepath.Join(h.cfg.UploadDir, uuid.NewString()+"_"+name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		logger.Error("failed to store upload", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Failure(models.KindInternal, "Não foi possível salvar o arquivo enviado.", nil))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove upload", zap.String("path", path), zap.Error(err))
		}
	}()

	// the submission must not be aborted by a client disconnect
	result := h.pipeline.Process(context.WithoutCancel(ctx), services.Request{
		FilePath:           path,
		SourceName:         name,
		Username:           username,
		Password:           password,
		Month:              c.PostForm("mes"),
		Year:               c.PostForm("ano"),
		AccountingPeriodID: c.PostForm("prestacao_id"),
	})

	status := result.Kind.HTTPStatus()
	span.SetAttributes(attribute.String("pipeline.status", result.Status), attribute.Int("http.status", status))
	logger.Info("ProcessSpreadsheet completed",
		zap.String("arquivo", name),
		zap.String("usuario", username),
		zap.String("status", result.Status),
		zap.Int("http_status", status),
		zap.Duration("total_duration", time.Since(startTime)))

	c.JSON(status, result)
}

func (h *UploadHandlers) rejectTooLarge(c *gin.Context) {
	h.logger.Warn("upload exceeds size limit", zap.Int64("limit", h.cfg.MaxUploadSize))
	c.JSON(http.StatusRequestEntityTooLarge, models.Failure(models.KindMalformed,
		fmt.Sprintf("Arquivo excede o limite de %d MB", h.cfg.MaxUploadSize>>20), nil))
}
