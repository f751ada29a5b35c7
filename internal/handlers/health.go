package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-sp/app-sicap/internal/config"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthHandlers reports whether the files the pipeline depends on are in place.
type HealthHandlers struct {
	cfg    *config.Config
	logger *logging.SafeLogger
}

func NewHealthHandlers(cfg *config.Config, logger *logging.SafeLogger) *HealthHandlers {
	return &HealthHandlers{cfg: cfg, logger: logger}
}

// HealthCheck godoc
// @Summary Verificação de saúde
// @Description Verifica se o arquivo de mapeamentos existe e se o diretório de upload pode ser usado. O frontend é informado mas não afeta o status.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Todos os recursos estão disponíveis"
// @Failure 503 {object} HealthResponse "Um ou mais recursos estão indisponíveis"
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	_, span := otel.Tracer("").Start(c.Request.Context(), "HealthCheck")
	defer span.End()

	health := HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	if info, err := os.Stat(h.cfg.MappingFile); err != nil || info.IsDir() {
		health.Status = statusUnhealthy
		health.Services["mapping_file"] = statusUnhealthy
		h.logger.Warn("mapping file unavailable", zap.String("path", h.cfg.MappingFile), zap.Error(err))
	} else {
		health.Services["mapping_file"] = statusHealthy
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0755); err != nil {
		health.Status = statusUnhealthy
		health.Services["upload_dir"] = statusUnhealthy
		h.logger.Warn("upload directory unavailable", zap.String("dir", h.cfg.UploadDir), zap.Error(err))
	} else {
		health.Services["upload_dir"] = statusHealthy
	}

	if _, err := os.Stat(h.cfg.FrontendDir); err != nil {
		health.Services["frontend"] = "not_found"
	} else {
		health.Services["frontend"] = "available"
	}

	utils.AddSpanAttribute(span, "health.status", health.Status)
	if health.Status == statusHealthy {
		c.JSON(http.StatusOK, health)
		return
	}
	c.JSON(http.StatusServiceUnavailable, health)
}
