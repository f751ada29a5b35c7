package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prefeitura-sp/app-sicap/internal/config"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/observability"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
	"github.com/prefeitura-sp/app-sicap/internal/utils/httpclient"
	"go.uber.org/zap"
)

const (
	loginPath   = "/Autenticacao/Login"
	payrollPath = "/FolhaPagamentoPessoaJuridica"
)

// tokenFields lists the response fields that may carry the bearer token, in
// lookup order.
var tokenFields = []string{"token", "Token", "access_token", "accessToken"}

// Submitter authenticates against SICAP and submits a payroll payload.
type Submitter interface {
	Login(ctx context.Context, username, password string) (string, error)
	SubmitPayroll(ctx context.Context, token string, payload *models.Payload) (*SubmissionResponse, error)
}

// SICAPClient talks to the SICAP REST API. It never retries.
type SICAPClient struct {
	baseURL       string
	loginTimeout  time.Duration
	submitTimeout time.Duration
	client        *http.Client
	logger        *logging.SafeLogger
}

// SubmissionResponse is what SICAP answered to a payroll submission.
type SubmissionResponse struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
}

type loginRequest struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

// NewSICAPClient creates a new SICAP client instance
func NewSICAPClient(cfg *config.Config, logger *logging.SafeLogger) *SICAPClient {
	return &SICAPClient{
		baseURL:       strings.TrimRight(cfg.SICAPBaseURL, "/"),
		loginTimeout:  cfg.SICAPLoginTimeout,
		submitTimeout: cfg.SICAPSubmitTimeout,
		client:        httpclient.New(0),
		logger:        logger,
	}
}

// Login exchanges credentials for a bearer token.
func (c *SICAPClient) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := utils.TraceExternalService(ctx, "sicap", "login")
	defer span.End()

	if c.loginTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.loginTimeout)
		defer cancel()
	}

	body, err := json.Marshal(loginRequest{Login: username, Senha: password})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrAuthRequest, err)
	}

	c.logger.Info("authenticating with SICAP", zap.String("url", c.baseURL+loginPath))

	start := time.Now()
	resp, err := c.post(ctx, loginPath, "", body)
	observability.SICAPRequestDuration.WithLabelValues("login").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.SICAPRequests.WithLabelValues("login", "error").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"sicap.endpoint": "login"})
		return "", fmt.Errorf("%w: %v", models.ErrAuthRequest, err)
	}
	observability.SICAPRequests.WithLabelValues("login", strconv.Itoa(resp.StatusCode)).Inc()
	utils.AddSpanAttribute(span, "http.status_code", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("SICAP login rejected", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", models.ErrAuthRequest, resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return "", fmt.Errorf("%w: invalid response: %v", models.ErrAuthRequest, err)
	}

	for _, field := range tokenFields {
		if token, ok := data[field].(string); ok && token != "" {
			c.logger.Info("SICAP login succeeded")
			return token, nil
		}
	}
	return "", models.ErrTokenMissing
}

// SubmitPayroll posts the payload. Statuses of 400 and above come back as a
// *models.SubmissionError together with the response.
func (c *SICAPClient) SubmitPayroll(ctx context.Context, token string, payload *models.Payload) (*SubmissionResponse, error) {
	ctx, span := utils.TraceExternalService(ctx, "sicap", "submit_payroll")
	defer span.End()

	if c.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.submitTimeout)
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding payload: %v", models.ErrSubmissionRequest, err)
	}

	c.logger.Info("submitting payroll to SICAP",
		zap.String("nota_fiscal", payload.NumNotaFiscal),
		zap.Int("prestadores", len(payload.Prestadores)),
		zap.Int("payload_bytes", len(body)))

	start := time.Now()
	resp, err := c.post(ctx, payrollPath, token, body)
	elapsed := time.Since(start)
	observability.SICAPRequestDuration.WithLabelValues("folha").Observe(elapsed.Seconds())
	if err != nil {
		observability.SICAPRequests.WithLabelValues("folha", "error").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"sicap.endpoint": "folha"})
		return nil, fmt.Errorf("%w: %v", models.ErrSubmissionRequest, err)
	}
	resp.Elapsed = elapsed
	observability.SICAPRequests.WithLabelValues("folha", strconv.Itoa(resp.StatusCode)).Inc()
	utils.AddSpanAttribute(span, "http.status_code", resp.StatusCode)

	if resp.StatusCode >= 400 {
		c.logger.Error("SICAP rejected payroll",
			zap.Int("status", resp.StatusCode),
			zap.String("nota_fiscal", payload.NumNotaFiscal),
			zap.ByteString("body", truncate(resp.Body, 2000)))
		return resp, &models.SubmissionError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	c.logger.Info("SICAP accepted payroll",
		zap.Int("status", resp.StatusCode),
		zap.String("nota_fiscal", payload.NumNotaFiscal),
		zap.Duration("elapsed", elapsed))
	return resp, nil
}

func (c *SICAPClient) post(ctx context.Context, path, token string, body []byte) (*SubmissionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &SubmissionResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// Decoded returns the body as decoded JSON, or as trimmed text when it is not
// JSON. An empty body decodes to nil.
func (r *SubmissionResponse) Decoded() interface{} {
	if r == nil {
		return nil
	}
	return decodeBody(r.Body)
}

// InvoiceNumber returns the NumNotaFiscal echoed by SICAP, if any.
func (r *SubmissionResponse) InvoiceNumber() string {
	obj, ok := r.Decoded().(map[string]interface{})
	if !ok {
		return ""
	}
	switch v := obj["NumNotaFiscal"].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

func decodeBody(body []byte) interface{} {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil || dec.More() {
		return string(trimmed)
	}
	return v
}

// CollectMessages flattens a decoded SICAP error body into "key: value"
// lines. Object keys are visited in sorted order.
func CollectMessages(v interface{}) []string {
	var msgs []string
	switch val := v.(type) {
	case nil:
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch item := val[k].(type) {
			case string, json.Number, float64, bool:
				msgs = append(msgs, fmt.Sprintf("%s: %v", k, item))
			default:
				msgs = append(msgs, CollectMessages(item)...)
			}
		}
	case []interface{}:
		for _, item := range val {
			msgs = append(msgs, CollectMessages(item)...)
		}
	default:
		msgs = append(msgs, fmt.Sprint(val))
	}
	return msgs
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
