package models

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind ResultKind
		want int
	}{
		{KindSuccess, http.StatusOK},
		{KindValidation, http.StatusUnprocessableEntity},
		{KindAuth, http.StatusUnprocessableEntity},
		{KindSubmission, http.StatusUnprocessableEntity},
		{KindMalformed, http.StatusBadRequest},
		{KindConfiguration, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestResult_JSON(t *testing.T) {
	res := Failure(KindValidation, "Erros de validação pré-envio detectados.", map[string]interface{}{
		"unidades_sem_mapa": []string{"UBS X"},
	})

	data, err := json.Marshal(res)
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"erro","mensagem":"Erros de validação pré-envio detectados.","detalhes":{"unidades_sem_mapa":["UBS X"]}}`, string(data))
	assert.False(t, res.OK())
	assert.True(t, Success("ok", nil).OK())
}

func TestValidationReport(t *testing.T) {
	report := &ValidationReport{}
	assert.False(t, report.HasErrors())
	assert.Empty(t, report.Details())

	report.CPFsInvalidos = []string{"Linha 2"}
	report.CPFsInvalidosDetalhe = []RowIssue{{Linha: 2, Nome: "Maria", Valor: "123 -> 00000000123"}}
	report.Problemas = []string{"CPFs inválidos detectados: Linha 2"}

	assert.True(t, report.HasErrors())
	details := report.Details()
	assert.Equal(t, []string{"Linha 2"}, details["cpfs_invalidos"])
	assert.Contains(t, details, "cpfs_invalidos_detalhe")
	assert.Contains(t, details, "problemas")
	assert.NotContains(t, details, "colunas_faltantes")
}
