package models

import "net/http"

const (
	StatusSuccess = "sucesso"
	StatusError   = "erro"
)

// ResultKind classifies a pipeline outcome for the front ends.
type ResultKind int

const (
	KindSuccess ResultKind = iota
	KindValidation
	KindMalformed
	KindConfiguration
	KindAuth
	KindSubmission
	KindInternal
)

var kindNames = map[ResultKind]string{
	KindSuccess:       "success",
	KindValidation:    "validation",
	KindMalformed:     "malformed",
	KindConfiguration: "configuration",
	KindAuth:          "auth",
	KindSubmission:    "submission",
	KindInternal:      "internal",
}

func (k ResultKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// HTTPStatus maps the outcome to the status returned by the upload API.
func (k ResultKind) HTTPStatus() int {
	switch k {
	case KindSuccess:
		return http.StatusOK
	case KindMalformed:
		return http.StatusBadRequest
	case KindConfiguration, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

// Result is the envelope returned by the pipeline.
type Result struct {
	Status   string                 `json:"status" example:"sucesso"`
	Mensagem string                 `json:"mensagem" example:"Folha enviada com sucesso! NF: 123"`
	Detalhes map[string]interface{} `json:"detalhes,omitempty"`
	Kind     ResultKind             `json:"-"`
}

// Success builds a successful result.
func Success(message string, details map[string]interface{}) *Result {
	return &Result{Status: StatusSuccess, Mensagem: message, Detalhes: details, Kind: KindSuccess}
}

// Failure builds an error result of the given kind.
func Failure(kind ResultKind, message string, details map[string]interface{}) *Result {
	return &Result{Status: StatusError, Mensagem: message, Detalhes: details, Kind: kind}
}

// OK reports whether the result is a success.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}
