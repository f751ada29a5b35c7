package models

// Report caps keep error responses readable.
const (
	MaxUnmappedUnits = 50
	MaxRowIssues     = 50
	MaxInvalidCPFs   = 20
)

// Summary flags of the validation report.
const (
	FlagUnmappedRole        = "Existem COLABORADORES com Cargo não mapeado (CargoId=0)."
	FlagUnmappedServiceLine = "Existem COLABORADORES com Linha de Serviço não mapeada (LinhaServicoId=0)."
	FlagUnmappedUnits       = "Existem Unidades sem mapeamento (UnidadeId = 0)."
	FlagMissingColumns      = "Colunas obrigatórias não encontradas na aba 610."
)

// RowIssue points at a spreadsheet row that failed a check.
type RowIssue struct {
	Linha int    `json:"linha" csv:"linha"`
	Nome  string `json:"nome" csv:"nome"`
	Valor string `json:"valor" csv:"valor"`
}

// ValidationReport aggregates every defect found before submission.
type ValidationReport struct {
	ColunasFaltantes     []string   `json:"colunas_faltantes,omitempty"`
	UnidadesSemMapa      []string   `json:"unidades_sem_mapa,omitempty"`
	CargosSemMapa        []RowIssue `json:"cargos_sem_mapa,omitempty"`
	LinhasServicoSemMapa []RowIssue `json:"linhas_servico_sem_mapa,omitempty"`
	CPFsInvalidos        []string   `json:"cpfs_invalidos,omitempty"`
	CPFsInvalidosDetalhe []RowIssue `json:"cpfs_invalidos_detalhe,omitempty"`
	Problemas            []string   `json:"problemas,omitempty"`
}

// HasErrors reports whether the batch must be rejected.
func (r *ValidationReport) HasErrors() bool {
	return len(r.ColunasFaltantes) > 0 ||
		len(r.UnidadesSemMapa) > 0 ||
		len(r.CargosSemMapa) > 0 ||
		len(r.LinhasServicoSemMapa) > 0 ||
		len(r.CPFsInvalidos) > 0
}

// Details renders the non-empty parts of the report for a Result.
func (r *ValidationReport) Details() map[string]interface{} {
	details := map[string]interface{}{}
	if len(r.ColunasFaltantes) > 0 {
		details["colunas_faltantes"] = r.ColunasFaltantes
	}
	if len(r.UnidadesSemMapa) > 0 {
		details["unidades_sem_mapa"] = r.UnidadesSemMapa
	}
	if len(r.CargosSemMapa) > 0 {
		details["cargos_sem_mapa"] = r.CargosSemMapa
	}
	if len(r.LinhasServicoSemMapa) > 0 {
		details["linhas_servico_sem_mapa"] = r.LinhasServicoSemMapa
	}
	if len(r.CPFsInvalidos) > 0 {
		details["cpfs_invalidos"] = r.CPFsInvalidos
		details["cpfs_invalidos_detalhe"] = r.CPFsInvalidosDetalhe
	}
	if len(r.Problemas) > 0 {
		details["problemas"] = r.Problemas
	}
	return details
}
