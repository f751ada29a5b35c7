package models

import "math"

// Company is the invoice block read from the company sheet.
type Company struct {
	ID                 int     `json:"Id"`
	ParceriaID         int     `json:"ParceriaId"`
	PrestacaoContaID   int64   `json:"PrestacaoContaId"`
	RazaoSocialEmpresa string  `json:"RazaoSocialEmpresa"`
	CnpjEmpresa        string  `json:"CnpjEmpresa"`
	ValorBrutoNf       float64 `json:"ValorBrutoNf"`
	NumNotaFiscal      string  `json:"NumNotaFiscal"`
	ValorLiquido       float64 `json:"ValorLiquido"`
}

// Provider is one contracted professional from the provider sheet.
type Provider struct {
	ID                    int     `json:"Id"`
	Nome                  string  `json:"Nome"`
	NomeSocial            string  `json:"NomeSocial"`
	CPF                   string  `json:"CPF"`
	DataNascimento        string  `json:"DataNascimento"`
	AutoDeclaracaoGenero  int     `json:"AutoDeclaracaoGenero"`
	AutoDeclaracaoRacial  int     `json:"AutoDeclaracaoRacial"`
	CargoID               int     `json:"CargoId"`
	NumConselhoClasse     string  `json:"NumConselhoClasse"`
	CnsDoProfissional     string  `json:"CnsDoProfissional"`
	CargaHorariaSemanalID int     `json:"CargaHorariaSemanalId"`
	TurnoTrabalho         int     `json:"TurnoTrabalho"`
	UnidadeID             int     `json:"UnidadeId"`
	LinhaServicoID        int     `json:"LinhaServicoId"`
	ValorPorProfissional  float64 `json:"ValorPorProfissional"`
	TipoCoordenadoria     int     `json:"TipoCoordenadoria"`
	TipoAtividade         int     `json:"TipoAtividade"`
	Especificacao         string  `json:"Especificacao"`
}

// Payload is the body posted to FolhaPagamentoPessoaJuridica.
type Payload struct {
	Company
	Prestadores   []Provider `json:"Prestadores"`
	SourceArquivo string     `json:"SourceArquivo"`
}

// Sanitize resets non-finite amounts, which JSON cannot encode.
func (c *Company) Sanitize() {
	c.ValorBrutoNf = finiteOrZero(c.ValorBrutoNf)
	c.ValorLiquido = finiteOrZero(c.ValorLiquido)
}

// Sanitize resets non-finite amounts, which JSON cannot encode.
func (p *Provider) Sanitize() {
	p.ValorPorProfissional = finiteOrZero(p.ValorPorProfissional)
}

// Sanitize sanitizes the company block and every provider.
func (p *Payload) Sanitize() {
	p.Company.Sanitize()
	for i := range p.Prestadores {
		p.Prestadores[i].Sanitize()
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
