package parser

import (
	"strings"

	"github.com/FACorreiaa/finance-dashboard/internal/domain/import/normalizer"
)

// Role is the meaning a column carries in a statement.
type Role string

const (
	RoleDate        Role = "date"
	RoleDescription Role = "description"
	RoleAmount      Role = "amount"
	RoleDebit       Role = "debit"
	RoleCredit      Role = "credit"
)

// roleSynonyms are folded header names (or single header words) per role.
var roleSynonyms = map[Role][]string{
	RoleDate: {
		"date", "dt", "data", "fecha", "datum",
		"data mov", "data lancamento", "data movimento", "posting date", "transaction date",
	},
	RoleDescription: {
		"description", "descricao", "historico", "lancamento", "desc", "memo",
		"estabelecimento", "merchant", "payee", "details", "detalhes", "descripcion", "concepto",
		"title", "titulo",
	},
	RoleAmount: {
		"amount", "valor", "value", "importe", "montante", "quantia",
	},
	RoleDebit: {
		"debit", "debits", "debito", "debitos", "cargo", "saida", "saidas", "withdrawal", "withdrawals",
	},
	RoleCredit: {
		"credit", "credits", "credito", "creditos", "abono", "entrada", "entradas", "deposit", "deposits",
	},
}

// roleOrder is the order in which roles claim columns.
var roleOrder = []Role{RoleDate, RoleDescription, RoleDebit, RoleCredit, RoleAmount}

// roleExclusions keeps a header out of a role when it also names another
// one: "Valor Débito" is never the unified amount, "Data Valor" is a value
// date and "Valor Lançamento" is never the description.
var roleExclusions = map[Role][]Role{
	RoleDescription: {RoleAmount, RoleDebit, RoleCredit},
	RoleAmount:      {RoleDebit, RoleCredit, RoleDate},
}

// ColumnMapping holds the header index for each resolved role; -1 means
// unresolved. A resolved mapping has either Amount or both Debit and Credit.
type ColumnMapping struct {
	Date        int `json:"date"`
	Description int `json:"description"`
	Amount      int `json:"amount"`
	Debit       int `json:"debit"`
	Credit      int `json:"credit"`
}

// SplitAmount reports whether amounts come from a debit/credit pair.
func (m ColumnMapping) SplitAmount() bool {
	return m.Amount < 0 && m.Debit >= 0 && m.Credit >= 0
}

// ResolveColumns assigns roles to headers. Headers are scanned by position,
// the first match wins and a column claimed by one role is not reused. A
// unified amount column takes precedence over a debit/credit pair.
func ResolveColumns(headers []string) (ColumnMapping, error) {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = normalizer.Fold(h)
	}

	found := map[Role]int{}
	claimed := make([]bool, len(headers))
	for _, role := range roleOrder {
		found[role] = -1
		for i, h := range folded {
			if claimed[i] || !matchesRole(h, role) {
				continue
			}
			if excluded(h, role) {
				continue
			}
			found[role] = i
			claimed[i] = true
			break
		}
	}

	m := ColumnMapping{
		Date:        found[RoleDate],
		Description: found[RoleDescription],
		Amount:      found[RoleAmount],
		Debit:       found[RoleDebit],
		Credit:      found[RoleCredit],
	}
	if m.Amount >= 0 {
		m.Debit, m.Credit = -1, -1
	}

	var missing []string
	if m.Date < 0 {
		missing = append(missing, string(RoleDate))
	}
	if m.Description < 0 {
		missing = append(missing, string(RoleDescription))
	}
	if m.Amount < 0 && !m.SplitAmount() {
		missing = append(missing, "amount (or debit and credit)")
	}
	if len(missing) > 0 {
		return m, &SchemaError{Headers: headers, Missing: missing}
	}
	return m, nil
}

func excluded(header string, role Role) bool {
	for _, other := range roleExclusions[role] {
		if matchesRole(header, other) {
			return true
		}
	}
	return false
}

// matchesRole reports whether a folded header equals one of the role's
// synonyms or contains one as a whole word.
func matchesRole(header string, role Role) bool {
	if header == "" {
		return false
	}
	words := headerWords(header)
	joined := strings.Join(words, " ")
	for _, syn := range roleSynonyms[role] {
		if header == syn || joined == syn {
			return true
		}
		if strings.Contains(syn, " ") {
			if strings.HasPrefix(joined+" ", syn+" ") {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == syn {
				return true
			}
		}
	}
	return false
}

func headerWords(header string) []string {
	return strings.FieldsFunc(header, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
