package ingest

import (
	"strings"

	"github.com/JorgeHRP/renato-bi/pkg/layout"
)

// Hint is what an upload's filename suggests about its contents. A
// transactions hint pins extraction to the transaction sheet; without one the
// dashboard scan runs when that sheet yields no summary.
type Hint int

const (
	HintNone Hint = iota
	HintTransactions
)

func (h Hint) String() string {
	if h == HintTransactions {
		return "transactions"
	}
	return "none"
}

func DetectHint(filename string, hints layout.Hints) Hint {
	name := strings.ToLower(filename)
	for _, term := range hints.Transactions {
		if term != "" && strings.Contains(name, strings.ToLower(term)) {
			return HintTransactions
		}
	}
	return HintNone
}
