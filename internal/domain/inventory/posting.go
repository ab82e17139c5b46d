package inventory

import (
	"sort"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// LockOrder devuelve las claves únicas tocadas por los movimientos en orden total.
// Bloquear siempre en este orden evita interbloqueos entre transacciones concurrentes.
func LockOrder(postings []entity.LedgerPosting) []entity.LedgerKey {
	seen := make(map[entity.LedgerKey]struct{}, len(postings))
	keys := make([]entity.LedgerKey, 0, len(postings))
	for _, p := range postings {
		if _, ok := seen[p.Key]; ok {
			continue
		}
		seen[p.Key] = struct{}{}
		keys = append(keys, p.Key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// ApplyOrder ordena un plan de movimientos para su ejecución: primero los créditos,
// luego los débitos, cada grupo por clave. Un plan compensatorio (revertir + reaplicar)
// sólo falla si su efecto neto deja alguna fila en negativo.
// Los movimientos con Delta cero se descartan.
func ApplyOrder(postings []entity.LedgerPosting) []entity.LedgerPosting {
	credits := make([]entity.LedgerPosting, 0, len(postings))
	debits := make([]entity.LedgerPosting, 0, len(postings))
	for _, p := range postings {
		switch {
		case p.Delta.IsZero():
			continue
		case p.IsCredit():
			credits = append(credits, p)
		default:
			debits = append(debits, p)
		}
	}
	byKey := func(list []entity.LedgerPosting) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Key.Less(list[j].Key) })
	}
	byKey(credits)
	byKey(debits)
	return append(credits, debits...)
}

// Reverse invierte el signo de cada movimiento (compensación).
func Reverse(postings []entity.LedgerPosting) []entity.LedgerPosting {
	out := make([]entity.LedgerPosting, len(postings))
	for i, p := range postings {
		out[i] = entity.LedgerPosting{Key: p.Key, Delta: p.Delta.Neg()}
	}
	return out
}
