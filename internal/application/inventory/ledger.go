package inventory

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

// PostLedger aplica un plan de movimientos dentro de la transacción en curso.
// Bloquea todas las filas involucradas en orden global antes de escribir y luego
// aplica créditos y débitos; el primer débito rechazado aborta la unidad completa.
func PostLedger(ctx context.Context, ledger repository.LedgerRepository, postings []entity.LedgerPosting) error {
	plan := inventory.ApplyOrder(postings)
	if len(plan) == 0 {
		return nil
	}
	if _, err := ledger.LockForUpdate(ctx, inventory.LockOrder(plan)); err != nil {
		return err
	}
	for _, p := range plan {
		var err error
		if p.IsCredit() {
			_, err = ledger.Credit(ctx, p.Key, p.Amount())
		} else {
			_, err = ledger.Debit(ctx, p.Key, p.Amount())
		}
		if err != nil {
			return err
		}
	}
	return nil
}
