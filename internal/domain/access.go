package domain

import "github.com/jhoicas/stock-outlets-api/internal/domain/entity"

// RequireWarehouse exige un actor de bodega.
func RequireWarehouse(actor entity.Actor) error {
	if actor.IsWarehouse() {
		return nil
	}
	return ErrForbidden
}

// RequireOutletOperator exige que el actor sea la bodega o personal del outlet indicado
// (confirmación de recepción).
func RequireOutletOperator(actor entity.Actor, outletID string) error {
	if actor.IsWarehouse() || actor.OwnsOutlet(outletID) {
		return nil
	}
	return outletDenied(actor)
}

// RequireOutletView exige permiso de lectura sobre los datos del outlet.
func RequireOutletView(actor entity.Actor, outletID string) error {
	if actor.CanViewOutlet(outletID) {
		return nil
	}
	return outletDenied(actor)
}

func outletDenied(actor entity.Actor) error {
	if actor.IsOutletStaff() {
		return ErrForbiddenOutletMismatch
	}
	return ErrForbidden
}
