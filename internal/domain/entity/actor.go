package entity

// Roles válidos (conjunto cerrado). El límite HTTP los verifica una sola vez;
// el núcleo sólo pregunta por capacidades.
const (
	RoleOwner      = "owner"
	RoleSupervisor = "supervisor"
	RoleWarehouse  = "warehouse"
	RoleCashier    = "cashier"
)

// ValidRole indica si role pertenece al conjunto cerrado.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleSupervisor, RoleWarehouse, RoleCashier:
		return true
	}
	return false
}

// Actor identidad explícita que recibe cada operación del núcleo
// (la provee el colaborador de identidad, nunca el cliente).
type Actor struct {
	ID       string
	Role     string
	OutletID string // sólo para personal de outlet
}

// IsWarehouse indica si el actor opera la bodega central.
func (a Actor) IsWarehouse() bool { return a.Role == RoleWarehouse }

// HasOversight indica acceso de lectura sobre todos los outlets (owner/supervisor).
func (a Actor) HasOversight() bool { return a.Role == RoleOwner || a.Role == RoleSupervisor }

// IsOutletStaff indica si el actor pertenece a un outlet.
func (a Actor) IsOutletStaff() bool { return a.Role == RoleCashier && a.OutletID != "" }

// OwnsOutlet indica si el actor es personal del outlet indicado.
func (a Actor) OwnsOutlet(outletID string) bool {
	return a.IsOutletStaff() && a.OutletID == outletID
}

// CanViewOutlet lectura de datos de un outlet.
func (a Actor) CanViewOutlet(outletID string) bool {
	return a.HasOversight() || a.IsWarehouse() || a.OwnsOutlet(outletID)
}
