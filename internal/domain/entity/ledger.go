package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de stock frente al mínimo del material.
const (
	StockStatusOK       = "ok"
	StockStatusCritical = "critical"
)

// LedgerKey identifica una fila de ledger. OutletID vacío = bodega central.
type LedgerKey struct {
	OutletID   string
	MaterialID string
}

// WarehouseKey clave del ledger de bodega para un material.
func WarehouseKey(materialID string) LedgerKey {
	return LedgerKey{MaterialID: materialID}
}

// OutletKey clave del ledger de un outlet para un material.
func OutletKey(outletID, materialID string) LedgerKey {
	return LedgerKey{OutletID: outletID, MaterialID: materialID}
}

// IsWarehouse indica si la clave apunta al ledger de bodega.
func (k LedgerKey) IsWarehouse() bool { return k.OutletID == "" }

// Less orden total usado para adquirir bloqueos siempre en el mismo orden.
func (k LedgerKey) Less(o LedgerKey) bool {
	if k.OutletID != o.OutletID {
		return k.OutletID < o.OutletID
	}
	return k.MaterialID < o.MaterialID
}

// LedgerRow cantidad actual de un material en bodega o en un outlet.
type LedgerRow struct {
	Key       LedgerKey
	Quantity  decimal.Decimal // nunca negativa
	UpdatedAt time.Time
}

// LedgerPosting movimiento de cantidad sobre una fila: Delta > 0 crédito, Delta < 0 débito.
type LedgerPosting struct {
	Key   LedgerKey
	Delta decimal.Decimal
}

// Credit construye un crédito.
func Credit(key LedgerKey, amount decimal.Decimal) LedgerPosting {
	return LedgerPosting{Key: key, Delta: amount}
}

// Debit construye un débito.
func Debit(key LedgerKey, amount decimal.Decimal) LedgerPosting {
	return LedgerPosting{Key: key, Delta: amount.Neg()}
}

// IsCredit indica si el movimiento suma cantidad.
func (p LedgerPosting) IsCredit() bool { return p.Delta.IsPositive() }

// Amount valor absoluto del movimiento.
func (p LedgerPosting) Amount() decimal.Decimal { return p.Delta.Abs() }
