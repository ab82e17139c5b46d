package inventory

import (
	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

func toIntakeResponse(i *entity.Intake) *dto.IntakeResponse {
	if i == nil {
		return nil
	}
	return &dto.IntakeResponse{
		ID:         i.ID,
		MaterialID: i.MaterialID,
		Quantity:   i.Quantity,
		Supplier:   i.Supplier,
		ReceivedAt: i.ReceivedAt,
		CreatedBy:  i.CreatedBy,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

func toStockRequestResponse(r *entity.StockRequest) *dto.StockRequestResponse {
	if r == nil {
		return nil
	}
	return &dto.StockRequestResponse{
		ID:          r.ID,
		OutletID:    r.OutletID,
		MaterialID:  r.MaterialID,
		Quantity:    r.Quantity,
		Status:      r.Status,
		RequestedBy: r.RequestedBy,
		ApprovedBy:  r.ApprovedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toDispatchResponse(d *entity.Dispatch) *dto.DispatchResponse {
	if d == nil {
		return nil
	}
	return &dto.DispatchResponse{
		ID:           d.ID,
		MaterialID:   d.MaterialID,
		OutletID:     d.OutletID,
		RequestID:    d.RequestID,
		Quantity:     d.Quantity,
		Status:       d.Status,
		ProofURL:     d.ProofURL,
		DispatchedBy: d.DispatchedBy,
		ReceivedBy:   d.ReceivedBy,
		DispatchedAt: d.DispatchedAt,
		ReceivedAt:   d.ReceivedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
