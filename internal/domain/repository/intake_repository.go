package repository

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// IntakeRepository puerto de persistencia para recepciones en bodega.
type IntakeRepository interface {
	Create(ctx context.Context, intake *entity.Intake) error
	Update(ctx context.Context, intake *entity.Intake) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Intake, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Intake, error)
	List(ctx context.Context, materialID string, limit, offset int) ([]*entity.Intake, error)
}
