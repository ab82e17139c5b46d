package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

type catalogRepo struct {
	store *Store
	tx    *state
}

func (r *catalogRepo) GetMaterial(_ context.Context, id string) (*entity.Material, error) {
	var out *entity.Material
	err := r.store.view(r.tx, func(st *state) error {
		if m, ok := st.materials[id]; ok {
			c := *m
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *catalogRepo) ListMaterials(_ context.Context, ids []string) (map[string]*entity.Material, error) {
	out := make(map[string]*entity.Material)
	err := r.store.view(r.tx, func(st *state) error {
		if len(ids) == 0 {
			for id, m := range st.materials {
				c := *m
				out[id] = &c
			}
			return nil
		}
		for _, id := range ids {
			if m, ok := st.materials[id]; ok {
				c := *m
				out[id] = &c
			}
		}
		return nil
	})
	return out, err
}

func (r *catalogRepo) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *catalogRepo) GetProducts(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.store.view(r.tx, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = copyProduct(p)
			}
		}
		return nil
	})
	return out, err
}

func (r *catalogRepo) ListProducts(_ context.Context, availableOnly bool) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0)
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if availableOnly && !p.Available {
				continue
			}
			out = append(out, copyProduct(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *catalogRepo) OutletExists(_ context.Context, id string) (bool, error) {
	var ok bool
	err := r.store.view(r.tx, func(st *state) error {
		_, ok = st.outlets[id]
		return nil
	})
	return ok, err
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	c.BOM = append([]entity.BOMEntry(nil), p.BOM...)
	return &c
}

// AddOutlet registra un outlet en el catálogo.
func (s *Store) AddOutlet(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.outlets[id] = name
}

// AddMaterial registra o reemplaza un material del catálogo.
func (s *Store) AddMaterial(m entity.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.materials[m.ID] = &m
}

// AddProduct registra o reemplaza un producto con su BOM.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyProduct(&p)
	for i := range c.BOM {
		c.BOM[i].ProductID = c.ID
	}
	s.state.products[c.ID] = c
}

// SetStock fija la cantidad de una fila de ledger (carga inicial).
func (s *Store) SetStock(key entity.LedgerKey, quantity decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ledger[key] = &entity.LedgerRow{Key: key, Quantity: quantity, UpdatedAt: s.now()}
}

type catalogFile struct {
	Outlets []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"outlets"`
	Materials []struct {
		ID               string          `json:"id"`
		Name             string          `json:"name"`
		Unit             string          `json:"unit"`
		WarehouseMinimum decimal.Decimal `json:"warehouse_minimum"`
		OutletMinimum    decimal.Decimal `json:"outlet_minimum"`
	} `json:"materials"`
	Products []struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Available *bool           `json:"available"`
		BOM       []struct {
			MaterialID string          `json:"material_id"`
			Ratio      decimal.Decimal `json:"ratio"`
		} `json:"bom"`
	} `json:"products"`
}

// LoadCatalogFile carga outlets, materiales y productos desde un archivo JSON (driver de desarrollo local).
func (s *Store) LoadCatalogFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("leer catálogo: %w", err)
	}
	var f catalogFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parsear catálogo: %w", err)
	}
	now := time.Now()
	for _, o := range f.Outlets {
		s.AddOutlet(o.ID, o.Name)
	}
	for _, m := range f.Materials {
		s.AddMaterial(entity.Material{
			ID: m.ID, Name: m.Name, Unit: m.Unit,
			WarehouseMinimum: m.WarehouseMinimum, OutletMinimum: m.OutletMinimum,
			CreatedAt: now, UpdatedAt: now,
		})
	}
	for _, p := range f.Products {
		product := entity.Product{ID: p.ID, Name: p.Name, Price: p.Price, Available: p.Available == nil || *p.Available, CreatedAt: now, UpdatedAt: now}
		for _, b := range p.BOM {
			if !b.Ratio.IsPositive() {
				return fmt.Errorf("producto %s: ratio inválido para %s", p.ID, b.MaterialID)
			}
			product.BOM = append(product.BOM, entity.BOMEntry{MaterialID: b.MaterialID, Ratio: b.Ratio})
		}
		s.AddProduct(product)
	}
	return nil
}
