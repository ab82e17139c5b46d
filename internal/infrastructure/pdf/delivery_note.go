// Package pdf genera la nota de entrega de un despacho bodega → outlet.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: NOTA DE ENTREGA + N° despacho  │  Fecha + estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DESTINO: outlet + solicitud atendida                        │
//	│  TABLA: Material | Unidad | Cantidad                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: despachado por / recibido por   │  QR del despacho  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-outlets-api/internal/application/ports"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

var _ ports.DeliveryNoteRenderer = (*DeliveryNoteGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// DeliveryNoteGenerator implementa ports.DeliveryNoteRenderer con Maroto v2.
type DeliveryNoteGenerator struct {
	company string
}

// NewDeliveryNoteGenerator construye el generador; company aparece como autor del PDF.
func NewDeliveryNoteGenerator(company string) *DeliveryNoteGenerator {
	return &DeliveryNoteGenerator{company: company}
}

// RenderDeliveryNote genera el PDF y devuelve sus bytes.
func (g *DeliveryNoteGenerator) RenderDeliveryNote(_ context.Context, d *entity.Dispatch, m *entity.Material) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Nota de entrega "+d.ID, true).
		WithAuthor(g.company, true).
		Build()

	doc := maroto.New(cfg)
	doc.AddRows(headerRow(d))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	doc.AddRows(destinationRow(d))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	doc.AddRows(tableHeaderRow(), itemRow(d, m))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	doc.AddRows(row.New(6))
	doc.AddRows(signatureRow(d))

	out, err := doc.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar nota de entrega: %w", err)
	}
	return out.GetBytes(), nil
}

func headerRow(d *entity.Dispatch) core.Row {
	status := "EN TRÁNSITO"
	if d.IsReceived() {
		status = "RECIBIDO"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("NOTA DE ENTREGA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Despacho: "+d.ID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Fecha: "+formatDate(d.DispatchedAt), props.Text{
				Size: 9, Align: align.Right, Top: 2,
			}),
			text.New(status, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 9, Color: colorPrimary,
			}),
		),
	)
}

func destinationRow(d *entity.Dispatch) core.Row {
	request := "despacho directo"
	if d.RequestID != "" {
		request = "solicitud " + d.RequestID
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DESTINO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New("Outlet "+d.OutletID, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Origen: bodega central   |   "+request, props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Material", 7, align.Left),
		h("Unidad", 2, align.Center),
		h("Cantidad", 3, align.Right),
	)
}

func itemRow(d *entity.Dispatch, m *entity.Material) core.Row {
	name, unit := d.MaterialID, ""
	if m != nil {
		name, unit = m.Name, m.Unit
	}
	return row.New(7).Add(
		col.New(7).Add(text.New(name, props.Text{Size: 9, Top: 1, Left: 1})),
		col.New(2).Add(text.New(nonEmpty(unit, "—"), props.Text{Size: 9, Align: align.Center, Top: 1})),
		col.New(3).Add(text.New(d.Quantity.String(), props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1})),
	)
}

func signatureRow(d *entity.Dispatch) core.Row {
	received := "____________________"
	if d.IsReceived() {
		received = nonEmpty(d.ReceivedBy, "—")
		if d.ReceivedAt != nil {
			received += " (" + formatDate(*d.ReceivedAt) + ")"
		}
	}
	return row.New(40).Add(
		col.New(8).Add(
			text.New("Despachado por: "+nonEmpty(d.DispatchedBy, "—"), props.Text{Size: 9, Top: 4}),
			text.New("Recibido por: "+received, props.Text{Size: 9, Top: 14}),
			text.New("Escanee el código para confirmar la recepción del despacho.", props.Text{
				Size: 7, Top: 28, Color: colorGray,
			}),
		),
		col.New(4).Add(code.NewQr(d.ID, props.Rect{Percent: 90, Center: true})),
	)
}

func formatDate(t time.Time) string {
	return t.UTC().Format("02/01/2006 15:04")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
