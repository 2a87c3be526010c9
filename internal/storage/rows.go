package storage

import (
	"github.com/san-kum/vortex/internal/elements"
	"gonum.org/v1/gonum/spatial/r3"
)

// ElementRow is one particle, or one panel centroid, in a snapshot file.
type ElementRow struct {
	Set  int     `csv:"set" json:"set"`
	Kind string  `csv:"kind" json:"kind"`
	X    float64 `csv:"x" json:"x"`
	Y    float64 `csv:"y" json:"y"`
	Z    float64 `csv:"z" json:"z"`
	SX   float64 `csv:"sx" json:"sx"`
	SY   float64 `csv:"sy" json:"sy"`
	SZ   float64 `csv:"sz" json:"sz"`
	R    float64 `csv:"r" json:"r"`
	UX   float64 `csv:"ux" json:"ux"`
	UY   float64 `csv:"uy" json:"uy"`
	UZ   float64 `csv:"uz" json:"uz"`
}

func (e ElementRow) Position() r3.Vec { return r3.Vec{X: e.X, Y: e.Y, Z: e.Z} }
func (e ElementRow) Strength() r3.Vec { return r3.Vec{X: e.SX, Y: e.SY, Z: e.SZ} }

// Elements flattens collections into rows. Panels are written at their
// centroids with their area as the radius.
func Elements(colls []elements.Collection) []ElementRow {
	var rows []ElementRow
	for set, c := range colls {
		rows = append(rows, elements.Visit(c,
			func(p *elements.Points) []ElementRow { return pointRows(set, p) },
			func(s *elements.Surfaces) []ElementRow { return panelRows(set, s) },
		)...)
	}
	return rows
}

func pointRows(set int, p *elements.Points) []ElementRow {
	str, hasStr := p.Strengths().Get()
	rows := make([]ElementRow, p.N())
	for i, x := range p.Positions() {
		row := ElementRow{Set: set, Kind: p.Category().String(), X: x.X, Y: x.Y, Z: x.Z, R: p.Radii()[i]}
		if hasStr {
			row.SX, row.SY, row.SZ = str[i].X, str[i].Y, str[i].Z
		}
		u := p.Vels()[i]
		row.UX, row.UY, row.UZ = u.X, u.Y, u.Z
		rows[i] = row
	}
	return rows
}

func panelRows(set int, s *elements.Surfaces) []ElementRow {
	rows := make([]ElementRow, s.NumPanels())
	for i := range rows {
		c := s.Centroid(i)
		row := ElementRow{Set: set, Kind: "panel", X: c.X, Y: c.Y, Z: c.Z, R: s.Areas()[i]}
		if s.Category() != elements.Inert {
			st := s.Strengths()[i]
			row.SX, row.SY, row.SZ = st.X, st.Y, st.Z
		}
		u := s.Vels()[i]
		row.UX, row.UY, row.UZ = u.X, u.Y, u.Z
		rows[i] = row
	}
	return rows
}
