// Package worldstat computes derived aggregates over a decoded world, the
// numbers the viewer's information sidebar displays.
package worldstat

import (
	"github.com/go-gl/mathgl/mgl64"

	"wld-viewer/internal/wld"
)

// Stats summarizes one world. Counts cover every mip of every brush.
type Stats struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	EngineBuild   uint32 `json:"engine_build"`
	EngineVersion string `json:"engine_version"`
	SpawnFlags    uint32 `json:"spawn_flags"`
	Background    uint32 `json:"background_color"`

	Brushes   int `json:"brushes"`
	Mips      int `json:"mips"`
	Sectors   int `json:"sectors"`
	Polygons  int `json:"polygons"`
	Vertices  int `json:"vertices"`
	Triangles int `json:"triangles"`
	Entities  int `json:"entities"`

	// Bounding box over every sector vertex, valid only when HasBounds.
	HasBounds bool       `json:"has_bounds"`
	Min       [3]float64 `json:"min"`
	Max       [3]float64 `json:"max"`
}

// Collect walks the world once. The world is read-only to this package.
func Collect(w *wld.World) Stats {
	st := Stats{
		Name:          w.Name,
		Description:   w.Description,
		EngineVersion: w.EngineVersion,
		SpawnFlags:    w.SpawnFlags,
		Background:    w.BackgroundColor,
		Brushes:       len(w.Brushes),
		Entities:      len(w.Entities),
	}
	if w.HasEngineBuild {
		st.EngineBuild = w.EngineBuild
	}

	lo := mgl64.Vec3{}
	hi := mgl64.Vec3{}
	for _, br := range w.Brushes {
		st.Mips += len(br.Mips)
		for _, mip := range br.Mips {
			st.Sectors += len(mip.Sectors)
			for _, s := range mip.Sectors {
				st.Vertices += len(s.Vertices)
				st.Polygons += len(s.Polygons)
				for _, v := range s.Vertices {
					if !st.HasBounds {
						lo, hi = v, v
						st.HasBounds = true
						continue
					}
					lo = mgl64.Vec3{min(lo.X(), v.X()), min(lo.Y(), v.Y()), min(lo.Z(), v.Z())}
					hi = mgl64.Vec3{max(hi.X(), v.X()), max(hi.Y(), v.Y()), max(hi.Z(), v.Z())}
				}
				for _, p := range s.Polygons {
					st.Triangles += TriangleCount(p)
				}
			}
		}
	}
	if st.HasBounds {
		st.Min = [3]float64{lo.X(), lo.Y(), lo.Z()}
		st.Max = [3]float64{hi.X(), hi.Y(), hi.Z()}
	}
	return st
}

// TriangleCount reports how many triangles a polygon yields: strip elements
// minus two when indices are present, a fan over the vertices otherwise.
func TriangleCount(p wld.Polygon) int {
	if len(p.Indices) > 0 {
		return max(len(p.Indices)-2, 0)
	}
	return max(len(p.Vertices)-2, 0)
}
