package wld

import "github.com/go-gl/mathgl/mgl64"

// Vec3 is a world-space point. WLD geometry is stored at 64-bit precision.
type Vec3 = mgl64.Vec3

// DefaultMipDistance is the LOD switch threshold assigned to mips whose
// BRMP header is absent.
const DefaultMipDistance = 1_000_000.0

// World is the root of the decoded model. It owns its whole sub-tree and is
// never mutated after Decode returns. Fields whose source chunk is absent
// keep their zero values.
type World struct {
	Name            string
	Description     string
	BackgroundColor uint32 // ARGB, alpha in the high byte
	SpawnFlags      uint32

	// EngineBuild is valid only when HasEngineBuild is set; EngineVersion is
	// set only when the build is.
	EngineBuild    uint32
	HasEngineBuild bool
	EngineVersion  string

	Entities []Entity
	Brushes  []Brush
}

// Brush is one solid-geometry object composed of LOD mips.
type Brush struct {
	ID   int // equals the brush's index within World.Brushes
	Mips []BrushMip
}

// BrushMip is one level of detail. The lowest-index mip is the most detailed.
type BrushMip struct {
	MaxDistance float32
	Sectors     []Sector
}

// Sector is a convex region described by shared vertices and polygons that
// index them.
type Sector struct {
	Name     string
	Color    uint32
	Ambient  uint32
	Flags    uint32
	Vertices []Vec3
	Polygons []Polygon
}

// Polygon geometry. Vertices are resolved copies of sector vertices.
// Indices holds triangle-strip elements; when empty the polygon is meant to
// be triangulated as a fan at render time. Every index is within the parent
// sector's vertex range.
type Polygon struct {
	Vertices []Vec3
	Indices  []int32
	Color    uint32 // ARGB
	Flags    uint32
}

// Entity is a placed world object. The current decoder never populates
// entities; the type exists so consumers are ready for an entity archive.
type Entity struct {
	ID        int
	ClassName string
	Placement Placement
}

// Placement locates an entity in world space. Rotation is Euler XYZ.
type Placement struct {
	Position Vec3
	Rotation Vec3
}
