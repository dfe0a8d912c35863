package wld

import (
	"fmt"

	"wld-viewer/internal/console"
)

// Sanity envelopes for size-based skips. A size field is honored only when
// it lies strictly inside (0, envelope).
const (
	maxNameLen        = 1000
	maxDescriptionLen = 10000
	maxVersionLen     = 1000
	maxDictSkip       = 10_000_000
	maxTextureSkip    = 10_000_000
	maxShadowSkip     = 10_000_000
	maxPortalSkip     = 100_000_000
	maxBSPNodes       = 1_000_000
)

type decoder struct {
	c     *Cursor
	sink  console.Sink
	world *World
}

// Decode parses a complete in-memory WLD buffer into a World. Diagnostic
// events go to sink (nil means discard). Fatal failures (a missing WRLD
// root or no WSTA marker) return an error and no world; every other
// failure degrades to a warn event and a partially-populated result.
func Decode(data []byte, sink console.Sink) (*World, error) {
	if sink == nil {
		sink = console.Discard
	}
	d := &decoder{c: NewCursor(data), sink: sink, world: &World{}}
	if err := d.run(); err != nil {
		d.logf(console.Error, "parse failed: %v", err)
		return nil, err
	}
	d.logf(console.Success, "parse complete: %d brushes", len(d.world.Brushes))
	return d.world, nil
}

func (d *decoder) logf(level console.Level, format string, args ...any) {
	d.sink(level, fmt.Sprintf(format, args...))
}

func (d *decoder) infof(format string, args ...any) { d.logf(console.Info, format, args...) }
func (d *decoder) warnf(format string, args ...any) { d.logf(console.Warn, format, args...) }

// peekIs reports whether the next four bytes spell id. Near EOF it reports
// false, which every optional-chunk site treats as absence.
func (d *decoder) peekIs(id FourCC) bool {
	got, err := d.c.PeekFourCC()
	return err == nil && got == id
}

// readCount reads a 32-bit element count and rejects values that cannot fit
// in the remaining buffer at elemSize bytes per element.
func (d *decoder) readCount(what string, elemSize int) (int, error) {
	pos := d.c.Pos()
	n, err := d.c.ReadI32()
	if err != nil {
		return 0, err
	}
	count := int(n)
	if count < 0 || count*elemSize > d.c.Remaining() {
		return 0, errMalformed(pos, "%s count %d does not fit in %d remaining bytes",
			what, count, d.c.Remaining())
	}
	return count, nil
}

func (d *decoder) run() error {
	d.readEngineVersion()
	if err := d.c.ExpectFourCC(fccWRLD); err != nil {
		return err
	}
	d.infof("world root found")
	if err := d.readBrushesSection(); err != nil {
		return err
	}
	if err := d.readStateSection(); err != nil {
		d.warnf("world state: %v", err)
	}
	d.readEndMarker()
	return nil
}

// readEngineVersion handles the optional BUIV/VERC header. Absence is not an
// error; a damaged header is absorbed here.
func (d *decoder) readEngineVersion() {
	if !d.peekIs(fccBUIV) {
		return
	}
	d.c.ReadFourCC()
	build, err := d.c.ReadU32()
	if err != nil {
		d.warnf("engine build: %v", err)
		return
	}
	d.world.EngineBuild = build
	d.world.HasEngineBuild = true
	d.infof("engine build %d", build)
	if !d.peekIs(fccVERC) {
		return
	}
	d.c.ReadFourCC()
	n, err := d.c.ReadI32()
	if err != nil {
		d.warnf("engine version: %v", err)
		return
	}
	if n <= 0 || n >= maxVersionLen {
		return
	}
	s, err := d.c.ReadString(int(n))
	if err != nil {
		d.warnf("engine version: %v", err)
		return
	}
	d.world.EngineVersion = s
	d.infof("engine version %q", s)
}

// readBrushesSection walks the partially-ordered optional chunks between
// WRLD and the world state, then realigns on WSTA with a forward scan. The
// scan is the only fatal step: it recovers from any cursor position a failed
// sub-decode left behind.
func (d *decoder) readBrushesSection() error {
	if d.peekIs(fccWLIF) {
		if err := d.readWorldInfo(); err != nil {
			d.warnf("world info: %v", err)
		}
	}
	dictEnd := d.handleDictionaries()
	if d.peekIs(fccBRAR) {
		if err := d.readBrushArchive(); err != nil {
			d.warnf("brush archive: %v", err)
		}
	}
	if d.peekIs(fccTRAR) {
		if err := d.skipTerrainArchive(); err != nil {
			d.warnf("terrain archive: %v", err)
		}
	}
	if dictEnd >= 0 {
		d.c.SetPos(dictEnd)
	}
	pos, ok := d.c.FindFourCC(fccWSTA)
	if !ok {
		return errWstaNotFound(d.c.Pos())
	}
	d.infof("world state marker at byte %d", pos)
	return nil
}

// handleDictionaries consumes an optional DIMP block and an optional DPOS
// forward pointer. The DICT table lives at a file-absolute offset, usually
// past the section that references it: it is read eagerly through the
// pointer while sequential parsing resumes right after DPOS. Returns the
// position just after DEND, or -1 when no dictionary was read.
func (d *decoder) handleDictionaries() int {
	if d.peekIs(fccDIMP) {
		d.c.ReadFourCC()
		if err := d.c.SkipSized(maxDictSkip); err != nil {
			d.warnf("dictionary import: %v", err)
		}
	}
	dictEnd := -1
	if d.peekIs(fccDPOS) {
		d.c.ReadFourCC()
		target, err := d.c.ReadI32()
		if err != nil {
			d.warnf("dictionary position: %v", err)
			return -1
		}
		resume := d.c.Pos()
		end, err := d.readDictionary(int(target))
		if err != nil {
			d.warnf("dictionary: %v", err)
		} else {
			dictEnd = end
		}
		d.c.SetPos(resume)
	}
	return dictEnd
}

// readDictionary decodes the DICT filename table at the given offset and
// returns the position immediately after DEND.
func (d *decoder) readDictionary(target int) (int, error) {
	d.c.SetPos(target)
	if err := d.c.ExpectFourCC(fccDICT); err != nil {
		return 0, err
	}
	count, err := d.readCount("dictionary filename", 4)
	if err != nil {
		return 0, err
	}
	d.infof("dictionary: %d filenames", count)
	for i := 0; i < count; i++ {
		n, err := d.c.ReadI32()
		if err != nil {
			return 0, err
		}
		name, err := d.c.ReadString(int(n))
		if err != nil {
			return 0, err
		}
		if i < 3 {
			d.infof("dictionary[%d] = %q", i, name)
		}
	}
	if err := d.c.ExpectFourCC(fccDEND); err != nil {
		return 0, err
	}
	return d.c.Pos(), nil
}

// readWorldInfo decodes a WLIF block: name, spawn flags, description. A
// length outside its envelope means the field is absent; no payload bytes
// are consumed for it.
func (d *decoder) readWorldInfo() error {
	if err := d.c.ExpectFourCC(fccWLIF); err != nil {
		return err
	}
	if d.peekIs(fccDTRS) {
		d.c.ReadFourCC()
	}
	n, err := d.c.ReadI32()
	if err != nil {
		return err
	}
	if n > 0 && n < maxNameLen {
		s, err := d.c.ReadString(int(n))
		if err != nil {
			return err
		}
		d.world.Name = s
	}
	flags, err := d.c.ReadU32()
	if err != nil {
		return err
	}
	d.world.SpawnFlags = flags
	n, err = d.c.ReadI32()
	if err != nil {
		return err
	}
	if n > 0 && n < maxDescriptionLen {
		s, err := d.c.ReadString(int(n))
		if err != nil {
			return err
		}
		d.world.Description = s
	}
	d.infof("world %q, spawn flags %#x", d.world.Name, d.world.SpawnFlags)
	return nil
}

// readBrushArchive decodes BRAR. Brushes completed before a failure stay in
// the world; the rest of the archive is abandoned by the caller.
func (d *decoder) readBrushArchive() error {
	if err := d.c.ExpectFourCC(fccBRAR); err != nil {
		return err
	}
	count, err := d.readCount("brush", 8)
	if err != nil {
		return err
	}
	d.infof("brush archive: %d brushes", count)
	for i := 0; i < count; i++ {
		br, err := d.readBrush(i)
		if err != nil {
			return fmt.Errorf("brush %d: %w", i, err)
		}
		d.world.Brushes = append(d.world.Brushes, br)
	}
	if d.peekIs(fccPSLS) {
		if err := d.skipPortalLinks(); err != nil {
			return err
		}
	}
	if d.peekIs(fccEOAR) {
		d.c.ReadFourCC()
	}
	return nil
}

func (d *decoder) readBrush(id int) (Brush, error) {
	br := Brush{ID: id}
	if err := d.c.ExpectFourCC(fccBR3D); err != nil {
		return br, err
	}
	ver, err := d.c.ReadI32()
	if err != nil {
		return br, err
	}
	mipCount, err := d.readCount("mip", 8)
	if err != nil {
		return br, err
	}
	d.infof("brush %d: version %d, %d mips", id, ver, mipCount)
	for m := 0; m < mipCount; m++ {
		mip, err := d.readMip()
		if err != nil {
			return br, fmt.Errorf("mip %d: %w", m, err)
		}
		br.Mips = append(br.Mips, mip)
	}
	if err := d.c.ExpectFourCC(fccBREN); err != nil {
		return br, err
	}
	return br, nil
}

func (d *decoder) readMip() (BrushMip, error) {
	mip := BrushMip{MaxDistance: DefaultMipDistance}
	if d.peekIs(fccBRMP) {
		d.c.ReadFourCC()
		f, err := d.c.ReadF32()
		if err != nil {
			return mip, err
		}
		mip.MaxDistance = f
	}
	sectorCount, err := d.readCount("sector", 8)
	if err != nil {
		return mip, err
	}
	for i := 0; i < sectorCount; i++ {
		s, err := d.readSector()
		if err != nil {
			return mip, fmt.Errorf("sector %d: %w", i, err)
		}
		mip.Sectors = append(mip.Sectors, s)
	}
	return mip, nil
}

// readSector decodes one BSC block. Field presence is gated on the embedded
// sector version; fields appear at fixed offsets, order matters.
func (d *decoder) readSector() (Sector, error) {
	var s Sector
	if err := d.c.ExpectFourCC(fccBSC); err != nil {
		return s, err
	}
	ver, err := d.c.ReadI32()
	if err != nil {
		return s, err
	}
	if ver >= 1 {
		n, err := d.c.ReadI32()
		if err != nil {
			return s, err
		}
		name, err := d.c.ReadString(int(n))
		if err != nil {
			return s, err
		}
		s.Name = name
	}
	if s.Color, err = d.c.ReadU32(); err != nil {
		return s, err
	}
	if s.Ambient, err = d.c.ReadU32(); err != nil {
		return s, err
	}
	if s.Flags, err = d.c.ReadU32(); err != nil {
		return s, err
	}
	if ver >= 2 {
		if _, err := d.c.ReadU32(); err != nil { // flags2
			return s, err
		}
	}
	if ver >= 3 {
		if _, err := d.c.ReadU32(); err != nil { // visibility flags
			return s, err
		}
	}

	if err := d.c.ExpectFourCC(fccVTXs); err != nil {
		return s, err
	}
	vtxCount, err := d.readCount("vertex", 24)
	if err != nil {
		return s, err
	}
	s.Vertices = make([]Vec3, 0, vtxCount)
	for i := 0; i < vtxCount; i++ {
		x, err := d.c.ReadF64()
		if err != nil {
			return s, err
		}
		y, err := d.c.ReadF64()
		if err != nil {
			return s, err
		}
		z, err := d.c.ReadF64()
		if err != nil {
			return s, err
		}
		s.Vertices = append(s.Vertices, Vec3{x, y, z})
	}

	// Planes (4×f64 each) and edges (2×i32 each) only reference geometry the
	// vertices already carry; both are skipped.
	if err := d.c.ExpectFourCC(fccPLNs); err != nil {
		return s, err
	}
	planeCount, err := d.readCount("plane", 32)
	if err != nil {
		return s, err
	}
	if err := d.c.Skip(planeCount * 32); err != nil {
		return s, err
	}
	if err := d.c.ExpectFourCC(fccEDGs); err != nil {
		return s, err
	}
	edgeCount, err := d.readCount("edge", 8)
	if err != nil {
		return s, err
	}
	if err := d.c.Skip(edgeCount * 8); err != nil {
		return s, err
	}

	if err := d.c.ExpectFourCC(fccBPOs); err != nil {
		return s, err
	}
	bpoVer, err := d.c.ReadI32()
	if err != nil {
		return s, err
	}
	polyCount, err := d.readCount("polygon", 9)
	if err != nil {
		return s, err
	}
	for i := 0; i < polyCount; i++ {
		p, err := d.readPolygon(bpoVer, &s)
		if err != nil {
			return s, fmt.Errorf("polygon %d: %w", i, err)
		}
		s.Polygons = append(s.Polygons, p)
	}

	if d.peekIs(fccBSP0) {
		d.c.ReadFourCC()
		pos := d.c.Pos()
		n, err := d.c.ReadI32()
		if err != nil {
			return s, err
		}
		nodes := int(n)
		if nodes <= 0 || nodes >= maxBSPNodes {
			return s, errMalformed(pos, "BSP node count %d outside (0, %d)", nodes, maxBSPNodes)
		}
		if err := d.c.Skip(nodes * 48); err != nil {
			return s, err
		}
	}
	return s, nil
}

// readPolygon decodes one polygon record, gated on the BPOs version.
// Triangle vertex indices resolve to copies of the sector's vertices;
// out-of-range indices are dropped without a warning (volume would swamp
// the log).
func (d *decoder) readPolygon(bpoVer int32, s *Sector) (Polygon, error) {
	p := Polygon{Color: 0xFFFFFFFF}
	if _, err := d.c.ReadI32(); err != nil { // plane index
		return p, err
	}
	if bpoVer >= 2 {
		var err error
		if p.Color, err = d.c.ReadU32(); err != nil {
			return p, err
		}
		if p.Flags, err = d.c.ReadU32(); err != nil {
			return p, err
		}
		for slot := 0; slot < 3; slot++ {
			if err := d.skipTextureSlot(); err != nil {
				return p, err
			}
		}
		if err := d.c.Skip(8); err != nil { // polygon properties
			return p, err
		}
	}

	edgeCount, err := d.readCount("polygon edge", 4)
	if err != nil {
		return p, err
	}
	if err := d.c.Skip(edgeCount * 4); err != nil {
		return p, err
	}

	var triVerts, triElems []int32
	if bpoVer >= 4 {
		vtxCount, err := d.readCount("triangle vertex", 4)
		if err != nil {
			return p, err
		}
		triVerts = make([]int32, 0, vtxCount)
		for i := 0; i < vtxCount; i++ {
			v, err := d.c.ReadI32()
			if err != nil {
				return p, err
			}
			triVerts = append(triVerts, v)
		}
		elemCount, err := d.readCount("triangle element", 4)
		if err != nil {
			return p, err
		}
		triElems = make([]int32, 0, elemCount)
		for i := 0; i < elemCount; i++ {
			v, err := d.c.ReadI32()
			if err != nil {
				return p, err
			}
			triElems = append(triElems, v)
		}
	}

	if err := d.skipShadowMap(); err != nil {
		return p, err
	}
	if bpoVer >= 2 {
		if _, err := d.c.ReadU32(); err != nil { // shadow color
			return p, err
		}
	} else {
		if _, err := d.c.ReadU8(); err != nil { // legacy dummy
			return p, err
		}
	}

	for _, vi := range triVerts {
		if vi >= 0 && int(vi) < len(s.Vertices) {
			p.Vertices = append(p.Vertices, s.Vertices[vi])
		}
	}
	for _, e := range triElems {
		if e >= 0 && int(e) < len(s.Vertices) {
			p.Indices = append(p.Indices, e)
		}
	}
	return p, nil
}

// skipTextureSlot passes over one texture slot: counted filename, 6×f32
// mapping definition, packed scroll/blend/flags byte group, color.
func (d *decoder) skipTextureSlot() error {
	pos := d.c.Pos()
	n, err := d.c.ReadI32()
	if err != nil {
		return err
	}
	l := int(n)
	if l <= 0 || l >= maxTextureSkip {
		return errMalformed(pos, "texture name length %d outside (0, %d)", l, maxTextureSkip)
	}
	if err := d.c.Skip(l); err != nil {
		return err
	}
	return d.c.Skip(24 + 4 + 4)
}

func (d *decoder) skipShadowMap() error {
	if !d.peekIs(fccSHMP) {
		return nil
	}
	d.c.ReadFourCC()
	return d.c.SkipSized(maxShadowSkip)
}

func (d *decoder) skipPortalLinks() error {
	if err := d.c.ExpectFourCC(fccPSLS); err != nil {
		return err
	}
	if _, err := d.c.ReadI32(); err != nil { // version
		return err
	}
	if err := d.c.SkipSized(maxPortalSkip); err != nil {
		return err
	}
	return d.c.ExpectFourCC(fccPSLE)
}

// skipTerrainArchive passes over TRAR. Terrain payloads (heightmap + edge
// mask grids) are opaque to this decoder; after each entry the cursor
// byte-steps to the next recognizable tag because trailing terrain data has
// no size field.
func (d *decoder) skipTerrainArchive() error {
	if err := d.c.ExpectFourCC(fccTRAR); err != nil {
		return err
	}
	count, err := d.readCount("terrain", 1)
	if err != nil {
		return err
	}
	d.infof("terrain archive: %d terrains (skipped)", count)
	for i := 0; i < count; i++ {
		if err := d.skipTerrain(); err != nil {
			return fmt.Errorf("terrain %d: %w", i, err)
		}
	}
	if d.peekIs(fccEOTA) {
		d.c.ReadFourCC()
	}
	return nil
}

func (d *decoder) skipTerrain() error {
	if err := d.c.ExpectFourCC(fccTRRN); err != nil {
		return err
	}
	if _, err := d.c.ReadI32(); err != nil { // version
		return err
	}
	n, err := d.c.ReadI32()
	if err != nil {
		return err
	}
	if _, err := d.c.ReadString(int(n)); err != nil { // name
		return err
	}
	if err := d.c.Skip(8); err != nil { // flags/pad
		return err
	}
	pos := d.c.Pos()
	sx, err := d.c.ReadI32()
	if err != nil {
		return err
	}
	sy, err := d.c.ReadI32()
	if err != nil {
		return err
	}
	if sx < 0 || sy < 0 {
		return errMalformed(pos, "terrain size %dx%d", sx, sy)
	}
	cells := int(sx) * int(sy)
	if err := d.c.Skip(cells * 2); err != nil { // heightmap, 16-bit cells
		return err
	}
	if err := d.c.Skip(cells); err != nil { // edge mask
		return err
	}
	for {
		id, err := d.c.PeekFourCC()
		if err != nil {
			return nil
		}
		if id == fccTREN || id == fccTRRN || id == fccEOTA || id == fccDPOS {
			break
		}
		d.c.Skip(1)
	}
	if d.peekIs(fccTREN) {
		d.c.ReadFourCC()
	}
	return nil
}

// readStateSection decodes WSTA and its surroundings. Every failure here is
// non-fatal; the caller downgrades it to a warning and the world keeps its
// defaults.
func (d *decoder) readStateSection() error {
	dictEnd := d.handleDictionaries()
	if err := d.c.ExpectFourCC(fccWSTA); err != nil {
		return err
	}
	ver, err := d.c.ReadI32()
	if err != nil {
		return err
	}
	d.infof("world state version %d", ver)
	if d.peekIs(fccWLIF) {
		if err := d.readWorldInfo(); err != nil {
			return err
		}
	}
	bg, err := d.c.ReadU32()
	if err != nil {
		return err
	}
	d.world.BackgroundColor = bg
	d.infof("background color %#08x", bg)
	if dictEnd >= 0 {
		d.c.SetPos(dictEnd)
	}
	return nil
}

// readEndMarker scans for WEND. Its absence is only worth a warning: the
// world is complete by now.
func (d *decoder) readEndMarker() {
	d.c.SkipToFourCC(fccWEND)
	if d.c.AtEOF() {
		d.warnf("WEND marker not found")
		return
	}
	if err := d.c.ExpectFourCC(fccWEND); err != nil {
		d.warnf("end marker: %v", err)
		return
	}
	d.infof("end marker found")
}
