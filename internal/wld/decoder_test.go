package wld

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"

	"wld-viewer/internal/console"
)

// wldBuilder assembles little-endian test files.
type wldBuilder struct {
	buf bytes.Buffer
}

func (b *wldBuilder) fcc(s string) *wldBuilder {
	b.buf.WriteString(s)
	return b
}

func (b *wldBuilder) u32(v uint32) *wldBuilder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *wldBuilder) i32(v int32) *wldBuilder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *wldBuilder) f32(v float32) *wldBuilder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *wldBuilder) f64(v float64) *wldBuilder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *wldBuilder) raw(s string) *wldBuilder {
	b.buf.WriteString(s)
	return b
}

// pstr writes a length-prefixed string.
func (b *wldBuilder) pstr(s string) *wldBuilder {
	return b.i32(int32(len(s))).raw(s)
}

func (b *wldBuilder) zeros(n int) *wldBuilder {
	b.buf.Write(make([]byte, n))
	return b
}

func (b *wldBuilder) len() int { return b.buf.Len() }

func (b *wldBuilder) bytes() []byte { return b.buf.Bytes() }

// minimal state + end trailer shared by most inputs.
func (b *wldBuilder) stateAndEnd(bg uint32) *wldBuilder {
	return b.fcc("WSTA").i32(1).u32(bg).fcc("WEND")
}

func decodeKind(t *testing.T, err error) ErrorKind {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *wld.Error, got %v", err)
	}
	return e.Kind
}

func TestDecodeMinimal(t *testing.T) { // smallest well-formed file
	var b wldBuilder
	b.fcc("WRLD").stateAndEnd(0x00FF0000)

	w, err := Decode(b.bytes(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(w.Brushes) != 0 {
		t.Fatalf("brushes = %d, want 0", len(w.Brushes))
	}
	if w.BackgroundColor != 0x00FF0000 {
		t.Fatalf("background = %#x", w.BackgroundColor)
	}
	if w.Name != "" || w.Description != "" || w.SpawnFlags != 0 {
		t.Fatalf("world info not defaulted: %+v", w)
	}
	if w.HasEngineBuild || w.EngineVersion != "" {
		t.Fatalf("engine version not defaulted: %+v", w)
	}
}

func TestDecodeEngineVersionHeader(t *testing.T) {
	var b wldBuilder
	b.fcc("BUIV").u32(42).fcc("VERC").pstr("1.05b").fcc("WRLD").stateAndEnd(0)

	w, err := Decode(b.bytes(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !w.HasEngineBuild || w.EngineBuild != 42 {
		t.Fatalf("engine build = %d (set=%v)", w.EngineBuild, w.HasEngineBuild)
	}
	if w.EngineVersion != "1.05b" {
		t.Fatalf("engine version = %q", w.EngineVersion)
	}
}

func TestDecodeWorldInfo(t *testing.T) {
	var b wldBuilder
	b.fcc("WRLD").
		fcc("WLIF").pstr("Hello").u32(0x0F).pstr("MyWorld").
		stateAndEnd(0x000000FF)

	w, err := Decode(b.bytes(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w.Name != "Hello" {
		t.Fatalf("name = %q", w.Name)
	}
	if w.SpawnFlags != 0x0F {
		t.Fatalf("spawn flags = %#x", w.SpawnFlags)
	}
	if w.Description != "MyWorld" {
		t.Fatalf("description = %q", w.Description)
	}
	if w.BackgroundColor != 0x000000FF {
		t.Fatalf("background = %#x", w.BackgroundColor)
	}
}

func TestDecodeMissingWorldRoot(t *testing.T) {
	var b wldBuilder
	b.stateAndEnd(0)

	_, err := Decode(b.bytes(), nil)
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindUnexpectedChunk {
		t.Fatalf("expected UnexpectedChunk, got %v", err)
	}
	if e.Expected != fccWRLD || e.Actual != fccWSTA || e.Pos != 0 {
		t.Fatalf("mismatch detail = %+v", e)
	}
}

func TestDecodeMissingStateMarker(t *testing.T) {
	var b wldBuilder
	b.fcc("WRLD").fcc("WEND")

	_, err := Decode(b.bytes(), nil)
	if kind := decodeKind(t, err); kind != KindWstaNotFound {
		t.Fatalf("kind = %v, want WstaNotFound", kind)
	}
}

func TestDecodeTruncatedWorldInfo(t *testing.T) {
	// Name claims 32 bytes but only two follow; the WLIF failure is a
	// warning, the missing WSTA afterwards is the fatal error.
	var b wldBuilder
	b.fcc("WRLD").fcc("WLIF").i32(32).raw("Hi")

	var rec console.Recorder
	_, err := Decode(b.bytes(), rec.Sink())
	if kind := decodeKind(t, err); kind != KindWstaNotFound {
		t.Fatalf("kind = %v, want WstaNotFound", kind)
	}
	var sawWarn bool
	for _, ev := range rec.Events() {
		if ev.Level == console.Warn && strings.Contains(ev.Message, "world info") {
			sawWarn = true
		}
	}
	if !sawWarn {
		t.Fatalf("no world info warning in %v", rec.Events())
	}
}

// buildArchiveWorld assembles one brush / one mip / one sector with a unit
// quad and a single v4 polygon, plus portal links and a BSP block to skip.
func buildArchiveWorld() []byte {
	var b wldBuilder
	b.fcc("WRLD").
		fcc("WLIF").pstr("Quad").u32(0).pstr("one quad, one sector").
		fcc("BRAR").i32(1).
		fcc("BR3D").i32(1).i32(1). // brush version, mip count
		fcc("BRMP").f32(500).     // LOD switch distance
		i32(1).                   // sector count
		fcc("BSC ").i32(3).pstr("inner").
		u32(0x11223344).u32(0x55667788).u32(1). // color, ambient, flags
		u32(0).u32(0)                           // flags2, visibility flags

	b.fcc("VTXs").i32(4).
		f64(0).f64(0).f64(0).
		f64(1).f64(0).f64(0).
		f64(1).f64(1).f64(0).
		f64(0).f64(1).f64(0)
	b.fcc("PLNs").i32(1).zeros(32)
	b.fcc("EDGs").i32(4).zeros(32)

	b.fcc("BPOs").i32(4).i32(1) // bpo version, polygon count
	b.i32(0)                    // plane index
	b.u32(0xFF00FF00).u32(0)    // color, flags
	for slot := 0; slot < 3; slot++ {
		b.pstr("tex.tga").zeros(24 + 4 + 4)
	}
	b.zeros(8)                       // polygon properties
	b.i32(4).zeros(16)               // edge indices
	b.i32(5).i32(0).i32(1).i32(2).i32(3).i32(9) // triangle vertices, 9 out of range
	b.i32(6).i32(0).i32(1).i32(2).i32(0).i32(2).i32(3)
	b.fcc("SHMP").i32(4).zeros(4) // shadow map payload
	b.u32(0)                      // shadow color

	b.fcc("BSP0").i32(2).zeros(96)
	b.fcc("BREN")
	b.fcc("PSLS").i32(1).i32(8).zeros(8).fcc("PSLE")
	b.fcc("EOAR")
	b.stateAndEnd(0xFF336699)
	return b.bytes()
}

func TestDecodeBrushArchive(t *testing.T) {
	var rec console.Recorder
	w, err := Decode(buildArchiveWorld(), rec.Sink())
	if err != nil {
		t.Fatalf("Decode: %v\nlog: %v", err, rec.Events())
	}
	if len(w.Brushes) != 1 {
		t.Fatalf("brushes = %d", len(w.Brushes))
	}
	br := w.Brushes[0]
	if br.ID != 0 {
		t.Fatalf("brush id = %d", br.ID)
	}
	if len(br.Mips) != 1 {
		t.Fatalf("mips = %d", len(br.Mips))
	}
	mip := br.Mips[0]
	if mip.MaxDistance != 500 {
		t.Fatalf("max distance = %v", mip.MaxDistance)
	}
	if len(mip.Sectors) != 1 {
		t.Fatalf("sectors = %d", len(mip.Sectors))
	}
	s := mip.Sectors[0]
	if s.Name != "inner" || s.Color != 0x11223344 || s.Ambient != 0x55667788 || s.Flags != 1 {
		t.Fatalf("sector header = %+v", s)
	}
	if len(s.Vertices) != 4 {
		t.Fatalf("vertices = %d", len(s.Vertices))
	}
	if s.Vertices[2] != (Vec3{1, 1, 0}) {
		t.Fatalf("vertex 2 = %v", s.Vertices[2])
	}
	if len(s.Polygons) != 1 {
		t.Fatalf("polygons = %d", len(s.Polygons))
	}
	p := s.Polygons[0]
	if p.Color != 0xFF00FF00 {
		t.Fatalf("polygon color = %#x", p.Color)
	}
	if len(p.Vertices) != 4 { // index 9 silently dropped
		t.Fatalf("polygon vertices = %d", len(p.Vertices))
	}
	want := []int32{0, 1, 2, 0, 2, 3}
	if !reflect.DeepEqual(p.Indices, want) {
		t.Fatalf("indices = %v", p.Indices)
	}
	if w.BackgroundColor != 0xFF336699 {
		t.Fatalf("background = %#x", w.BackgroundColor)
	}
}

func TestDecodeLegacyPolygonVersion(t *testing.T) {
	// bpoVersion 1: no color/texture block, no triangle lists, one dummy
	// byte instead of the shadow color.
	var b wldBuilder
	b.fcc("WRLD").
		fcc("BRAR").i32(1).
		fcc("BR3D").i32(1).i32(1).
		i32(1). // sector count, implicit mip (no BRMP)
		fcc("BSC ").i32(0).
		u32(0).u32(0).u32(0).
		fcc("VTXs").i32(1).f64(7).f64(8).f64(9).
		fcc("PLNs").i32(0).
		fcc("EDGs").i32(0).
		fcc("BPOs").i32(1).i32(1).
		i32(0).         // plane index
		i32(0).         // edge count
		zeros(1).       // legacy dummy byte
		fcc("BREN").
		stateAndEnd(0)

	w, err := Decode(b.bytes(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	mip := w.Brushes[0].Mips[0]
	if mip.MaxDistance != DefaultMipDistance {
		t.Fatalf("max distance = %v", mip.MaxDistance)
	}
	p := mip.Sectors[0].Polygons[0]
	if p.Color != 0xFFFFFFFF || p.Flags != 0 {
		t.Fatalf("legacy polygon = %+v", p)
	}
	if len(p.Vertices) != 0 || len(p.Indices) != 0 {
		t.Fatalf("legacy polygon carries geometry: %+v", p)
	}
}

func TestDecodeDictionaryForwardPointer(t *testing.T) {
	// DPOS points past filler at the DICT table; sequential parsing resumes
	// after DPOS, then jumps to dictionaryEnd before the WSTA scan.
	var b wldBuilder
	b.fcc("WRLD").fcc("DPOS")
	patch := b.len()
	b.u32(0) // placeholder for the DICT offset
	b.raw("filler bytes that sequential parsing never interprets")
	dictAt := b.len()
	b.fcc("DICT").i32(2).pstr("rocks.tex").pstr("sky.tex").fcc("DEND")
	b.stateAndEnd(0)

	data := b.bytes()
	binary.LittleEndian.PutUint32(data[patch:], uint32(dictAt))

	var rec console.Recorder
	w, err := Decode(data, rec.Sink())
	if err != nil {
		t.Fatalf("Decode: %v\nlog: %v", err, rec.Events())
	}
	if w == nil {
		t.Fatal("nil world")
	}
	var sawCount, sawName bool
	for _, ev := range rec.Events() {
		if strings.Contains(ev.Message, "dictionary: 2 filenames") {
			sawCount = true
		}
		if strings.Contains(ev.Message, "rocks.tex") {
			sawName = true
		}
	}
	if !sawCount || !sawName {
		t.Fatalf("dictionary log missing: %v", rec.Events())
	}
}

func TestDecodeTerrainArchiveSkipped(t *testing.T) {
	var b wldBuilder
	b.fcc("WRLD").fcc("TRAR").i32(1).
		fcc("TRRN").i32(1).pstr("hills").zeros(8).
		i32(4).i32(2).       // 4x2 grid
		zeros(4 * 2 * 2).    // heightmap
		zeros(4 * 2).        // edge mask
		raw("..").           // trailing terrain bytes the decoder must step over
		fcc("TREN").
		fcc("EOTA").
		stateAndEnd(0x01020304)

	w, err := Decode(b.bytes(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w.BackgroundColor != 0x01020304 {
		t.Fatalf("background = %#x", w.BackgroundColor)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	data := buildArchiveWorld()

	var rec1, rec2 console.Recorder
	w1, err1 := Decode(data, rec1.Sink())
	w2, err2 := Decode(data, rec2.Sink())
	if err1 != nil || err2 != nil {
		t.Fatalf("Decode: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(w1, w2) {
		t.Fatal("worlds differ between runs")
	}
	if !reflect.DeepEqual(rec1.Events(), rec2.Events()) {
		t.Fatal("log sequences differ between runs")
	}
}

func TestDecodeFatalLogsSingleError(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"missing root", new(wldBuilder).stateAndEnd(0).bytes(), "unexpected chunk"},
		{"missing state", new(wldBuilder).fcc("WRLD").fcc("WEND").bytes(), "WSTA not found"},
	}
	for _, tc := range cases {
		var rec console.Recorder
		if _, err := Decode(tc.data, rec.Sink()); err == nil {
			t.Fatalf("%s: expected fatal error", tc.name)
		}
		var errs []console.Event
		for _, ev := range rec.Events() {
			if ev.Level == console.Error {
				errs = append(errs, ev)
			}
		}
		if len(errs) != 1 {
			t.Fatalf("%s: %d error events, want 1: %v", tc.name, len(errs), errs)
		}
		if !strings.Contains(errs[0].Message, tc.want) {
			t.Fatalf("%s: error message %q lacks %q", tc.name, errs[0].Message, tc.want)
		}
	}
}

func TestDecodeNeverPanicsOnTruncation(t *testing.T) {
	// Every prefix of a well-formed file must decode or fail cleanly
	// without reading past the buffer.
	data := buildArchiveWorld()
	for i := 0; i <= len(data); i++ {
		func(n int) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("panic at truncation %d: %v", n, r)
				}
			}()
			w, err := Decode(data[:n], nil)
			if err == nil {
				for bi, br := range w.Brushes {
					if br.ID != bi {
						t.Fatalf("truncation %d: brush id %d at index %d", n, br.ID, bi)
					}
				}
			}
		}(i)
	}
}

func TestPolygonIndexSafety(t *testing.T) {
	w, err := Decode(buildArchiveWorld(), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for _, br := range w.Brushes {
		for _, mip := range br.Mips {
			for _, s := range mip.Sectors {
				for _, p := range s.Polygons {
					for _, idx := range p.Indices {
						if idx < 0 || int(idx) >= len(s.Vertices) {
							t.Fatalf("index %d outside %d vertices", idx, len(s.Vertices))
						}
					}
				}
			}
		}
	}
}
