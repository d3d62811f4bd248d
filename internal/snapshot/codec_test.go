package snapshot

import (
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"wholecell/internal/bioseq"
	"wholecell/internal/interpolate"
	"wholecell/internal/ndarray"
	"wholecell/internal/objtree"
	"wholecell/internal/symbolic"
	"wholecell/internal/units"
)

func TestRoundTripTree(t *testing.T) {
	arr, err := ndarray.NewFloat64([]int{2, 2}, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	ints, err := ndarray.NewInt64([]int{3}, []int64{-1, 0, 9_000_000_000_000_000_000})
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	gram := units.NewUnit(1, map[string]int{"g": 1})
	sa := units.NewStructArray(arr, map[string]units.Unit{"mass": gram})
	matrix, err := symbolic.NewMatrix(1, 2, []symbolic.Expr{symbolic.NewExpr("x"), symbolic.NewExpr("y^2")})
	if err != nil {
		t.Fatalf("new matrix: %v", err)
	}
	spline, err := interpolate.Fit([]float64{0, 1, 2, 3}, []float64{0, 1, 8, 27})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	tree := map[string]any{
		"str":         "hello",
		"bytes":       []byte{0x00, 0xff, 0x10},
		"int":         int64(-42),
		"float":       0.1,
		"bool":        true,
		"null":        nil,
		"seq":         []any{"a", int64(1), 2.5},
		"typename":    objtree.TypeName("reconstruction.SimData"),
		"quantity":    units.NewQuantity(3.5, gram),
		"bioseq":      bioseq.New("AUGGCU"),
		"expr":        symbolic.NewExpr("k1*S/(Km+S)"),
		"matrix":      matrix,
		"ndarray":     ints,
		"structarray": sa,
		"spline":      spline,
	}

	data, err := Encode(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, tree) {
		t.Fatalf("round trip mismatch:\ngot  %#v\nwant %#v", decoded, tree)
	}
}

func TestRoundTripNonFiniteFloats(t *testing.T) {
	tree := []any{math.NaN(), math.Inf(1), math.Inf(-1)}

	data, err := Encode(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := decoded.([]any)
	if !math.IsNaN(out[0].(float64)) {
		t.Fatalf("expected NaN, got %v", out[0])
	}
	if !math.IsInf(out[1].(float64), 1) || !math.IsInf(out[2].(float64), -1) {
		t.Fatalf("expected infinities, got %v %v", out[1], out[2])
	}
}

func TestIntegersCarriedExactly(t *testing.T) {
	big := int64(1<<62 + 1)
	data, err := Encode(big)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != big {
		t.Fatalf("got %v want %v", decoded, big)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"schema_version": 99,
		"codec_version":  CurrentCodecVersion,
		"root":           map[string]any{"k": "null"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Decode(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"schema_version": CurrentSchemaVersion,
		"codec_version":  CurrentCodecVersion,
		"root":           map[string]any{"k": "complex", "v": "1+2i"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Decode(data); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestEncodeRejectsUnsupportedValue(t *testing.T) {
	if _, err := Encode(make(chan int)); err == nil {
		t.Fatal("expected unsupported value error")
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, KBDir, SimDataFilename)
	tree := map[string]any{"a": int64(1)}

	if err := Save(path, tree); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded, tree) {
		t.Fatalf("got %v want %v", loaded, tree)
	}
}

func TestSimDataPath(t *testing.T) {
	got := SimDataPath("out/run1")
	want := filepath.Join("out/run1", "kb", "simData.snap")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
