// Package snapshot serializes materialized object trees. Every node is a
// kind-tagged envelope so heterogeneous trees (mappings, sequences, unit
// quantities, arrays, splines) reconstruct bit-for-bit: integers travel as
// decimal strings, floats as shortest-roundtrip strings (NaN and infinities
// included), byte strings as base64.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"wholecell/internal/bioseq"
	"wholecell/internal/interpolate"
	"wholecell/internal/ndarray"
	"wholecell/internal/objtree"
	"wholecell/internal/symbolic"
	"wholecell/internal/units"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// Layout of a build output directory.
const (
	KBDir           = "kb"
	SimDataFilename = "simData.snap"
	FileSuffix      = ".snap"
)

var ErrVersionMismatch = errors.New("snapshot version mismatch")

type envelope struct {
	SchemaVersion int  `json:"schema_version"`
	CodecVersion  int  `json:"codec_version"`
	Root          node `json:"root"`
}

type node struct {
	K string          `json:"k"`
	V json.RawMessage `json:"v,omitempty"`
}

// Encode serializes a materialized tree.
func Encode(tree any) ([]byte, error) {
	root, err := encodeNode(tree)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Root:          root,
	})
}

// Decode reconstructs a tree from its serialized form. Version mismatches
// and malformed payloads are errors; nothing is recovered partially.
func Decode(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot envelope: %w", err)
	}
	if env.SchemaVersion != CurrentSchemaVersion || env.CodecVersion != CurrentCodecVersion {
		return nil, fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, env.SchemaVersion, env.CodecVersion)
	}
	return decodeNode(env.Root)
}

func encodeNode(v any) (node, error) {
	switch val := v.(type) {
	case nil:
		return node{K: "null"}, nil

	case map[string]any:
		entries := make(map[string]node, len(val))
		for k, child := range val {
			enc, err := encodeNode(child)
			if err != nil {
				return node{}, err
			}
			entries[k] = enc
		}
		return wrap("map", entries)

	case []any:
		items := make([]node, len(val))
		for i, child := range val {
			enc, err := encodeNode(child)
			if err != nil {
				return node{}, err
			}
			items[i] = enc
		}
		return wrap("seq", items)

	case string:
		return wrap("str", val)
	case []byte:
		return wrap("bytes", base64.StdEncoding.EncodeToString(val))
	case bool:
		return wrap("bool", val)
	case int:
		return wrap("int", strconv.FormatInt(int64(val), 10))
	case int64:
		return wrap("int", strconv.FormatInt(val, 10))
	case float64:
		return wrap("float", formatFloat(val))
	case objtree.TypeName:
		return wrap("typename", string(val))

	case units.Unit:
		return wrap("unit", unitPayload(val))
	case units.Quantity:
		value, err := encodeNode(val.Value)
		if err != nil {
			return node{}, err
		}
		return wrap("quantity", map[string]any{
			"value": value,
			"unit":  unitPayload(val.Unit),
		})
	case bioseq.Seq:
		return wrap("bioseq", val.Data)
	case symbolic.Expr:
		return wrap("expr", val.Form)
	case *symbolic.Matrix:
		cells := make([]string, len(val.Cells))
		for i, c := range val.Cells {
			cells[i] = c.Form
		}
		return wrap("matrix", map[string]any{
			"rows":  val.RowCount,
			"cols":  val.ColCount,
			"cells": cells,
		})
	case *ndarray.Array:
		payload, err := arrayPayload(val)
		if err != nil {
			return node{}, err
		}
		return wrap("ndarray", payload)
	case *units.StructArray:
		unitsByField := make(map[string]any, len(val.Units))
		for name, u := range val.Units {
			unitsByField[name] = unitPayload(u)
		}
		arr, err := arrayPayload(val.Array)
		if err != nil {
			return node{}, err
		}
		return wrap("structarray", map[string]any{
			"array": arr,
			"units": unitsByField,
		})
	case *interpolate.CubicSpline:
		x, err := arrayPayload(val.X)
		if err != nil {
			return node{}, err
		}
		c, err := arrayPayload(val.C)
		if err != nil {
			return node{}, err
		}
		return wrap("spline", map[string]any{
			"x":    x,
			"c":    c,
			"axis": val.Axis,
		})
	}
	return node{}, fmt.Errorf("unsupported snapshot value %T", v)
}

func wrap(kind string, payload any) (node, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return node{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return node{K: kind, V: raw}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func unitPayload(u units.Unit) map[string]any {
	return map[string]any{
		"dims":   u.Dims,
		"factor": formatFloat(u.Factor),
	}
}

func arrayPayload(a *ndarray.Array) (map[string]any, error) {
	payload := map[string]any{
		"shape": a.Shape,
		"dtype": string(a.DType),
	}
	switch a.DType {
	case ndarray.Float64:
		data := make([]string, len(a.Floats))
		for i, f := range a.Floats {
			data[i] = formatFloat(f)
		}
		payload["data"] = data
	case ndarray.Int64:
		data := make([]string, len(a.Ints))
		for i, n := range a.Ints {
			data[i] = strconv.FormatInt(n, 10)
		}
		payload["data"] = data
	case ndarray.Bool:
		payload["data"] = a.Bools
	case ndarray.String:
		payload["data"] = a.Strs
	default:
		items := make([]node, len(a.Objs))
		for i, obj := range a.Objs {
			enc, err := encodeNode(obj)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			items[i] = enc
		}
		payload["data"] = items
	}
	return payload, nil
}

func decodeNode(n node) (any, error) {
	switch n.K {
	case "null":
		return nil, nil

	case "map":
		var entries map[string]node
		if err := json.Unmarshal(n.V, &entries); err != nil {
			return nil, fmt.Errorf("unmarshal map node: %w", err)
		}
		tree := make(map[string]any, len(entries))
		for k, child := range entries {
			dec, err := decodeNode(child)
			if err != nil {
				return nil, err
			}
			tree[k] = dec
		}
		return tree, nil

	case "seq":
		var items []node
		if err := json.Unmarshal(n.V, &items); err != nil {
			return nil, fmt.Errorf("unmarshal seq node: %w", err)
		}
		tree := make([]any, len(items))
		for i, child := range items {
			dec, err := decodeNode(child)
			if err != nil {
				return nil, err
			}
			tree[i] = dec
		}
		return tree, nil

	case "str":
		var s string
		err := json.Unmarshal(n.V, &s)
		return s, err

	case "bytes":
		var s string
		if err := json.Unmarshal(n.V, &s); err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(s)

	case "bool":
		var b bool
		err := json.Unmarshal(n.V, &b)
		return b, err

	case "int":
		var s string
		if err := json.Unmarshal(n.V, &s); err != nil {
			return nil, err
		}
		return strconv.ParseInt(s, 10, 64)

	case "float":
		var s string
		if err := json.Unmarshal(n.V, &s); err != nil {
			return nil, err
		}
		return strconv.ParseFloat(s, 64)

	case "typename":
		var s string
		if err := json.Unmarshal(n.V, &s); err != nil {
			return nil, err
		}
		return objtree.TypeName(s), nil

	case "unit":
		return decodeUnit(n.V)

	case "quantity":
		var payload struct {
			Value node            `json:"value"`
			Unit  json.RawMessage `json:"unit"`
		}
		if err := json.Unmarshal(n.V, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal quantity node: %w", err)
		}
		value, err := decodeNode(payload.Value)
		if err != nil {
			return nil, err
		}
		unit, err := decodeUnit(payload.Unit)
		if err != nil {
			return nil, err
		}
		return units.Quantity{Value: value, Unit: unit}, nil

	case "bioseq":
		var s string
		if err := json.Unmarshal(n.V, &s); err != nil {
			return nil, err
		}
		return bioseq.New(s), nil

	case "expr":
		var s string
		if err := json.Unmarshal(n.V, &s); err != nil {
			return nil, err
		}
		return symbolic.NewExpr(s), nil

	case "matrix":
		var payload struct {
			Rows  int      `json:"rows"`
			Cols  int      `json:"cols"`
			Cells []string `json:"cells"`
		}
		if err := json.Unmarshal(n.V, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal matrix node: %w", err)
		}
		cells := make([]symbolic.Expr, len(payload.Cells))
		for i, form := range payload.Cells {
			cells[i] = symbolic.NewExpr(form)
		}
		return symbolic.NewMatrix(payload.Rows, payload.Cols, cells)

	case "ndarray":
		return decodeArray(n.V)

	case "structarray":
		var payload struct {
			Array json.RawMessage            `json:"array"`
			Units map[string]json.RawMessage `json:"units"`
		}
		if err := json.Unmarshal(n.V, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal structarray node: %w", err)
		}
		arr, err := decodeArray(payload.Array)
		if err != nil {
			return nil, err
		}
		fieldUnits := make(map[string]units.Unit, len(payload.Units))
		for name, raw := range payload.Units {
			u, err := decodeUnit(raw)
			if err != nil {
				return nil, err
			}
			fieldUnits[name] = u
		}
		return units.NewStructArray(arr, fieldUnits), nil

	case "spline":
		var payload struct {
			X    json.RawMessage `json:"x"`
			C    json.RawMessage `json:"c"`
			Axis int             `json:"axis"`
		}
		if err := json.Unmarshal(n.V, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal spline node: %w", err)
		}
		x, err := decodeArray(payload.X)
		if err != nil {
			return nil, err
		}
		c, err := decodeArray(payload.C)
		if err != nil {
			return nil, err
		}
		return &interpolate.CubicSpline{X: x, C: c, Axis: payload.Axis}, nil
	}
	return nil, fmt.Errorf("unsupported snapshot node kind %q", n.K)
}

func decodeUnit(raw json.RawMessage) (units.Unit, error) {
	var payload struct {
		Dims   map[string]int `json:"dims"`
		Factor string         `json:"factor"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return units.Unit{}, fmt.Errorf("unmarshal unit node: %w", err)
	}
	factor, err := strconv.ParseFloat(payload.Factor, 64)
	if err != nil {
		return units.Unit{}, fmt.Errorf("parse unit factor: %w", err)
	}
	return units.Unit{Dims: payload.Dims, Factor: factor}, nil
}

func decodeArray(raw json.RawMessage) (*ndarray.Array, error) {
	var payload struct {
		Shape []int           `json:"shape"`
		DType string          `json:"dtype"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal ndarray node: %w", err)
	}

	switch ndarray.DType(payload.DType) {
	case ndarray.Float64:
		var data []string
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			return nil, err
		}
		floats := make([]float64, len(data))
		for i, s := range data {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse float element %d: %w", i, err)
			}
			floats[i] = f
		}
		return ndarray.NewFloat64(payload.Shape, floats)

	case ndarray.Int64:
		var data []string
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			return nil, err
		}
		ints := make([]int64, len(data))
		for i, s := range data {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse int element %d: %w", i, err)
			}
			ints[i] = n
		}
		return ndarray.NewInt64(payload.Shape, ints)

	case ndarray.Bool:
		var data []bool
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			return nil, err
		}
		return ndarray.NewBool(payload.Shape, data)

	case ndarray.String:
		var data []string
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			return nil, err
		}
		return ndarray.NewString(payload.Shape, data)

	case ndarray.Object:
		var items []node
		if err := json.Unmarshal(payload.Data, &items); err != nil {
			return nil, err
		}
		objs := make([]any, len(items))
		for i, child := range items {
			dec, err := decodeNode(child)
			if err != nil {
				return nil, err
			}
			objs[i] = dec
		}
		return ndarray.NewObject(payload.Shape, objs)
	}
	return nil, fmt.Errorf("unsupported ndarray dtype %q", payload.DType)
}
