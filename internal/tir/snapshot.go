package tir

import (
	"errors"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"strata/internal/ir"
	"strata/internal/layout"
)

// Snapshot schema version - increment when the payload format changes.
const snapshotSchemaVersion uint16 = 1

var (
	// ErrSnapshotSchema means the file was written by an incompatible
	// version of the codec.
	ErrSnapshotSchema = errors.New("unsupported snapshot schema")
	// ErrSnapshotRef means an operand index or encoding reference does not
	// resolve.
	ErrSnapshotRef = errors.New("dangling snapshot reference")
)

type snapEncoding struct {
	Kind           string
	SizePerThread  []int
	ThreadsPerWarp []int
	WarpsPerCTA    []int
	Order          []int
	Vec            int
	PerPhase       int
	MaxPhase       int
	Dim            int
	Parent         *snapEncoding
}

type snapValue struct {
	Kind  uint8
	Bits  int
	Shape []int64
	Enc   *snapEncoding
}

type snapOp struct {
	Name     string
	Operands []uint32 // function-local value indices
	Results  []snapValue
	IntAttrs map[string]int64
	StrAttrs map[string]string
}

type snapFunc struct {
	Name string
	Args []snapValue
	Ops  []snapOp
}

type snapModule struct {
	Schema uint16
	Name   string
	Funcs  []snapFunc
}

// EncodeSnapshot serializes a module to the versioned msgpack payload.
func EncodeSnapshot(m *Module) ([]byte, error) {
	snap := snapModule{Schema: snapshotSchemaVersion, Name: m.name}
	for _, f := range m.funcs {
		index := make(map[*Value]uint32, len(f.args)+len(f.ops))
		sf := snapFunc{Name: f.name}
		for _, arg := range f.args {
			index[arg] = uint32(len(index))
			sf.Args = append(sf.Args, encodeValue(arg))
		}
		for _, op := range f.ops {
			so := snapOp{
				Name:     op.name,
				IntAttrs: op.intAttrs,
				StrAttrs: op.strAttrs,
			}
			for _, v := range op.operands {
				idx, ok := index[v]
				if !ok {
					return nil, fmt.Errorf("%w: operand of %q not defined in %q", ErrSnapshotRef, op.name, f.name)
				}
				so.Operands = append(so.Operands, idx)
			}
			for _, v := range op.results {
				index[v] = uint32(len(index))
				so.Results = append(so.Results, encodeValue(v))
			}
			sf.Ops = append(sf.Ops, so)
		}
		snap.Funcs = append(snap.Funcs, sf)
	}
	return msgpack.Marshal(&snap)
}

// DecodeSnapshot rebuilds a module from a msgpack payload.
func DecodeSnapshot(data []byte) (*Module, error) {
	var snap snapModule
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSnapshotSchema, snap.Schema, snapshotSchemaVersion)
	}
	b := NewBuilder(snap.Name)
	for _, sf := range snap.Funcs {
		f := b.AddFunc(sf.Name)
		var values []*Value
		for _, sv := range sf.Args {
			spec, err := decodeValue(sv)
			if err != nil {
				return nil, err
			}
			values = append(values, f.AddArg(spec))
		}
		for _, so := range sf.Ops {
			operands := make([]*Value, 0, len(so.Operands))
			for _, idx := range so.Operands {
				if int(idx) >= len(values) {
					return nil, fmt.Errorf("%w: operand #%d of %q in %q", ErrSnapshotRef, idx, so.Name, sf.Name)
				}
				operands = append(operands, values[idx])
			}
			specs := make([]ValueSpec, 0, len(so.Results))
			for _, sv := range so.Results {
				spec, err := decodeValue(sv)
				if err != nil {
					return nil, err
				}
				specs = append(specs, spec)
			}
			op := f.AddOp(so.Name, operands, specs...)
			for k, v := range so.IntAttrs {
				op.SetIntAttr(k, v)
			}
			for k, v := range so.StrAttrs {
				op.SetStrAttr(k, v)
			}
			values = append(values, op.results...)
		}
	}
	return b.Module(), nil
}

// Load reads and decodes a snapshot file.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	m, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Store encodes a module and writes it to path.
func Store(path string, m *Module) error {
	data, err := EncodeSnapshot(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

func encodeValue(v *Value) snapValue {
	return snapValue{
		Kind:  uint8(v.typ.Kind),
		Bits:  v.typ.Bits,
		Shape: v.shape,
		Enc:   encodeEncoding(v.enc),
	}
}

func decodeValue(sv snapValue) (ValueSpec, error) {
	enc, err := decodeEncoding(sv.Enc)
	if err != nil {
		return ValueSpec{}, err
	}
	return ValueSpec{
		Type:     ir.Type{Kind: ir.TypeKind(sv.Kind), Bits: sv.Bits},
		Shape:    sv.Shape,
		Encoding: enc,
	}, nil
}

func encodeEncoding(enc layout.Encoding) *snapEncoding {
	switch e := enc.(type) {
	case nil:
		return nil
	case *layout.BlockedEncoding:
		return &snapEncoding{
			Kind:           "blocked",
			SizePerThread:  e.SizePerThread,
			ThreadsPerWarp: e.ThreadsPerWarp,
			WarpsPerCTA:    e.WarpsPerCTA,
			Order:          e.Order,
		}
	case *layout.SharedEncoding:
		return &snapEncoding{
			Kind:     "shared",
			Vec:      e.Vec,
			PerPhase: e.PerPhase,
			MaxPhase: e.MaxPhase,
			Order:    e.Order,
		}
	case *layout.SliceEncoding:
		return &snapEncoding{
			Kind:   "slice",
			Dim:    e.Dim,
			Parent: encodeEncoding(e.Parent),
		}
	}
	return nil
}

func decodeEncoding(se *snapEncoding) (layout.Encoding, error) {
	if se == nil {
		return nil, nil
	}
	switch se.Kind {
	case "blocked":
		return &layout.BlockedEncoding{
			SizePerThread:  se.SizePerThread,
			ThreadsPerWarp: se.ThreadsPerWarp,
			WarpsPerCTA:    se.WarpsPerCTA,
			Order:          se.Order,
		}, nil
	case "shared":
		return &layout.SharedEncoding{
			Vec:      se.Vec,
			PerPhase: se.PerPhase,
			MaxPhase: se.MaxPhase,
			Order:    se.Order,
		}, nil
	case "slice":
		parent, err := decodeEncoding(se.Parent)
		if err != nil {
			return nil, err
		}
		return &layout.SliceEncoding{Dim: se.Dim, Parent: parent}, nil
	}
	return nil, fmt.Errorf("%w: unknown encoding kind %q", ErrSnapshotRef, se.Kind)
}
