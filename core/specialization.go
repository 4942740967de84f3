package core

import "fmt"

// SpecDataType enumerates the scalar/vector specialization-constant types,
// grounded on the original's plDataType enum
// (extensions/pl_graphics_ext.c's size table).
type SpecDataType int

const (
	SpecBool SpecDataType = iota
	SpecBool2
	SpecBool3
	SpecBool4
	SpecFloat
	SpecFloat2
	SpecFloat3
	SpecFloat4
	SpecInt
	SpecInt2
	SpecInt3
	SpecInt4
	SpecUint
	SpecUint2
	SpecUint3
	SpecUint4
)

// specSize returns the natural (unaligned) byte size of t, matching the
// original's szPL_DataTypeToSize table (bool stored as 4-byte int, like
// GLSL/SPIR-V specialization constants).
func specSize(t SpecDataType) uint32 {
	switch t {
	case SpecBool, SpecFloat, SpecInt, SpecUint:
		return 4
	case SpecBool2, SpecFloat2, SpecInt2, SpecUint2:
		return 8
	case SpecBool3, SpecFloat3, SpecInt3, SpecUint3:
		return 12
	case SpecBool4, SpecFloat4, SpecInt4, SpecUint4:
		return 16
	default:
		return 0
	}
}

// specAlign returns the std140-style alignment for t: scalars align to
// their own size, 3- and 4-vectors align to 16 bytes (std140's vec3/vec4
// rule), 2-vectors align to 8 bytes.
func specAlign(t SpecDataType) uint32 {
	switch t {
	case SpecBool, SpecFloat, SpecInt, SpecUint:
		return 4
	case SpecBool2, SpecFloat2, SpecInt2, SpecUint2:
		return 8
	case SpecBool3, SpecFloat3, SpecInt3, SpecUint3,
		SpecBool4, SpecFloat4, SpecInt4, SpecUint4:
		return 16
	default:
		return 4
	}
}

// SpecConstant is one named specialization constant in declaration order.
type SpecConstant struct {
	Name string
	Type SpecDataType
}

// SpecConstantLayout is a compiled, std140-style packed layout: the byte
// offset of each constant (in declaration order) and the total buffer size
// a backend must allocate to hold them all.
type SpecConstantLayout struct {
	Offsets []uint32
	Size    uint32
}

// CompileSpecConstantLayout packs constants in declaration order using
// std140-style alignment rules (each field aligned to its own alignment
// requirement, trailing padding to the layout's own largest alignment).
func CompileSpecConstantLayout(constants []SpecConstant) SpecConstantLayout {
	layout := SpecConstantLayout{Offsets: make([]uint32, len(constants))}

	var cursor uint32
	var maxAlign uint32 = 4
	for i, c := range constants {
		align := specAlign(c.Type)
		if align > maxAlign {
			maxAlign = align
		}
		cursor = alignUp32(cursor, align)
		layout.Offsets[i] = cursor
		cursor += specSize(c.Type)
	}

	layout.Size = alignUp32(cursor, maxAlign)
	return layout
}

func alignUp32(v, align uint32) uint32 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

// PackSpecConstants writes values into a host buffer per layout, in
// declaration order. It returns an error if values and layout.Offsets
// disagree in length, or if a value's byte length doesn't match its
// declared type's size.
func PackSpecConstants(constants []SpecConstant, layout SpecConstantLayout, values [][]byte) ([]byte, error) {
	if len(values) != len(constants) || len(values) != len(layout.Offsets) {
		return nil, fmt.Errorf("core: pack_spec_constants: constants/layout/values length mismatch (%d/%d/%d)", len(constants), len(layout.Offsets), len(values))
	}

	buf := make([]byte, layout.Size)
	for i, c := range constants {
		want := specSize(c.Type)
		if uint32(len(values[i])) != want {
			return nil, fmt.Errorf("core: pack_spec_constants: constant %q expects %d bytes, got %d", c.Name, want, len(values[i]))
		}
		copy(buf[layout.Offsets[i]:], values[i])
	}
	return buf, nil
}
