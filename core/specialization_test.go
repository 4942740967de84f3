package core

import "testing"

func TestCompileSpecConstantLayout_Std140Alignment(t *testing.T) {
	constants := []SpecConstant{
		{Name: "enableFog", Type: SpecBool},  // offset 0, size 4
		{Name: "tint", Type: SpecFloat3},     // must align to 16 -> offset 16
		{Name: "exposure", Type: SpecFloat},  // offset 28
	}

	layout := CompileSpecConstantLayout(constants)

	want := []uint32{0, 16, 28}
	for i, w := range want {
		if layout.Offsets[i] != w {
			t.Errorf("offset[%d] = %d, want %d (full layout: %+v)", i, layout.Offsets[i], w, layout)
		}
	}
	if layout.Size%16 != 0 {
		t.Errorf("layout size %d should be padded to the largest alignment (16)", layout.Size)
	}
}

func TestPackSpecConstants_RoundTrip(t *testing.T) {
	constants := []SpecConstant{
		{Name: "count", Type: SpecUint},
		{Name: "scale", Type: SpecFloat2},
	}
	layout := CompileSpecConstantLayout(constants)

	values := [][]byte{
		{1, 0, 0, 0},
		{0, 0, 128, 63, 0, 0, 0, 64}, // 1.0f, 2.0f little-endian
	}

	buf, err := PackSpecConstants(constants, layout, values)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != int(layout.Size) {
		t.Errorf("packed buffer len = %d, want layout size %d", len(buf), layout.Size)
	}

	got := buf[layout.Offsets[0] : layout.Offsets[0]+4]
	for i, b := range got {
		if b != values[0][i] {
			t.Errorf("count field mismatch at byte %d: got %d, want %d", i, b, values[0][i])
		}
	}
}

func TestPackSpecConstants_RejectsWrongSizeValue(t *testing.T) {
	constants := []SpecConstant{{Name: "x", Type: SpecFloat}}
	layout := CompileSpecConstantLayout(constants)

	_, err := PackSpecConstants(constants, layout, [][]byte{{1, 2, 3}})
	if err == nil {
		t.Fatal("expected an error packing a 3-byte value into a 4-byte float constant")
	}
}
