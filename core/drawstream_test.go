package core

import "testing"

func TestDrawStreamWriter_FirstDrawEmitsEveryField(t *testing.T) {
	var w DrawStreamWriter
	w.Write(DrawCall{Shader: 1, Triangles: 6, IndexBuffer: NonIndexed})

	if len(w.tokens) != 1+len(drawFields) {
		t.Fatalf("first draw should emit a full field set: got %d tokens, want %d", len(w.tokens), 1+len(drawFields))
	}

	var full uint32
	for _, f := range drawFields {
		full |= f.bit
	}
	if w.tokens[0] != full {
		t.Errorf("first draw bitmask = %#x, want %#x (all fields)", w.tokens[0], full)
	}
}

func TestDrawStreamWriter_OnlyChangedFieldsOnSubsequentDraws(t *testing.T) {
	var w DrawStreamWriter
	w.Write(DrawCall{Shader: 1, VertexBuffer: 2, Triangles: 6})
	firstLen := len(w.tokens)

	w.Write(DrawCall{Shader: 1, VertexBuffer: 2, Triangles: 9})

	mask := w.tokens[firstLen]
	if mask != DrawBitTriangles {
		t.Errorf("second draw bitmask = %#x, want only DrawBitTriangles (%#x)", mask, DrawBitTriangles)
	}
	if len(w.tokens) != firstLen+2 {
		t.Errorf("second draw should emit mask + 1 value token, got %d new tokens", len(w.tokens)-firstLen)
	}
}

func TestDrawStreamRoundTrip(t *testing.T) {
	calls := []DrawCall{
		{Shader: 1, VertexBuffer: 4, IndexBuffer: NonIndexed, Triangles: 6, InstanceCount: 1},
		{Shader: 1, VertexBuffer: 4, IndexBuffer: NonIndexed, Triangles: 12, InstanceCount: 1},
		{Shader: 2, VertexBuffer: 5, IndexBuffer: 9, Triangles: 6, InstanceCount: 3},
	}

	var w DrawStreamWriter
	for _, c := range calls {
		w.Write(c)
	}

	r := NewDrawStreamReader(w.Tokens())
	for i, want := range calls {
		got, ok := r.Next()
		if !ok {
			t.Fatalf("draw %d: reader ran out of tokens", i)
		}
		if got != want {
			t.Errorf("draw %d = %+v, want %+v", i, got, want)
		}
	}
	if _, ok := r.Next(); ok {
		t.Error("reader should report end of stream after all draws consumed")
	}
}

type recordingExecutor struct {
	events []string
	draws  []DrawCall
}

func (e *recordingExecutor) BindShader(s uint32)            { e.events = append(e.events, "shader") }
func (e *recordingExecutor) BindDynamicBuffer(b, o uint32)  { e.events = append(e.events, "dynamic") }
func (e *recordingExecutor) BindBindGroup(s int, g uint32)  { e.events = append(e.events, "group") }
func (e *recordingExecutor) BindIndexBuffer(b uint32)       { e.events = append(e.events, "index") }
func (e *recordingExecutor) BindVertexBuffer(b uint32)      { e.events = append(e.events, "vertex") }
func (e *recordingExecutor) Draw(dc DrawCall)               { e.draws = append(e.draws, dc) }

func TestExecuteDrawStream_RetainsStateAcrossDraws(t *testing.T) {
	var w DrawStreamWriter
	w.Write(DrawCall{Shader: 1, VertexBuffer: 4, IndexBuffer: NonIndexed, Triangles: 6})
	w.Write(DrawCall{Shader: 1, VertexBuffer: 4, IndexBuffer: NonIndexed, Triangles: 9})

	var exec recordingExecutor
	draws := ExecuteDrawStream(w.Tokens(), &exec)

	if draws != 2 {
		t.Fatalf("draws = %d, want 2", draws)
	}
	if len(exec.draws) != 2 {
		t.Fatalf("executor saw %d draws, want 2", len(exec.draws))
	}
	// The second draw only re-emitted Triangles, so no bind hook fires for
	// it, but the resolved call still carries the retained state.
	if exec.draws[1].Shader != 1 || exec.draws[1].VertexBuffer != 4 {
		t.Errorf("second draw lost retained state: %+v", exec.draws[1])
	}
	if exec.draws[1].Triangles != 9 {
		t.Errorf("second draw Triangles = %d, want 9", exec.draws[1].Triangles)
	}

	binds := 0
	for _, ev := range exec.events {
		if ev != "shader" && ev != "vertex" && ev != "dynamic" && ev != "group" && ev != "index" {
			t.Fatalf("unexpected event %q", ev)
		}
		binds++
	}
	// First draw emits every field; NonIndexed suppresses the index bind.
	// Second draw emits no binds at all.
	wantBinds := 1 + 1 + 3 + 1 // shader, vertex, three groups, dynamic
	if binds != wantBinds {
		t.Errorf("bind events = %d (%v), want %d", binds, exec.events, wantBinds)
	}
}

func TestExecuteDrawStream_SkipsIndexBindForNonIndexed(t *testing.T) {
	var w DrawStreamWriter
	w.Write(DrawCall{IndexBuffer: NonIndexed, Triangles: 3})

	var exec recordingExecutor
	ExecuteDrawStream(w.Tokens(), &exec)

	for _, ev := range exec.events {
		if ev == "index" {
			t.Error("index bind should be suppressed for a non-indexed draw")
		}
	}
	if len(exec.draws) != 1 || exec.draws[0].IndexBuffer != NonIndexed {
		t.Errorf("draws = %+v, want one non-indexed draw", exec.draws)
	}
}
