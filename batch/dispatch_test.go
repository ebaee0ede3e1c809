package batch

import (
	"errors"
	"testing"
)

func TestPlan_RunningOffsets(t *testing.T) {
	list := List{sequence(1, 4, 6), sequence(2, 6, 9), sequence(1, 8, 12)}
	calls := Plan(list)
	want := []DrawCall{
		{Atlas: 1, IndexCount: 6, FirstIndex: 0, BaseVertex: 0},
		{Atlas: 2, IndexCount: 9, FirstIndex: 6, BaseVertex: 4},
		{Atlas: 1, IndexCount: 12, FirstIndex: 15, BaseVertex: 10},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(calls))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: expected %+v, got %+v", i, want[i], calls[i])
		}
	}
}

func TestPlan_OffsetsMatchFlattenedBuffer(t *testing.T) {
	list := List{quads(1, 2), quads(2, 1), quads(3, 5)}
	buf := NewGeometryBuffer(DefaultLimits())
	accepted, err := Flatten(buf, list, White)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	// Every index resolved through its draw must land on that sequence's
	// own vertices.
	verts := buf.Vertices()
	idx := buf.Indices()
	for i, c := range Plan(accepted) {
		s := accepted[i]
		for k := range c.IndexCount {
			local := idx[c.FirstIndex+k]
			v := verts[int(c.BaseVertex)+int(local)]
			if v.Pos[0] != s.XY[local][0] || v.Pos[1] != s.XY[local][1] {
				t.Errorf("draw %d index %d resolves to %v, expected %v", i, k, v.Pos, s.XY[local])
			}
		}
	}
}

// Two sequences: A with 4 vertices / 6 indices on atlas T1, B with 6 / 9 on
// T2.
func TestFrame_TwoSequences(t *testing.T) {
	const t1, t2 AtlasID = 1, 2
	l := NewStagingLayout(DefaultLimits())
	buf := NewGeometryBuffer(DefaultLimits())
	rec := newRecorder(l)

	accepted, err := Flatten(buf, List{sequence(t1, 4, 6), sequence(t2, 6, 9)}, Yellow)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if buf.VertexCount() != 10 || buf.IndexCount() != 15 {
		t.Fatalf("expected counts 10/15, got %d/%d", buf.VertexCount(), buf.IndexCount())
	}
	if err := StageBuffer(rec, l, buf); err != nil {
		t.Fatalf("StageBuffer: %v", err)
	}
	if err := Upload(rec, l, buf); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	u := IdentityUniforms()
	if err := Dispatch(rec, accepted, &u); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	want := []string{
		"map",
		"unmap [{0 360} {144000 60}]",
		"begin copy",
		"copy vertices 0->0 size 360",
		"copy indices 144000->0 size 60",
		"end",
		"pipeline",
		"vertex buffer 0",
		"index buffer u32",
		"uniforms 0",
		"atlas 1 at 0",
		"draw 6 1 0 0 0",
		"atlas 2 at 0",
		"draw 9 1 6 4 0",
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("expected calls\n%v\ngot\n%v", want, rec.calls)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], rec.calls[i])
		}
	}

	wantDraws := []recordedDraw{
		{IndexCount: 6, FirstIndex: 0, BaseVertex: 0, Atlas: t1},
		{IndexCount: 9, FirstIndex: 6, BaseVertex: 4, Atlas: t2},
	}
	for i := range wantDraws {
		if rec.draws[i] != wantDraws[i] {
			t.Errorf("draw %d: expected %+v, got %+v", i, wantDraws[i], rec.draws[i])
		}
	}
}

func TestDispatch_EmptyList(t *testing.T) {
	rec := newRecorder(NewStagingLayout(DefaultLimits()))
	u := IdentityUniforms()
	if err := Dispatch(rec, nil, &u); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(rec.draws) != 0 {
		t.Errorf("expected no draws, got %d", len(rec.draws))
	}
	if len(rec.calls) != 4 {
		t.Errorf("expected only the 4 bind calls, got %v", rec.calls)
	}
}

func TestDispatch_StopsOnError(t *testing.T) {
	rec := newRecorder(NewStagingLayout(DefaultLimits()))
	rec.failOn = "atlas 2 at 0"
	u := IdentityUniforms()
	err := Dispatch(rec, List{sequence(1, 4, 6), sequence(2, 4, 6), sequence(3, 4, 6)}, &u)
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if len(rec.draws) != 1 {
		t.Errorf("expected 1 draw before failure, got %d", len(rec.draws))
	}
}
