package merger

import (
	"testing"

	"github.com/nilsbenson/witsml-server/internal/channel"
	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
)

func fullShape() channel.Shape {
	return channel.Shape{
		PrimaryMnemonic: "DEPTH",
		Direction:       rangeidx.Increasing,
		Mnemonics:       []string{"GR", "ROP"},
		Units:           []string{"gAPI", "m/h"},
		NullValues:      []string{"-999.25", "-999.25"},
	}
}

func ropOnlyShape() channel.Shape {
	return channel.Shape{
		PrimaryMnemonic: "DEPTH",
		Direction:       rangeidx.Increasing,
		Mnemonics:       []string{"ROP"},
		Units:           []string{"m/h"},
		NullValues:      []string{"-999.25"},
	}
}

func mustReader(t *testing.T, shape channel.Shape, records []channel.Record) *channel.Reader {
	t.Helper()
	r, err := channel.NewReader(shape, records)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return r
}

func col(values ...string) []channel.Value {
	out := make([]channel.Value, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = channel.NullValue("-999.25")
		} else {
			out[i] = channel.DataValue(v)
		}
	}
	return out
}

func TestMergeSpecScenario(t *testing.T) {
	existing := mustReader(t, fullShape(), []channel.Record{
		{Index: 100, Columns: col("10", "20"), ChunkID: "chunk-A"},
		{Index: 200, Columns: col("10", "20"), ChunkID: "chunk-A"},
		{Index: 300, Columns: col("10", "20"), ChunkID: "chunk-A"},
	})
	incoming := mustReader(t, ropOnlyShape(), []channel.Record{
		{Index: 200, Columns: col("99")},
		{Index: 250, Columns: col("99")},
		{Index: 300, Columns: col("99")},
	})

	merged, err := Merge(existing, incoming, rangeidx.New(200.0, 300.0, rangeidx.Increasing))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	var got []channel.Record
	for {
		rec, err := merged.Next()
		if err == channel.ErrNoMoreRecords {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, rec)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 merged rows, got %d: %+v", len(got), got)
	}

	want := []struct {
		idx      float64
		gr, rop  string
		grNull   bool
	}{
		{100, "10", "20", false},
		{200, "10", "99", false},
		{250, "", "99", true},
		{300, "10", "99", false},
	}
	for i, w := range want {
		rec := got[i]
		if rec.Index != w.idx {
			t.Fatalf("row %d: index = %v, want %v", i, rec.Index, w.idx)
		}
		if rec.Columns[0].Null != w.grNull {
			t.Fatalf("row %d: GR null = %v, want %v", i, rec.Columns[0].Null, w.grNull)
		}
		if !rec.Columns[0].Null && rec.Columns[0].Text != w.gr {
			t.Fatalf("row %d: GR = %q, want %q", i, rec.Columns[0].Text, w.gr)
		}
		if rec.Columns[1].Text != w.rop {
			t.Fatalf("row %d: ROP = %q, want %q", i, rec.Columns[1].Text, w.rop)
		}
	}
}

func TestMergeEmptyIncomingIsNoOp(t *testing.T) {
	existing := mustReader(t, fullShape(), []channel.Record{
		{Index: 100, Columns: col("10", "20"), ChunkID: "chunk-A"},
		{Index: 200, Columns: col("11", "21"), ChunkID: "chunk-A"},
	})
	incoming := mustReader(t, fullShape(), nil)

	merged, err := Merge(existing, incoming, rangeidx.New(0.0, 1000.0, rangeidx.Increasing))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Len() != 2 {
		t.Fatalf("expected no-op merge to preserve 2 rows, got %d", merged.Len())
	}
}

func TestMergeClearingDropsAllNullRow(t *testing.T) {
	existing := mustReader(t, ropOnlyShape(), []channel.Record{
		{Index: 200, Columns: col("20"), ChunkID: "chunk-A"},
	})
	incoming := mustReader(t, ropOnlyShape(), []channel.Record{
		{Index: 100, Columns: col("1")},
		{Index: 300, Columns: col("3")},
	})

	merged, err := Merge(existing, incoming, rangeidx.New(100.0, 300.0, rangeidx.Increasing))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	var indices []float64
	for {
		rec, err := merged.Next()
		if err == channel.ErrNoMoreRecords {
			break
		}
		indices = append(indices, rec.Index)
	}
	for _, idx := range indices {
		if idx == 200 {
			t.Fatalf("expected row at 200 to be dropped once cleared to all-null, got indices %v", indices)
		}
	}
}

func TestMergeRejectsHeterogeneousUnits(t *testing.T) {
	existing := mustReader(t, ropOnlyShape(), []channel.Record{{Index: 100, Columns: col("1")}})
	bad := channel.Shape{
		PrimaryMnemonic: "DEPTH",
		Direction:       rangeidx.Increasing,
		Mnemonics:       []string{"ROP"},
		Units:           []string{"ft/h"},
		NullValues:      []string{"-999.25"},
	}
	incoming := mustReader(t, bad, []channel.Record{{Index: 200, Columns: col("2")}})

	if _, err := Merge(existing, incoming, rangeidx.New(200.0, 200.0, rangeidx.Increasing)); err == nil {
		t.Fatal("expected heterogeneous-unit merge to be rejected")
	}
}
