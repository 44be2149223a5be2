package channel

import (
	"errors"
	"testing"

	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
)

func testShape() Shape {
	return Shape{
		PrimaryMnemonic: "DEPTH",
		PrimaryUnit:     "m",
		Direction:       rangeidx.Increasing,
		Mnemonics:       []string{"GR", "ROP"},
		Units:           []string{"gAPI", "m/h"},
		NullValues:      []string{"-999.25", "-999.25"},
	}
}

func TestNewReaderArityMismatch(t *testing.T) {
	shape := testShape()
	_, err := NewReader(shape, []Record{{Index: 1, Columns: []Value{DataValue("1")}}})
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestReaderNextExhaustion(t *testing.T) {
	shape := testShape()
	r, err := NewReader(shape, []Record{
		{Index: 100, Columns: []Value{DataValue("10"), DataValue("20")}},
	})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, ErrNoMoreRecords) {
		t.Fatalf("expected ErrNoMoreRecords, got %v", err)
	}
}

func TestReaderChannelIndexRange(t *testing.T) {
	shape := testShape()
	r, err := NewReader(shape, []Record{
		{Index: 100, Columns: []Value{DataValue("10"), NullValue("-999.25")}},
		{Index: 200, Columns: []Value{NullValue("-999.25"), DataValue("99")}},
		{Index: 300, Columns: []Value{DataValue("11"), DataValue("98")}},
	})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	grRange, ok := r.ChannelIndexRange("GR")
	if !ok {
		t.Fatal("expected GR to be present")
	}
	if grRange.Start != 100 || grRange.End != 300 {
		t.Fatalf("GR range = [%v,%v], want [100,300]", grRange.Start, grRange.End)
	}

	ropRange, ok := r.ChannelIndexRange("ROP")
	if !ok {
		t.Fatal("expected ROP to be present")
	}
	if ropRange.Start != 200 || ropRange.End != 300 {
		t.Fatalf("ROP range = [%v,%v], want [200,300]", ropRange.Start, ropRange.End)
	}

	if _, ok := r.ChannelIndexRange("MISSING"); ok {
		t.Fatal("expected MISSING channel to be absent")
	}
}

func TestReaderSlice(t *testing.T) {
	shape := testShape()
	r, err := NewReader(shape, []Record{
		{Index: 100, Columns: []Value{DataValue("10"), DataValue("20")}},
	})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	sliced, err := r.Slice([]string{"ROP"})
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if len(sliced.Shape().Mnemonics) != 1 || sliced.Shape().Mnemonics[0] != "ROP" {
		t.Fatalf("expected sliced shape to carry only ROP, got %v", sliced.Shape().Mnemonics)
	}
	rec, err := sliced.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(rec.Columns) != 1 || rec.Columns[0].Text != "20" {
		t.Fatalf("unexpected sliced record %+v", rec)
	}
}

func TestReaderReversed(t *testing.T) {
	shape := testShape()
	r, err := NewReader(shape, []Record{
		{Index: 100, Columns: []Value{DataValue("10"), DataValue("20")}},
		{Index: 200, Columns: []Value{DataValue("11"), DataValue("21")}},
	})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	rev := r.Reversed()
	if rev.Direction() != rangeidx.Decreasing {
		t.Fatal("expected reversed direction")
	}
	first, err := rev.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first.Index != 200 {
		t.Fatalf("expected first reversed record to be index 200, got %v", first.Index)
	}
}

func TestEncodeDecodeRecordsRoundTrip(t *testing.T) {
	nulls := []string{"-999.25", "-999.25"}
	records := []Record{
		{Index: 100, Columns: []Value{DataValue("10"), NullValue("-999.25")}},
		{Index: 200, Columns: []Value{NullValue("-999.25"), DataValue("21")}},
	}
	data, err := EncodeRecords(records, nulls)
	if err != nil {
		t.Fatalf("EncodeRecords: %v", err)
	}
	decoded, err := DecodeRecords(data, nulls, "chunk-1")
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0].Columns[1].Null != true {
		t.Fatal("expected second column of first row to decode as null")
	}
	if decoded[1].Columns[1].Text != "21" || decoded[1].Columns[1].Null {
		t.Fatalf("expected second row's ROP column to be 21, got %+v", decoded[1].Columns[1])
	}
	for _, rec := range decoded {
		if rec.ChunkID != "chunk-1" {
			t.Fatalf("expected decoded records to carry chunk id, got %q", rec.ChunkID)
		}
	}
}
