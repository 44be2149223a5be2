package channel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
)

// IndexDescriptor identifies one index axis of a log.
type IndexDescriptor struct {
	Mnemonic       string
	Unit           string
	Direction      rangeidx.Direction
	IsTimeIndex    bool
	TimeZoneOffset string // e.g. "+02:00"; empty if not a time index or unspecified
}

// Chunk is the storage atom: a fixed-extent, immutable-until-merged window
// of records for one log's primary index, plus the shared per-write
// attributes (mnemonic/unit/null-value lists) that apply to every record it
// holds.
//
// Data is kept as an opaque serialized row array; Reader is the only
// component allowed to parse it (DecodeRecords/EncodeRecords below are the
// seam other packages go through, never ad hoc json.Unmarshal).
type Chunk struct {
	UID  string // opaque id, assigned once at first insert; empty until then
	URI  string // parent log URI, immutable

	Indices []IndexDescriptor // first is primary

	Start, End float64 // primary-index bounds bracketing the stored records

	MnemonicList  []string
	UnitList      []string
	NullValueList []string

	Data        []byte // JSON-encoded row array
	RecordCount int
}

// PrimaryMnemonic returns the chunk's primary index mnemonic.
func (c Chunk) PrimaryMnemonic() string {
	if len(c.Indices) == 0 {
		return ""
	}
	return c.Indices[0].Mnemonic
}

// PrimaryDirection returns the chunk's primary index direction.
func (c Chunk) PrimaryDirection() rangeidx.Direction {
	if len(c.Indices) == 0 {
		return rangeidx.Increasing
	}
	return c.Indices[0].Direction
}

// Extent returns the chunk-aligned extent the chunk was created to cover.
// This is recomputed from Start rather than stored, since it is fixed at
// creation and derivable from any record inside it plus rangeSize.
func (c Chunk) Extent(rangeSize float64) rangeidx.Extent[float64] {
	return rangeidx.ComputeAlignedExtent(c.Start, rangeSize, c.PrimaryDirection())
}

// jsonRow is the wire shape of one record: [index, col1, col2, ...], where
// each column is either its string value or its null sentinel string.
type jsonRow struct {
	Index float64
	Cols  []string
}

func (r jsonRow) MarshalJSON() ([]byte, error) {
	arr := make([]any, 0, 1+len(r.Cols))
	arr = append(arr, r.Index)
	for _, c := range r.Cols {
		arr = append(arr, c)
	}
	return json.Marshal(arr)
}

func (r *jsonRow) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) == 0 {
		return fmt.Errorf("empty row")
	}
	if err := json.Unmarshal(arr[0], &r.Index); err != nil {
		return fmt.Errorf("row index: %w", err)
	}
	r.Cols = make([]string, len(arr)-1)
	for i, raw := range arr[1:] {
		if err := json.Unmarshal(raw, &r.Cols[i]); err != nil {
			return fmt.Errorf("row column %d: %w", i, err)
		}
	}
	return nil
}

// EncodeRecords serializes records into a chunk's Data payload, given the
// column null sentinels (parallel to each record's Columns).
func EncodeRecords(records []Record, nullValues []string) ([]byte, error) {
	rows := make([]jsonRow, len(records))
	for i, rec := range records {
		cols := make([]string, len(rec.Columns))
		for ci, v := range rec.Columns {
			if v.Null {
				sentinel := ""
				if ci < len(nullValues) {
					sentinel = nullValues[ci]
				}
				cols[ci] = sentinel
			} else {
				cols[ci] = v.Text
			}
		}
		rows[i] = jsonRow{Index: rec.Index, Cols: cols}
	}
	return json.Marshal(rows)
}

// DecodeRecords parses a chunk's Data payload into Records, marking a
// column null when its text matches the corresponding null sentinel.
func DecodeRecords(data []byte, nullValues []string, chunkUID string) ([]Record, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []jsonRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode chunk records: %w", err)
	}
	records := make([]Record, len(rows))
	for i, row := range rows {
		cols := make([]Value, len(row.Cols))
		for ci, text := range row.Cols {
			sentinel := ""
			if ci < len(nullValues) {
				sentinel = nullValues[ci]
			}
			if text == sentinel {
				cols[ci] = NullValue(sentinel)
			} else {
				cols[ci] = DataValue(text)
			}
		}
		records[i] = Record{Index: row.Index, Columns: cols, ChunkID: chunkUID}
	}
	return records, nil
}

// ReaderFromChunks decodes and concatenates a direction-ordered sequence of
// chunks into a single Reader spanning all of their records.
func ReaderFromChunks(chunks []Chunk, shape Shape) (*Reader, error) {
	var all []Record
	for _, c := range chunks {
		recs, err := DecodeRecords(c.Data, c.NullValueList, c.UID)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.UID, err)
		}
		all = append(all, recs...)
	}
	return NewReader(shape, all)
}

// ShapeFromChunk derives a Reader Shape from a chunk's own attribute lists.
func ShapeFromChunk(c Chunk) Shape {
	return Shape{
		PrimaryMnemonic: c.PrimaryMnemonic(),
		PrimaryUnit: func() string {
			if len(c.Indices) > 0 {
				return c.Indices[0].Unit
			}
			return ""
		}(),
		IsTimeIndex: len(c.Indices) > 0 && c.Indices[0].IsTimeIndex,
		Direction:   c.PrimaryDirection(),
		Mnemonics:   c.MnemonicList,
		Units:       c.UnitList,
		NullValues:  c.NullValueList,
	}
}

// JoinCSV and SplitCSV implement the comma-joined list encoding used for
// MnemonicList/UnitList/NullValueList.
func JoinCSV(values []string) string { return strings.Join(values, ",") }

func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
