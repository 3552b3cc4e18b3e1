package framelog

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"photoboard-go/internal/compression"
	"photoboard-go/internal/types"
)

// RFC 8746 typed-array tags plus the compressed-envelope tag.
const (
	tagMultiDimArray = 40
	tagUint8         = 64
	tagUint16LE      = 69
	tagCompressed    = 56500
)

// StreamFrame is one stream's buffer inside a record.
type StreamFrame struct {
	Intrinsics types.Intrinsics
	Format     types.Format
	Data       []byte
}

// Record is one acquired frame set.
type Record struct {
	Timestamp  time.Time
	Session    string
	Seq        uint64
	DepthScale float64
	Streams    map[types.Stream]StreamFrame
}

type wireRecord struct {
	Type       string                     `cbor:"type"`
	Session    string                     `cbor:"session"`
	Seq        uint64                     `cbor:"seq"`
	DepthScale float64                    `cbor:"depth_scale"`
	Streams    map[string]cbor.RawMessage `cbor:"streams"`
}

const recordType = "frames"

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

func encodeRecord(rec Record, compress bool) ([]byte, error) {
	wire := wireRecord{
		Type:       recordType,
		Session:    rec.Session,
		Seq:        rec.Seq,
		DepthScale: rec.DepthScale,
		Streams:    make(map[string]cbor.RawMessage, len(rec.Streams)),
	}
	for stream, frame := range rec.Streams {
		tag, err := encodeMultiDimArray(frame, compress)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", stream, err)
		}
		raw, err := encMode.Marshal(tag)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", stream, err)
		}
		wire.Streams[stream.String()] = raw
	}
	return encMode.Marshal(wire)
}

// DecodeRecord parses one record payload as returned by Reader.NextRaw.
// The timestamp lives in the record header and is left zero.
func DecodeRecord(payload []byte) (Record, error) {
	var wire wireRecord
	if err := cbor.Unmarshal(payload, &wire); err != nil {
		return Record{}, fmt.Errorf("CBOR decode: %w", err)
	}
	if wire.Type != recordType {
		return Record{}, fmt.Errorf("unexpected record type %q", wire.Type)
	}
	rec := Record{
		Session:    wire.Session,
		Seq:        wire.Seq,
		DepthScale: wire.DepthScale,
		Streams:    make(map[types.Stream]StreamFrame, len(wire.Streams)),
	}
	for name, raw := range wire.Streams {
		stream, err := types.ParseStream(name)
		if err != nil {
			return Record{}, err
		}
		var tag cbor.Tag
		if err := cbor.Unmarshal(raw, &tag); err != nil {
			return Record{}, fmt.Errorf("stream %s: %w", name, err)
		}
		frame, err := decodeMultiDimArray(tag)
		if err != nil {
			return Record{}, fmt.Errorf("stream %s: %w", name, err)
		}
		rec.Streams[stream] = frame
	}
	return rec, nil
}

func encodeMultiDimArray(frame StreamFrame, compress bool) (cbor.Tag, error) {
	var (
		dims     []int
		elemTag  uint64
		elemSize int
	)
	h, w := frame.Intrinsics.Height, frame.Intrinsics.Width
	switch frame.Format {
	case types.FormatZ16:
		dims, elemTag, elemSize = []int{h, w}, tagUint16LE, 2
	case types.FormatY8:
		dims, elemTag, elemSize = []int{h, w}, tagUint8, 1
	case types.FormatRGB8:
		dims, elemTag, elemSize = []int{h, w, 3}, tagUint8, 1
	default:
		return cbor.Tag{}, fmt.Errorf("unsupported format %s", frame.Format)
	}
	want := h * w * frame.Format.BytesPerPixel()
	if len(frame.Data) < want {
		return cbor.Tag{}, fmt.Errorf("buffer holds %d bytes, want %d", len(frame.Data), want)
	}

	var content any = frame.Data[:want]
	if compress {
		packed, err := compression.Compress(frame.Data[:want], compression.Zstd, elemSize)
		if err != nil {
			return cbor.Tag{}, err
		}
		content = cbor.Tag{Number: tagCompressed, Content: []any{compression.Zstd, elemSize, packed}}
	}
	return cbor.Tag{
		Number: tagMultiDimArray,
		Content: []any{
			dims,
			cbor.Tag{Number: elemTag, Content: content},
		},
	}, nil
}

func decodeMultiDimArray(tag cbor.Tag) (StreamFrame, error) {
	if tag.Number != tagMultiDimArray {
		return StreamFrame{}, fmt.Errorf("expected multidim tag 40")
	}

	items, ok := tag.Content.([]any)
	if !ok || len(items) != 2 {
		return StreamFrame{}, fmt.Errorf("invalid multidim array content")
	}

	dimsRaw, ok := items[0].([]any)
	if !ok || (len(dimsRaw) != 2 && len(dimsRaw) != 3) {
		return StreamFrame{}, fmt.Errorf("invalid multidim dimensions")
	}
	dims := make([]int, len(dimsRaw))
	for i, d := range dimsRaw {
		n, err := toInt(d)
		if err != nil {
			return StreamFrame{}, err
		}
		dims[i] = n
	}

	elem, ok := items[1].(cbor.Tag)
	if !ok {
		return StreamFrame{}, fmt.Errorf("expected typed array tag")
	}
	data, err := extractBytes(elem)
	if err != nil {
		return StreamFrame{}, err
	}

	frame := StreamFrame{
		Intrinsics: types.Intrinsics{Height: dims[0], Width: dims[1]},
		Data:       data,
	}
	switch {
	case elem.Number == tagUint16LE && len(dims) == 2:
		frame.Format = types.FormatZ16
	case elem.Number == tagUint8 && len(dims) == 2:
		frame.Format = types.FormatY8
	case elem.Number == tagUint8 && len(dims) == 3 && dims[2] == 3:
		frame.Format = types.FormatRGB8
	default:
		return StreamFrame{}, fmt.Errorf("unsupported typed array tag %d with %d dims", elem.Number, len(dims))
	}
	if want := dims[0] * dims[1] * frame.Format.BytesPerPixel(); len(data) != want {
		return StreamFrame{}, errors.New("dimension mismatch")
	}
	return frame, nil
}

func extractBytes(tag cbor.Tag) ([]byte, error) {
	switch v := tag.Content.(type) {
	case []byte:
		return v, nil
	case cbor.Tag:
		if v.Number != tagCompressed {
			return nil, fmt.Errorf("unsupported nested tag %d", v.Number)
		}
		return decompress(v)
	default:
		return nil, fmt.Errorf("unsupported typed array content %T", v)
	}
}

func decompress(tag cbor.Tag) ([]byte, error) {
	items, ok := tag.Content.([]any)
	if !ok || len(items) != 3 {
		return nil, errors.New("invalid compressed tag content")
	}
	algorithm, ok := items[0].(string)
	if !ok {
		return nil, errors.New("invalid compression algorithm")
	}
	elemSize, err := toInt(items[1])
	if err != nil {
		return nil, err
	}
	encoded, ok := items[2].([]byte)
	if !ok {
		return nil, errors.New("invalid compressed payload")
	}
	return compression.Decompress(encoded, algorithm, elemSize)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unsupported int type %T", v)
	}
}
