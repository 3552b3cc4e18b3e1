// Package framelog records acquired frame sets to a flat binary file and
// reads them back.
//
// File layout: an 8-byte magic, then records of
// [8-byte LE unix nanos][4-byte LE payload length][CBOR payload].
package framelog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const Magic = "PBFRAME1"

const headerSize = 12

// maxRecordSize bounds a single payload. Six uncompressed 1920x1080 RGB
// frames fit well inside it.
const maxRecordSize = 256 << 20

// Writer is not safe for concurrent use.
type Writer struct {
	f        *os.File
	w        *bufio.Writer
	session  string
	compress bool
	seq      uint64
	path     string
}

// Create starts a new log named <timestamp>_<prefix>.bin inside dir.
func Create(dir string, prefix string, compress bool) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.bin", timestamp, prefix))
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriterSize(f, 1024*1024)
	if _, err := w.WriteString(Magic); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{
		f:        f,
		w:        w,
		session:  uuid.NewString(),
		compress: compress,
		path:     filename,
	}, nil
}

func (l *Writer) Path() string    { return l.path }
func (l *Writer) Session() string { return l.session }

// Append writes one record. Session and Seq are assigned by the writer.
func (l *Writer) Append(rec Record) error {
	if l.w == nil {
		return fmt.Errorf("frame log writer is closed")
	}
	rec.Session = l.session
	rec.Seq = l.seq
	payload, err := encodeRecord(rec, l.compress)
	if err != nil {
		return err
	}
	if len(payload) > maxRecordSize {
		return fmt.Errorf("record size %d exceeds limit %d", len(payload), maxRecordSize)
	}
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(ts.UnixNano()))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(payload)))
	if _, err := l.w.Write(header[:]); err != nil {
		return err
	}
	if _, err := l.w.Write(payload); err != nil {
		return err
	}
	l.seq++
	return l.w.Flush()
}

func (l *Writer) Close() error {
	if l.w == nil {
		return nil
	}
	if err := l.w.Flush(); err != nil {
		_ = l.f.Close()
		l.w = nil
		return err
	}
	err := l.f.Close()
	l.w = nil
	return err
}

type Reader struct {
	f *os.File
	r *bufio.Reader
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &Reader{f: f, r: bufio.NewReaderSize(f, 1024*1024)}
	if err := r.readMagic(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readMagic() error {
	header := make([]byte, len(Magic))
	if _, err := io.ReadFull(r.r, header); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}
	if string(header) != Magic {
		return fmt.Errorf("unexpected frame log magic %q", string(header))
	}
	return nil
}

// Next returns the following record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	payload, ts, err := r.NextRaw()
	if err != nil {
		return Record{}, err
	}
	rec, err := DecodeRecord(payload)
	if err != nil {
		return Record{}, err
	}
	rec.Timestamp = ts
	return rec, nil
}

// NextRaw returns the undecoded CBOR payload of the following record.
func (r *Reader) NextRaw() ([]byte, time.Time, error) {
	var meta [headerSize]byte
	if _, err := io.ReadFull(r.r, meta[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, time.Time{}, io.EOF
		}
		return nil, time.Time{}, err
	}
	ts := time.Unix(0, int64(binary.LittleEndian.Uint64(meta[:8])))
	size := binary.LittleEndian.Uint32(meta[8:12])
	if size > maxRecordSize {
		return nil, time.Time{}, fmt.Errorf("record size %d exceeds limit %d", size, maxRecordSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		// a record cut short by a crash ends the log
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, time.Time{}, io.EOF
		}
		return nil, time.Time{}, fmt.Errorf("read payload: %w", err)
	}
	return payload, ts, nil
}

// Rewind positions the reader at the first record.
func (r *Reader) Rewind() error {
	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r.r.Reset(r.f)
	return r.readMagic()
}

func (r *Reader) Close() error {
	return r.f.Close()
}
