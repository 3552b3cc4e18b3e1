// Command photoboard-dump prints the records of a frame log and can export
// their frames as PNG snapshots.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"photoboard-go/internal/framelog"
	"photoboard-go/internal/logging"
	"photoboard-go/internal/output"
	"photoboard-go/internal/types"
)

func main() {
	app := &cli.App{
		Name:  "photoboard-dump",
		Usage: "inspect a recorded frame log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "frame log `FILE`"},
			&cli.IntFlag{Name: "limit", Value: 1, Usage: "number of records to dump, 0 for all"},
			&cli.BoolFlag{Name: "json", Usage: "print each record's CBOR payload as JSON"},
			&cli.StringFlag{Name: "png-dir", Usage: "write each dumped record's frames under `DIR`/<seq>/"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) (err error) {
	logger, err := logging.New("photoboard-dump", c.Bool("debug"))
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			logger.Errorw("dump failed", "error", err)
		}
		_ = logger.Sync()
	}()

	r, err := framelog.Open(c.String("path"))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, r.Close()) }()

	limit := c.Int("limit")
	streams := map[types.Stream]int{}
	count := 0
	for limit <= 0 || count < limit {
		payload, ts, err := r.NextRaw()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if c.Bool("json") {
			if err := printJSON(payload); err != nil {
				logger.Warnf("record %d: %v", count, err)
			}
		}
		rec, err := framelog.DecodeRecord(payload)
		if err != nil {
			logger.Warnf("record %d: decode: %v", count, err)
			count++
			continue
		}
		rec.Timestamp = ts
		describe(rec)
		for s := range rec.Streams {
			streams[s]++
		}
		if dir := c.String("png-dir"); dir != "" {
			exportPNG(logger, filepath.Join(dir, fmt.Sprint(rec.Seq)), rec)
		}
		count++
	}

	names := make([]string, 0, len(streams))
	for s, n := range streams {
		names = append(names, fmt.Sprintf("%s=%d", s, n))
	}
	sort.Strings(names)
	fmt.Printf("summary: records=%d %v\n", count, names)
	return nil
}

func describe(rec framelog.Record) {
	fmt.Printf("record %d session=%s timestamp=%s depth_scale=%g\n",
		rec.Seq, rec.Session, rec.Timestamp.Format(time.RFC3339Nano), rec.DepthScale)
	for _, s := range types.AllStreams {
		f, ok := rec.Streams[s]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %s %s %d bytes\n", s, f.Intrinsics, f.Format, len(f.Data))
	}
}

func exportPNG(logger *zap.SugaredLogger, dir string, rec framelog.Record) {
	captured := make([]output.Captured, 0, len(rec.Streams))
	for _, s := range types.AllStreams {
		if f, ok := rec.Streams[s]; ok {
			captured = append(captured, output.Captured{Stream: s, Intrinsics: f.Intrinsics, Data: f.Data})
		}
	}
	written, err := output.WriteSnapshot(dir, captured)
	for _, w := range written {
		logger.Infof("wrote %s", w.Path)
	}
	if err != nil {
		logger.Warnf("record %d: %v", rec.Seq, err)
	}
}

func printJSON(payload []byte) error {
	var decoded any
	if err := cbor.Unmarshal(payload, &decoded); err != nil {
		return errors.Wrap(err, "CBOR decode")
	}
	pretty, err := json.MarshalIndent(normalize(decoded), "", "  ")
	if err != nil {
		return errors.Wrap(err, "JSON encode")
	}
	fmt.Println(string(pretty))
	return nil
}

// normalize turns decoded CBOR into values encoding/json accepts. Byte
// strings are summarised by length.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(t))
	case cbor.Tag:
		return map[string]any{"tag": t.Number, "content": normalize(t.Content)}
	default:
		return t
	}
}
