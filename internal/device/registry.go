package device

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Options carries source-specific settings from the command line.
type Options struct {
	// Path is the frame log read by the replay source.
	Path string
	// Loop restarts a replay at the first record instead of failing at EOF.
	Loop bool
	// FPS paces synthetic and replayed frames. Zero disables pacing.
	FPS float64
}

type Opener func(opts Options) (Context, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Opener{}
)

// Register makes a source available to Open. It panics on duplicates.
func Register(name string, open Opener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("device: source registered twice: " + name)
	}
	registry[name] = open
}

func Open(name string, opts Options) (Context, error) {
	registryMu.Lock()
	open, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, errors.Errorf("unknown frame source %q (available: %v)", name, Sources())
	}
	return open(opts)
}

func Sources() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
