package format

import (
	"fmt"
	"sort"
	"sync"

	"github.com/oriumgames/pile/unischem/format/internal/sponge"
	"github.com/oriumgames/pile/unischem/format/internal/universal"
	"github.com/oriumgames/pile/unischem/schematic"
)

// Codec converts between a schematic and one binary format. Both directions work on
// whole in-memory buffers; reading and writing files is up to the caller.
type Codec interface {
	// ID returns the format identifier (e.g., "sponge_v2").
	ID() string
	// Sniff reports whether data is in this format. It must not fail or panic.
	Sniff(data []byte) bool
	// Decode parses data into a schematic.
	Decode(data []byte) (*schematic.Schematic, error)
	// Encode serializes the schematic.
	Encode(s *schematic.Schematic) ([]byte, error)
}

var (
	codecsMu sync.RWMutex
	codecs   = map[string]Codec{
		sponge.FormatID:    sponge.Codec{},
		sponge.FormatIDV3:  sponge.CodecV3{},
		universal.FormatID: universal.Codec{},
	}
)

// Register adds or replaces the codec for c.ID().
func Register(c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()
	codecs[c.ID()] = c
}

// Lookup returns the codec registered for a format identifier.
func Lookup(formatID string) (Codec, bool) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	c, ok := codecs[formatID]
	return c, ok
}

func lookup(formatID string) (Codec, error) {
	c, ok := Lookup(formatID)
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", formatID)
	}
	return c, nil
}

// sortedCodecs returns the registered codecs ordered by identifier.
func sortedCodecs() []Codec {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	out := make([]Codec, 0, len(codecs))
	for _, c := range codecs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
