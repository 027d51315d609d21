package grammar

import (
	"fmt"
	"strings"
)

// Generation selects one of the two definition grammars. A run validates
// every file against the same generation; it is never inferred per file.
type Generation string

const (
	// GenerationFlat is the original grammar: time_period_events and pref
	// are self-contained leaves carrying their own buckets and value_map.
	GenerationFlat Generation = "v1"

	// GenerationCompositional is the current grammar: probe, bucket,
	// value_map and percentage are separate nodes that nest freely.
	GenerationCompositional Generation = "v2"

	// DefaultGeneration is used when none is configured.
	DefaultGeneration = GenerationCompositional
)

// Generations lists the supported generations, oldest first.
func Generations() []Generation {
	return []Generation{GenerationFlat, GenerationCompositional}
}

// ParseGeneration accepts "v1"/"flat" and "v2"/"compositional". An empty
// string selects DefaultGeneration.
func ParseGeneration(s string) (Generation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultGeneration, nil
	case "v1", "flat":
		return GenerationFlat, nil
	case "v2", "compositional":
		return GenerationCompositional, nil
	default:
		return "", fmt.Errorf("unknown schema generation %q (valid: v1, flat, v2, compositional)", s)
	}
}

// Name returns the descriptive name of the generation.
func (g Generation) Name() string {
	switch g {
	case GenerationFlat:
		return "flat"
	case GenerationCompositional:
		return "compositional"
	default:
		return "unknown"
	}
}

// String returns the generation identifier.
func (g Generation) String() string {
	return string(g)
}
