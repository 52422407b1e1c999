// Package pokedex provides the static Pokémon catalog: canonical names
// and the generation buckets that partition the id space.
package pokedex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Errors for catalog lookups.
var (
	ErrGenerationNotFound = errors.New("generation not found")
	ErrEmptyPool          = errors.New("no pokémon available for the selected generation")
)

// WildcardGeneration selects all generations combined.
const WildcardGeneration = 0

// genRange is a contiguous id range for one generation.
type genRange struct {
	gen  int
	from int
	to   int
}

// Generations 1-5, Bulbasaur through Genesect.
var genRanges = []genRange{
	{1, 1, 151},
	{2, 152, 251},
	{3, 252, 386},
	{4, 387, 493},
	{5, 494, 649},
}

// GenerationOf returns the generation bucket for an id, or 0 if the id
// falls outside every known range.
func GenerationOf(id int) int {
	for _, r := range genRanges {
		if id >= r.from && id <= r.to {
			return r.gen
		}
	}
	return 0
}

// Catalog maps Pokémon ids to canonical names. It is immutable after
// construction and safe for concurrent use.
type Catalog struct {
	names map[int]string
	ids   []int // sorted, for deterministic iteration
}

// New builds a catalog from an id → name mapping.
func New(names map[int]string) *Catalog {
	c := &Catalog{names: make(map[int]string, len(names))}
	for id, name := range names {
		c.names[id] = name
		c.ids = append(c.ids, id)
	}
	sort.Ints(c.ids)
	return c
}

// Load reads a catalog from a JSON file of the form {"1": "Bulbasaur", ...}.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pokédex file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse pokédex file: %w", err)
	}

	names := make(map[int]string, len(raw))
	for key, name := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid pokédex id %q: %w", key, err)
		}
		names[id] = name
	}

	return New(names), nil
}

// Name returns the canonical name for an id.
func (c *Catalog) Name(id int) (string, bool) {
	name, ok := c.names[id]
	return name, ok
}

// Len returns the number of catalogued Pokémon.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Pool returns the draw pool for a generation: every catalogued id in
// that generation's range. Generation 0 is the wildcard and returns the
// union of all buckets. The returned slice is owned by the caller.
func (c *Catalog) Pool(generation int) ([]int, error) {
	if generation == WildcardGeneration {
		pool := make([]int, len(c.ids))
		copy(pool, c.ids)
		if len(pool) == 0 {
			return nil, ErrEmptyPool
		}
		return pool, nil
	}

	var bounds *genRange
	for i := range genRanges {
		if genRanges[i].gen == generation {
			bounds = &genRanges[i]
			break
		}
	}
	if bounds == nil {
		return nil, ErrGenerationNotFound
	}

	var pool []int
	for _, id := range c.ids {
		if id >= bounds.from && id <= bounds.to {
			pool = append(pool, id)
		}
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	return pool, nil
}

// Generations returns the known generation numbers in ascending order.
func Generations() []int {
	gens := make([]int, len(genRanges))
	for i, r := range genRanges {
		gens[i] = r.gen
	}
	return gens
}
