package compat

import (
	"fmt"
	"sort"

	"golang.org/x/mod/semver"

	sg "github.com/reoring/schemaguard"
)

// Pair is two adjacent materialized versions of one (title, major) group.
type Pair struct {
	Old sg.SchemaVersion
	New sg.SchemaVersion
}

// Name is the check label for the pair.
func (p Pair) Name() string {
	return fmt.Sprintf("%s must be compatible with %s", p.New.Version, p.Old.Version)
}

// AdjacentPairs keeps the materialized versions of the primary content type,
// orders them by version and pairs each with its successor. Non-adjacent
// versions are never compared directly; compatibility is assumed to chain.
func AdjacentPairs(versions []sg.SchemaVersion, primary string) []Pair {
	var materialized []sg.SchemaVersion
	for _, v := range versions {
		if v.Current || v.ContentType != primary {
			continue
		}
		materialized = append(materialized, v)
	}
	sort.SliceStable(materialized, func(i, j int) bool {
		return semver.Compare("v"+materialized[i].Version, "v"+materialized[j].Version) < 0
	})
	if len(materialized) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(materialized)-1)
	for i := 0; i < len(materialized)-1; i++ {
		pairs = append(pairs, Pair{Old: materialized[i], New: materialized[i+1]})
	}
	return pairs
}

// CheckPair compares the two schemas of a pair.
func (c *Checker) CheckPair(p Pair) error {
	return c.IsCompatible(p.New.Schema, p.Old.Schema)
}
