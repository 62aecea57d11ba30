package io

import (
	"maps"
	"slices"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

func sortedKeys(a graph.Attributes) []string {
	return slices.Sorted(maps.Keys(a))
}
