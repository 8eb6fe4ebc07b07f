package keywordengine

import (
	"sort"
	"strings"
)

// VariantManager implements spec.md §4.3's variant-detection rules.
type VariantManager struct {
	normalizer  *Normalizer
	maxVariants int
}

// NewVariantManager constructs a VariantManager. maxVariants caps how many
// surface forms GroupVariants will merge into one canonical group (spec.md
// §6 keyword-engine config surface's max_variants); 0 leaves it unbounded.
func NewVariantManager(normalizer *Normalizer, maxVariants int) *VariantManager {
	return &VariantManager{normalizer: normalizer, maxVariants: maxVariants}
}

// IsVariant reports whether a and b are variants of the same keyword: their
// normalized forms match exactly, or one contains the other and their
// length difference is at most 3 characters.
func (vm *VariantManager) IsVariant(a, b string) bool {
	na, nb := vm.normalizer.Normalize(a), vm.normalizer.Normalize(b)
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		diff := len(na) - len(nb)
		if diff < 0 {
			diff = -diff
		}
		return diff <= 3
	}
	return false
}

// GetCanonicalForm picks the longest variant, breaking ties lexicographically.
func (vm *VariantManager) GetCanonicalForm(variants []string) string {
	if len(variants) == 0 {
		return ""
	}
	best := variants[0]
	for _, v := range variants[1:] {
		if len(v) > len(best) || (len(v) == len(best) && v < best) {
			best = v
		}
	}
	return best
}

// GroupVariants partitions a flat list of candidate texts into groups of
// mutual variants, used by KeywordProcessor before canonicalization.
func (vm *VariantManager) GroupVariants(texts []string) [][]string {
	assigned := make([]bool, len(texts))
	var groups [][]string

	for i, text := range texts {
		if assigned[i] {
			continue
		}
		group := []string{text}
		assigned[i] = true
		for j := i + 1; j < len(texts); j++ {
			if assigned[j] {
				continue
			}
			if vm.maxVariants > 0 && len(group) >= vm.maxVariants {
				break
			}
			if vm.IsVariant(text, texts[j]) {
				group = append(group, texts[j])
				assigned[j] = true
			}
		}
		sort.Strings(group)
		groups = append(groups, group)
	}
	return groups
}
