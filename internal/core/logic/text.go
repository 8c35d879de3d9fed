package logic

import (
	"sort"
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// rule maps a lowercase keyword to a value. Rules are matched in order.
type rule struct {
	keyword string
	value   string
}

// match returns the value of the first rule whose keyword occurs in s.
func match(rules []rule, s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, r := range rules {
		if strings.Contains(lower, r.keyword) {
			return r.value, true
		}
	}
	return "", false
}

// containsAny reports whether s contains any of words, ignoring case.
func containsAny(s string, words ...string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// joinAnd renders a list as "a, b and c".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return out
}

func productName(p domain.Product) string {
	if p.Name == "" {
		return "This product"
	}
	return p.Name
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.NotAvailable
	}
	return s
}

func cloneStrings(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// setDiff compares two lists case-insensitively. Common entries keep a's
// casing; unique entries keep their own side's casing. All results are sorted.
func setDiff(a, b []string) (common, onlyA, onlyB []string) {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[strings.ToLower(s)] = true
	}
	inA := make(map[string]bool, len(a))
	common, onlyA, onlyB = []string{}, []string{}, []string{}
	for _, s := range a {
		key := strings.ToLower(s)
		if inA[key] {
			continue
		}
		inA[key] = true
		if inB[key] {
			common = append(common, s)
		} else {
			onlyA = append(onlyA, s)
		}
	}
	seenB := make(map[string]bool, len(b))
	for _, s := range b {
		key := strings.ToLower(s)
		if inA[key] || seenB[key] {
			continue
		}
		seenB[key] = true
		onlyB = append(onlyB, s)
	}
	sortFold(common)
	sortFold(onlyA)
	sortFold(onlyB)
	return common, onlyA, onlyB
}

func sortFold(items []string) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i]) < strings.ToLower(items[j])
	})
}

func sign(n float64) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
