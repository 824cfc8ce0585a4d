package syllabus

import "strings"

// DefaultTopicCount is assumed for subjects the catalog has no entry for.
const DefaultTopicCount = 20

// Catalog answers how large a subject's syllabus is. Coverage percentages are
// computed against these totals.
type Catalog interface {
	TopicCount(subject string) int
}

// StaticCatalog is a fixed subject -> topic-count table. Lookups are
// case-insensitive.
type StaticCatalog struct {
	counts map[string]int
}

func NewStaticCatalog(counts map[string]int) *StaticCatalog {
	normalized := make(map[string]int, len(counts))
	for subject, count := range counts {
		if count > 0 {
			normalized[strings.ToLower(strings.TrimSpace(subject))] = count
		}
	}
	return &StaticCatalog{counts: normalized}
}

// NewDefaultCatalog seeds the catalog with the standard board subjects.
func NewDefaultCatalog() *StaticCatalog {
	return NewStaticCatalog(map[string]int{
		"mathematics": 20,
		"physics":     20,
		"chemistry":   16,
		"biology":     22,
		"english":     18,
		"history":     15,
		"geography":   15,
	})
}

func (c *StaticCatalog) TopicCount(subject string) int {
	if count, ok := c.counts[strings.ToLower(strings.TrimSpace(subject))]; ok {
		return count
	}
	return DefaultTopicCount
}
