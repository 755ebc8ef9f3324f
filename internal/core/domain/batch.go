package domain

import (
	"io"
	"sort"
	"time"
)

type RoutingTier string

const (
	TierContent   RoutingTier = "content"
	TierExtension RoutingTier = "extension"
	TierFallback  RoutingTier = "fallback"
)

// Summary counts files moved per category. Categories without files are absent.
type Summary map[Category]int

func (s Summary) Add(category Category) {
	s[category]++
}

func (s Summary) Total() int {
	total := 0
	for _, count := range s {
		total += count
	}
	return total
}

// Categories returns the summary keys in name order.
func (s Summary) Categories() []Category {
	out := make([]Category, 0, len(s))
	for category := range s {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type Placement struct {
	Filename string      `json:"filename"`
	Stored   string      `json:"stored_as"`
	Category Category    `json:"category"`
	Tier     RoutingTier `json:"tier"`
}

type RoutingResult struct {
	Summary    Summary     `json:"summary"`
	Placements []Placement `json:"placements"`
}

type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type SkippedFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Reason   string `json:"reason"`
}

type TreeFolder struct {
	Category string   `json:"category"`
	Files    []string `json:"files"`
}

type ArchiveRef struct {
	Name string `json:"name"`
	Path string `json:"-"`
	Size int64  `json:"size"`
	URL  string `json:"download_url,omitempty"`
}

type BatchReport struct {
	BatchID    string        `json:"batch_id"`
	Summary    Summary       `json:"summary"`
	Placements []Placement   `json:"placements"`
	Skipped    []SkippedFile `json:"skipped,omitempty"`
	Tree       []TreeFolder  `json:"tree"`
	TotalFiles int           `json:"total_files"`
	Archive    *ArchiveRef   `json:"archive,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}
