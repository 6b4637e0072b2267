package match

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// adjectives and nouns are combined into "adjective-noun" slugs for replay
// filenames — human-greppable in test output and logs, unlike a bare UUID.
var adjectives = []string{
	"brisk", "quiet", "amber", "stout", "wry", "lucid", "spry", "blunt",
	"terse", "keen", "plain", "sharp", "wary", "idle", "brave", "grim",
}

var nouns = []string{
	"falcon", "otter", "ember", "ridge", "marsh", "cobalt", "thicket",
	"quartz", "lantern", "harbor", "sparrow", "granite", "willow", "cinder",
}

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// NameGenerator produces unique filesystem-safe slugs, with a bounded
// collision retry and a timestamp-suffixed fallback.
type NameGenerator struct {
	mu   sync.Mutex
	used map[string]bool
}

// NewNameGenerator returns an empty generator.
func NewNameGenerator() *NameGenerator {
	return &NameGenerator{used: make(map[string]bool)}
}

// Generate returns a slug not previously returned by this generator (until
// Release is called for it).
func (g *NameGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < 1000; i++ {
		candidate := fmt.Sprintf("%s-%s", adjectives[rng.Intn(len(adjectives))], nouns[rng.Intn(len(nouns))])
		if !g.used[candidate] {
			g.used[candidate] = true
			return candidate
		}
	}

	candidate := fmt.Sprintf("%s-%s-%d", adjectives[rng.Intn(len(adjectives))], nouns[rng.Intn(len(nouns))], time.Now().UnixNano())
	g.used[candidate] = true
	return candidate
}

// Release frees a previously generated slug for reuse.
func (g *NameGenerator) Release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.used, name)
}

// IsUsed reports whether name is currently held by this generator.
func (g *NameGenerator) IsUsed(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used[name]
}
