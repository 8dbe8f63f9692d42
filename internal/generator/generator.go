// Package generator produces synthetic news records from static template
// tables. It performs no I/O; output is deterministic up to the injected
// random source.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Dkrayten/newswire/internal/models"
)

// maxKeywords bounds how many keywords a record carries.
const maxKeywords = 3

// idRange bounds the random record id, exclusive. Ids are illustrative and
// may collide.
const idRange = 1_000_000_000

var titleTemplates = map[models.Category][]string{
	models.CategoryTechnology: {
		"Breaking: %s Revolutionizes Industry",
		"New Study Reveals Surprising Trends in %s",
		"Major Breakthrough in %s Sector",
	},
	models.CategoryBusiness: {
		"Markets React as %s Outlook Shifts",
		"%s Giants Announce Record Quarter",
		"Analysts Split on %s Forecast",
	},
	models.CategoryWorld: {
		"Leaders Convene Over %s Developments",
		"%s Summit Ends With Joint Statement",
		"Tensions Ease in Ongoing %s Talks",
	},
	models.CategoryScience: {
		"Researchers Publish Landmark %s Findings",
		"New Study Reveals Surprising Results in %s",
		"%s Team Wins International Recognition",
	},
}

var contentTemplates = map[models.Category][]string{
	models.CategoryTechnology: {
		"Detailed report about recent developments in the %s sector.",
		"Industry observers describe the latest %s announcements as a turning point.",
	},
	models.CategoryBusiness: {
		"Detailed report about recent developments in the %s sector.",
		"Quarterly figures across the %s segment exceeded consensus estimates.",
	},
	models.CategoryWorld: {
		"Detailed report about recent developments in the %s arena.",
		"Correspondents on the ground summarize the week's %s events.",
	},
	models.CategoryScience: {
		"Detailed report about recent developments in the %s field.",
		"Peer reviewers call the new %s results robust and reproducible.",
	},
}

var keywordVocab = map[models.Category][]string{
	models.CategoryTechnology: {"innovation", "software", "startup", "hardware", "ai"},
	models.CategoryBusiness:   {"markets", "earnings", "merger", "forecast"},
	models.CategoryWorld:      {"diplomacy", "summit", "election", "treaty"},
	models.CategoryScience:    {"research", "breakthrough", "discovery"},
}

// Generator creates news records. Not safe for concurrent use; each
// publishing worker should own its own Generator.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator seeded from the current time.
func New() *Generator {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand returns a Generator driven by the given source. Tests pass a
// fixed seed to make output reproducible.
func NewWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate produces one record. It never fails.
func (g *Generator) Generate() models.NewsRecord {
	categories := models.Categories()
	category := categories[g.rng.Intn(len(categories))]

	return models.NewsRecord{
		ID:        1 + g.rng.Int63n(idRange-1),
		Title:     g.fill(titleTemplates[category], category),
		Content:   g.fill(contentTemplates[category], category),
		Category:  category,
		Timestamp: time.Now().UTC(),
		Keywords:  g.keywords(category),
	}
}

// fill picks a template and substitutes the category name for its
// placeholder, if it has one.
func (g *Generator) fill(templates []string, category models.Category) string {
	tmpl := templates[g.rng.Intn(len(templates))]
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, string(category))
}

// keywords samples up to maxKeywords entries from the category vocabulary
// without replacement. A vocabulary smaller than maxKeywords is returned
// whole.
func (g *Generator) keywords(category models.Category) []string {
	vocab := keywordVocab[category]
	n := g.rng.Intn(maxKeywords + 1)
	if n > len(vocab) {
		n = len(vocab)
	}
	if n == 0 {
		return nil
	}

	picked := make([]string, len(vocab))
	copy(picked, vocab)
	g.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}

// Vocabulary returns the keyword vocabulary for a category. Exposed for
// consumers that validate keyword provenance.
func Vocabulary(category models.Category) []string {
	return keywordVocab[category]
}
