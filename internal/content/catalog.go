package content

import (
	"math/rand"
	"slices"
)

// Category groups topics by theme
type Category string

const (
	CategorySports    Category = "sports"
	CategoryCinema    Category = "cinema"
	CategoryMusic     Category = "music"
	CategoryStreamers Category = "streamers"
	CategoryPolitics  Category = "politics"
	CategoryInternet  Category = "internet"
	CategoryOther     Category = "other"
)

// Topic is a secret the non-impostor players share
type Topic struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
	Difficulty int        `json:"difficulty"` // 1 (easy) to 3 (hard)
	Active     bool       `json:"active"`
	Country    string     `json:"country,omitempty"`
}

// Filter narrows the topics a game can draw from. Zero values match anything.
type Filter struct {
	Category   Category `json:"category,omitempty"`
	Difficulty int      `json:"difficulty,omitempty"`
	ExcludeIDs []string `json:"-"`
}

func (f Filter) matches(t Topic) bool {
	if !t.Active {
		return false
	}
	if f.Difficulty != 0 && t.Difficulty != f.Difficulty {
		return false
	}
	if f.Category != "" && !slices.Contains(t.Categories, f.Category) {
		return false
	}
	return !slices.Contains(f.ExcludeIDs, t.ID)
}

// Catalog is a read-only topic set; safe for concurrent use
type Catalog struct {
	topics []Topic
}

// NewCatalog creates a catalog over a copy of topics
func NewCatalog(topics []Topic) *Catalog {
	return &Catalog{topics: slices.Clone(topics)}
}

// Default returns the built-in catalog
func Default() *Catalog {
	return NewCatalog(builtinTopics)
}

// Len returns the number of topics, active or not
func (c *Catalog) Len() int {
	return len(c.topics)
}

// Pick returns a uniformly random topic matching f
func (c *Catalog) Pick(f Filter) (Topic, bool) {
	var candidates []Topic
	for _, t := range c.topics {
		if f.matches(t) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return Topic{}, false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// PickFresh prefers topics outside f.ExcludeIDs and falls back to the whole
// filtered set once every matching topic has been used.
func (c *Catalog) PickFresh(f Filter) (Topic, bool) {
	if t, ok := c.Pick(f); ok {
		return t, true
	}
	f.ExcludeIDs = nil
	return c.Pick(f)
}

var builtinTopics = []Topic{
	// Sports
	{ID: "messi", Name: "Lionel Messi", Categories: []Category{CategorySports}, Difficulty: 1, Active: true, Country: "AR"},
	{ID: "nadal", Name: "Rafael Nadal", Categories: []Category{CategorySports}, Difficulty: 1, Active: true, Country: "ES"},
	{ID: "jordan", Name: "Michael Jordan", Categories: []Category{CategorySports}, Difficulty: 1, Active: true, Country: "US"},
	{ID: "serena", Name: "Serena Williams", Categories: []Category{CategorySports}, Difficulty: 2, Active: true, Country: "US"},
	{ID: "bolt", Name: "Usain Bolt", Categories: []Category{CategorySports}, Difficulty: 2, Active: true, Country: "JM"},
	{ID: "alonso", Name: "Fernando Alonso", Categories: []Category{CategorySports}, Difficulty: 2, Active: true, Country: "ES"},
	{ID: "gasol", Name: "Pau Gasol", Categories: []Category{CategorySports}, Difficulty: 3, Active: true, Country: "ES"},

	// Cinema
	{ID: "penelope", Name: "Penélope Cruz", Categories: []Category{CategoryCinema}, Difficulty: 1, Active: true, Country: "ES"},
	{ID: "chaplin", Name: "Charlie Chaplin", Categories: []Category{CategoryCinema}, Difficulty: 1, Active: true, Country: "GB"},
	{ID: "almodovar", Name: "Pedro Almodóvar", Categories: []Category{CategoryCinema}, Difficulty: 2, Active: true, Country: "ES"},
	{ID: "streep", Name: "Meryl Streep", Categories: []Category{CategoryCinema}, Difficulty: 2, Active: true, Country: "US"},
	{ID: "kubrick", Name: "Stanley Kubrick", Categories: []Category{CategoryCinema}, Difficulty: 3, Active: true, Country: "US"},

	// Music
	{ID: "aitana", Name: "Aitana", Categories: []Category{CategoryMusic}, Difficulty: 1, Active: true, Country: "ES"},
	{ID: "shakira", Name: "Shakira", Categories: []Category{CategoryMusic}, Difficulty: 1, Active: true, Country: "CO"},
	{ID: "rosalia", Name: "Rosalía", Categories: []Category{CategoryMusic}, Difficulty: 1, Active: true, Country: "ES"},
	{ID: "beyonce", Name: "Beyoncé", Categories: []Category{CategoryMusic}, Difficulty: 2, Active: true, Country: "US"},
	{ID: "mercury", Name: "Freddie Mercury", Categories: []Category{CategoryMusic}, Difficulty: 2, Active: true, Country: "GB"},

	// Streamers / internet
	{ID: "ibai", Name: "Ibai Llanos", Categories: []Category{CategoryStreamers, CategoryInternet}, Difficulty: 1, Active: true, Country: "ES"},
	{ID: "auronplay", Name: "AuronPlay", Categories: []Category{CategoryStreamers, CategoryInternet}, Difficulty: 2, Active: true, Country: "ES"},
	{ID: "mrbeast", Name: "MrBeast", Categories: []Category{CategoryInternet}, Difficulty: 1, Active: true, Country: "US"},
	{ID: "rickroll", Name: "Rick Astley", Categories: []Category{CategoryInternet, CategoryMusic}, Difficulty: 2, Active: true, Country: "GB"},

	// Politics
	{ID: "obama", Name: "Barack Obama", Categories: []Category{CategoryPolitics}, Difficulty: 1, Active: true, Country: "US"},
	{ID: "churchill", Name: "Winston Churchill", Categories: []Category{CategoryPolitics}, Difficulty: 2, Active: true, Country: "GB"},
	{ID: "mandela", Name: "Nelson Mandela", Categories: []Category{CategoryPolitics}, Difficulty: 2, Active: true, Country: "ZA"},

	// Other
	{ID: "einstein", Name: "Albert Einstein", Categories: []Category{CategoryOther}, Difficulty: 1, Active: true, Country: "DE"},
	{ID: "picasso", Name: "Pablo Picasso", Categories: []Category{CategoryOther}, Difficulty: 2, Active: true, Country: "ES"},
	{ID: "curie", Name: "Marie Curie", Categories: []Category{CategoryOther}, Difficulty: 3, Active: true, Country: "PL"},
	{ID: "dali", Name: "Salvador Dalí", Categories: []Category{CategoryOther}, Difficulty: 3, Active: false, Country: "ES"},
}
