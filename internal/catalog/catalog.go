package catalog

import (
	"math/rand"
	"strings"
)

type Entry struct {
	Name         string   `json:"exercise_name"`
	MuscleGroups []string `json:"muscle_groups"`
	Instructions string   `json:"instructions"`
	Tips         []string `json:"tips"`
}

// PrimaryGroup is the first listed muscle group, or "" when none is known.
func (e Entry) PrimaryGroup() string {
	if len(e.MuscleGroups) == 0 {
		return ""
	}
	return e.MuscleGroups[0]
}

// Catalog maps exercise names to the muscle groups they target.
// It is immutable after construction and safe for concurrent reads.
// A nil *Catalog behaves like an empty one.
type Catalog struct {
	entries []Entry
	byName  map[string]int      // lower-cased name -> index in entries
	byGroup map[string][]string // muscle group -> exercise names, catalog order
}

func Empty() *Catalog {
	return New(nil)
}

func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
		byGroup: make(map[string][]string),
	}

	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, seen := c.byName[key]; seen {
			continue
		}

		groups := make([]string, 0, len(e.MuscleGroups))
		for _, g := range e.MuscleGroups {
			g = strings.ToLower(strings.TrimSpace(g))
			if g != "" {
				groups = append(groups, g)
			}
		}

		e.Name = name
		e.MuscleGroups = groups
		c.byName[key] = len(c.entries)
		c.entries = append(c.entries, e)
		for _, g := range groups {
			c.byGroup[g] = append(c.byGroup[g], name)
		}
	}

	return c
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of all catalog entries in load order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) entry(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// LookupGroups returns the ordered muscle groups of the named exercise.
// Names are matched case-insensitively.
func (c *Catalog) LookupGroups(name string) ([]string, bool) {
	e, ok := c.entry(name)
	if !ok || len(e.MuscleGroups) == 0 {
		return nil, false
	}
	groups := make([]string, len(e.MuscleGroups))
	copy(groups, e.MuscleGroups)
	return groups, true
}

// CanonicalName returns the catalog spelling of name.
func (c *Catalog) CanonicalName(name string) (string, bool) {
	e, ok := c.entry(name)
	if !ok {
		return "", false
	}
	return e.Name, true
}

// FindByGroup lists exercises targeting group, in catalog order.
func (c *Catalog) FindByGroup(group string) []string {
	if c == nil {
		return nil
	}
	names := c.byGroup[strings.ToLower(strings.TrimSpace(group))]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Alternative picks a different exercise sharing the primary muscle group of name.
// When nothing shares the primary group, the secondary groups are searched.
// pick must return an index in [0, n); nil means uniform random choice.
func (c *Catalog) Alternative(name string, pick func(n int) int) (string, bool) {
	groups, ok := c.LookupGroups(name)
	if !ok {
		return "", false
	}
	if pick == nil {
		pick = rand.Intn
	}

	candidates := c.candidates(name, groups[:1])
	if len(candidates) == 0 {
		candidates = c.candidates(name, groups[1:])
	}
	if len(candidates) == 0 {
		return "", false
	}

	idx := pick(len(candidates))
	if idx < 0 || idx >= len(candidates) {
		idx = 0
	}
	return candidates[idx], true
}

func (c *Catalog) candidates(self string, groups []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, candidate := range c.byGroup[g] {
			if strings.EqualFold(candidate, strings.TrimSpace(self)) || seen[candidate] {
				continue
			}
			seen[candidate] = true
			out = append(out, candidate)
		}
	}
	return out
}

// Search returns entries whose name contains term (case-insensitive) and
// which target every one of groups.
func (c *Catalog) Search(term string, groups []string) []Entry {
	if c == nil {
		return []Entry{}
	}
	term = strings.ToLower(strings.TrimSpace(term))

	out := make([]Entry, 0)
	for _, e := range c.entries {
		if term != "" && !strings.Contains(strings.ToLower(e.Name), term) {
			continue
		}
		if !targetsAll(e, groups) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func targetsAll(e Entry, groups []string) bool {
	for _, want := range groups {
		want = strings.ToLower(strings.TrimSpace(want))
		if want == "" {
			continue
		}
		found := false
		for _, g := range e.MuscleGroups {
			if g == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
