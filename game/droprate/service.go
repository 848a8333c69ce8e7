package droprate

import (
	"sort"
	"strings"

	"github.com/shillien-project/portal/resource"
)

// Service answers drop-table queries for the site's database pages.
// Tables are loaded once at startup and never change, so every method is
// a read over an immutable snapshot.
type Service struct {
	tables []resource.MonsterDrops
}

// NewService creates a drop-rate Service over the loaded tables, sorted
// by monster level for stable rendering.
func NewService(res *resource.Loader) *Service {
	tables := make([]resource.MonsterDrops, len(res.DropTables))
	copy(tables, res.DropTables)
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].Level < tables[j].Level
	})
	return &Service{tables: tables}
}

// List returns every monster's drop table.
func (svc *Service) List() []resource.MonsterDrops {
	return svc.tables
}

// Search returns tables whose monster name or any dropped item matches
// the query, case-insensitively. An empty query matches everything.
func (svc *Service) Search(query string) []resource.MonsterDrops {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return svc.tables
	}
	var out []resource.MonsterDrops
	for _, t := range svc.tables {
		if strings.Contains(strings.ToLower(t.Monster), q) {
			out = append(out, t)
			continue
		}
		for _, d := range t.Drops {
			if strings.Contains(strings.ToLower(d.Item), q) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Monster returns one monster's table by exact name, case-insensitively.
func (svc *Service) Monster(name string) (resource.MonsterDrops, bool) {
	for _, t := range svc.tables {
		if strings.EqualFold(t.Monster, name) {
			return t, true
		}
	}
	return resource.MonsterDrops{}, false
}
