package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ---- Static site data structures ----

// ItemDefs is the item list the market catalog is generated from, plus
// the keyword-based stackability classification.
type ItemDefs struct {
	Items             []string         `json:"items"`
	StackableKeywords []string         `json:"stackableKeywords"`
	Bundles           map[string]int64 `json:"bundles"` // units per purchase, default 1
}

// Drop is one entry in a monster's drop table.
type Drop struct {
	Item   string  `json:"item"`
	Chance float64 `json:"chance"` // 0..1
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// MonsterDrops is a monster's drop table, as shown by the drop-rate browser.
type MonsterDrops struct {
	Monster string `json:"monster"`
	Level   int    `json:"level"`
	Drops   []Drop `json:"drops"`
}

// StarterItem is one entry of the starter set granted at character creation.
type StarterItem struct {
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	Price      int64  `json:"price"`
	Stackable  bool   `json:"stackable"`
	Droppable  *bool  `json:"droppable,omitempty"`  // default true
	Splittable *bool  `json:"splittable,omitempty"` // default true
}

// Loader loads the static data files the site content is built from.
// Missing files fall back to built-in defaults so a bare checkout works.
type Loader struct {
	dataPath string

	ItemDefs   ItemDefs
	DropTables []MonsterDrops
	Starter    []StarterItem
}

// NewLoader creates a Loader for the given data directory.
func NewLoader(dataPath string) *Loader {
	return &Loader{dataPath: dataPath}
}

// Load reads itemdefs.json, droplist.json and starter.json. A missing
// file is replaced with defaults; a malformed file is an error.
func (l *Loader) Load() error {
	if err := l.loadJSON("itemdefs.json", &l.ItemDefs); err != nil {
		return err
	}
	if len(l.ItemDefs.Items) == 0 {
		l.ItemDefs = defaultItemDefs()
	}
	if err := l.loadJSON("droplist.json", &l.DropTables); err != nil {
		return err
	}
	if len(l.DropTables) == 0 {
		l.DropTables = defaultDropTables()
	}
	if err := l.loadJSON("starter.json", &l.Starter); err != nil {
		return err
	}
	if len(l.Starter) == 0 {
		l.Starter = defaultStarter()
	}
	return nil
}

func (l *Loader) loadJSON(name string, out interface{}) error {
	path := filepath.Join(l.dataPath, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("resource: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("resource: parse %s: %w", name, err)
	}
	return nil
}

// Stackable classifies an item name: any name containing one of the
// stackable keywords (case-insensitive) stacks in inventory.
func (l *Loader) Stackable(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range l.ItemDefs.StackableKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// BundleFor returns the units granted per purchase of the named item.
func (l *Loader) BundleFor(name string) int64 {
	if b, ok := l.ItemDefs.Bundles[name]; ok && b > 0 {
		return b
	}
	return 1
}

// ---- built-in defaults ----

func defaultItemDefs() ItemDefs {
	return ItemDefs{
		Items: []string{
			"Red Potion",
			"Greater Healing Potion",
			"Scroll of Escape",
			"Wooden Arrow",
			"Soulshot: No Grade",
			"Varnish",
			"Animal Bone",
			"Sword of Revolution",
			"Brigandine Tunic",
			"Ring of Knowledge",
			"Elven Earring",
			"Demon's Dagger",
		},
		StackableKeywords: []string{"potion", "scroll", "arrow", "soulshot", "varnish", "bone"},
		Bundles: map[string]int64{
			"Wooden Arrow":       50,
			"Soulshot: No Grade": 100,
		},
	}
}

func defaultDropTables() []MonsterDrops {
	return []MonsterDrops{
		{
			Monster: "Gremlin", Level: 1,
			Drops: []Drop{
				{Item: "Red Potion", Chance: 0.35, Min: 1, Max: 1},
				{Item: "Animal Bone", Chance: 0.6, Min: 1, Max: 2},
			},
		},
		{
			Monster: "Werewolf", Level: 9,
			Drops: []Drop{
				{Item: "Sword of Revolution", Chance: 0.002, Min: 1, Max: 1},
				{Item: "Varnish", Chance: 0.45, Min: 1, Max: 3},
			},
		},
		{
			Monster: "Ol Mahum Guard", Level: 16,
			Drops: []Drop{
				{Item: "Brigandine Tunic", Chance: 0.0015, Min: 1, Max: 1},
				{Item: "Scroll of Escape", Chance: 0.08, Min: 1, Max: 1},
			},
		},
	}
}

func defaultStarter() []StarterItem {
	return []StarterItem{
		{Name: "Red Potion", Quantity: 5, Price: 50, Stackable: true},
		{Name: "Scroll of Escape", Quantity: 1, Price: 300, Stackable: true},
		{Name: "Squire's Sword", Quantity: 1, Price: 160, Stackable: false},
	}
}
