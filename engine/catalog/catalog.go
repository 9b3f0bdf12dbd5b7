// Package catalog implements the recipe catalog and entity-constructor
// registry the engine crafts against — the Go counterpart of the source's
// settings.RECIPES list and ENTITIES dict, but read from a JSON document via
// gjson path queries instead of a fixed struct, so adding a recipe or an
// ingredient needs no Go changes.
package catalog

import (
	"fmt"
	"os"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/match"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/edginaround/worldcore/sim"
	"github.com/edginaround/worldcore/sim/geometry"
)

// Constructor builds a newly crafted or world-generated entity. The position
// pointer is nil for crafted entities (placed into an inventory hand, not
// the world) and non-nil for entities spawned into the world.
type Constructor func(id sim.EntityId, position *geometry.Point) *sim.Entity

// defaultDocument is the catalog's built-in recipe list, shaped like
// settings.RECIPES: one crafting recipe, matched to entity kinds sim
// actually models. The source's "hat" recipe needs materials (leather,
// cloth) this module has no Kind for, so it's left out rather than faked.
const defaultDocument = `{
  "recipes": [
    {
      "codename": "axe",
      "ingredients": [
        {"essence": "rocks"},
        {"essence": "logs"}
      ]
    }
  ]
}`

var essenceNames = map[string]sim.Essence{
	"void":   sim.EssenceVoid,
	"rocks":  sim.EssenceRocks,
	"gold":   sim.EssenceGold,
	"meat":   sim.EssenceMeat,
	"logs":   sim.EssenceLogs,
	"sticks": sim.EssenceSticks,
	"tool":   sim.EssenceTool,
	"plant":  sim.EssencePlant,
	"hero":   sim.EssenceHero,
}

// Catalog is a RecipeCatalog backed by a JSON recipe document and an
// in-memory entity-constructor registry. Safe for concurrent use.
type Catalog struct {
	mu           sync.RWMutex
	doc          string
	constructors map[string]Constructor
}

// New wraps an already-loaded JSON document with the default constructor
// registry (every entity kind sim.RecipeCatalog's Construct can currently
// produce via crafting).
func New(doc string) *Catalog {
	return &Catalog{
		doc: doc,
		constructors: map[string]Constructor{
			"axe": func(id sim.EntityId, position *geometry.Point) *sim.Entity {
				return sim.NewAxe(id, position)
			},
			"rocks": func(id sim.EntityId, position *geometry.Point) *sim.Entity {
				return sim.NewRocks(id, position)
			},
			"gold": func(id sim.EntityId, position *geometry.Point) *sim.Entity {
				return sim.NewGold(id, position)
			},
			"raw_meat": func(id sim.EntityId, position *geometry.Point) *sim.Entity {
				return sim.NewRawMeat(id, position)
			},
			"log": func(id sim.EntityId, position *geometry.Point) *sim.Entity {
				return sim.NewLog(id, position)
			},
			"twig": func(id sim.EntityId, position *geometry.Point) *sim.Entity {
				return sim.NewTwig(id, position)
			},
		},
	}
}

// NewDefault builds a Catalog over the built-in recipe document.
func NewDefault() *Catalog {
	return New(defaultDocument)
}

// LoadFile reads a recipe document from path, the way a deployment would
// point the catalog at a data file instead of the built-in default.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("catalog: %s is not valid JSON", path)
	}
	return New(string(data)), nil
}

// RegisterConstructor adds or replaces the constructor for codename — how a
// caller extends the registry beyond the built-in entity kinds, mirroring
// settings.ENTITIES being assembled at module load time.
func (c *Catalog) RegisterConstructor(codename string, ctor Constructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.constructors == nil {
		c.constructors = make(map[string]Constructor)
	}
	c.constructors[codename] = ctor
}

// FindRecipe looks up codename in the document by exact match, satisfying
// sim.RecipeCatalog. Ported from the source's _find_recipe_by_codename,
// a linear scan over settings.RECIPES — here the scan is gjson's, not ours.
func (c *Catalog) FindRecipe(codename string) (sim.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := fmt.Sprintf(`recipes.#(codename==%q)`, codename)
	result := gjson.Get(c.doc, path)
	if !result.Exists() {
		return sim.Recipe{}, false
	}

	ingredientsResult := result.Get("ingredients")
	ingredients := make([]sim.Ingredient, 0, len(ingredientsResult.Array()))
	for _, ing := range ingredientsResult.Array() {
		name := ing.Get("essence").String()
		essence, ok := essenceNames[name]
		if !ok {
			continue
		}
		ingredients = append(ingredients, sim.Ingredient{Essence: essence})
	}

	return sim.Recipe{Codename: codename, Ingredients: ingredients}, true
}

// Construct builds the entity a recipe (or a world generator) names by
// codename, satisfying sim.RecipeCatalog. Returns nil for an unregistered
// codename, the same "nothing happens" outcome as the source's
// _construct_entity on a missing dict key.
func (c *Catalog) Construct(codename string, id sim.EntityId, position *geometry.Point) *sim.Entity {
	c.mu.RLock()
	ctor, ok := c.constructors[codename]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return ctor(id, position)
}

// Recipes returns every recipe codename currently in the document matching
// glob (e.g. "*" for all), using tidwall/match the way a debug/admin command
// would filter a recipe listing without a full JSON round-trip.
func (c *Catalog) Recipes(glob string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var codenames []string
	for _, r := range gjson.Get(c.doc, "recipes").Array() {
		name := r.Get("codename").String()
		if match.Match(name, glob) {
			codenames = append(codenames, name)
		}
	}
	return codenames
}

// AddRecipe appends a new recipe to the document in place, so operators can
// extend the catalog without redeploying a Go build — the concrete case the
// DOMAIN STACK cites gjson/sjson path queries for.
func (c *Catalog) AddRecipe(codename string, essences ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ingredients := make([]map[string]string, 0, len(essences))
	for _, e := range essences {
		if _, ok := essenceNames[e]; !ok {
			return fmt.Errorf("catalog: unknown essence %q", e)
		}
		ingredients = append(ingredients, map[string]string{"essence": e})
	}

	recipe := map[string]any{"codename": codename, "ingredients": ingredients}
	doc, err := sjson.Set(c.doc, "recipes.-1", recipe)
	if err != nil {
		return fmt.Errorf("catalog: add recipe %q: %w", codename, err)
	}
	c.doc = doc
	return nil
}

// Describe pretty-prints the current recipe document, for a debug endpoint
// or a startup log line confirming what the catalog actually loaded.
func (c *Catalog) Describe() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return string(pretty.Pretty([]byte(c.doc)))
}
