package sim

import (
	"math/rand"

	"github.com/edginaround/worldcore/sim/feature"
	"github.com/edginaround/worldcore/sim/geometry"
)

// State owns every live entity plus the world's elevation function (which
// carries the sphere radius). It is the one piece of shared mutable data
// the Engine mutates inside a serialized step; Scheduler and Gateway hold
// only handles, never State itself.
type State struct {
	elevation geometry.Elevation
	entities  map[EntityId]*Entity
}

// NewState builds a State over the given elevation function and initial
// entity set (as produced by world generation, out of scope here).
func NewState(elevation geometry.Elevation, entities []*Entity) *State {
	st := &State{elevation: elevation, entities: make(map[EntityId]*Entity, len(entities))}
	for _, e := range entities {
		st.entities[e.Id] = e
	}
	return st
}

func (s *State) Radius() float64 { return s.elevation.Radius() }

func (s *State) GetEntity(id EntityId) *Entity { return s.entities[id] }

// Entities returns every live entity. Callers must not mutate the returned
// map's membership; mutate entity fields or go through AddEntity/DeleteEntity.
func (s *State) Entities() map[EntityId]*Entity { return s.entities }

// AddEntity assigns a fresh id to entity if it has none, then inserts it.
func (s *State) AddEntity(entity *Entity) {
	if entity.Id == 0 {
		entity.Id = s.GenerateNewEntityId()
	}
	s.entities[entity.Id] = entity
}

func (s *State) DeleteEntity(id EntityId) { delete(s.entities, id) }

// CalculateDistance returns the great-circle distance between two
// positioned entities, or nil if either lacks a position.
func (s *State) CalculateDistance(a, b *Entity) *float64 {
	if a.Position == nil || b.Position == nil {
		return nil
	}
	d := a.Position.GreatCircleDistanceTo(*b.Position, s.Radius())
	return &d
}

// FindClosestDeliveringWithin returns the id of the nearest entity (other
// than referenceID) whose features deliver any of claims, or nil if none
// exists. maxDistance is accepted for interface symmetry with the spec but,
// matching the source, is not actually enforced here — callers compare the
// returned entity's distance against their own threshold afterward.
func (s *State) FindClosestDeliveringWithin(referenceID EntityId, claims []feature.Claim, maxDistance float64) *EntityId {
	return s.findClosest(referenceID, func(f *feature.Features) bool { return f.Deliver(claims) })
}

// FindClosestAbsorbingWithin is FindClosestDeliveringWithin's absorption
// counterpart.
func (s *State) FindClosestAbsorbingWithin(referenceID EntityId, claims []feature.Claim, maxDistance float64) *EntityId {
	return s.findClosest(referenceID, func(f *feature.Features) bool { return f.Absorb(claims) })
}

func (s *State) findClosest(referenceID EntityId, matches func(*feature.Features) bool) *EntityId {
	reference := s.GetEntity(referenceID)
	if reference == nil {
		return nil
	}

	var minID *EntityId
	minDistance := 100 * s.Radius()
	for id, entity := range s.entities {
		if id == referenceID || !matches(entity.Features) {
			continue
		}
		if d := s.CalculateDistance(reference, entity); d != nil && *d < minDistance {
			minDistance = *d
			found := id
			minID = &found
		}
	}
	return minID
}

// GenerateNewEntityId draws a positive 63-bit id uniformly until it finds
// one not already present in the entity map.
func (s *State) GenerateNewEntityId() EntityId {
	for {
		id := EntityId(rand.Int63())
		if id == 0 {
			continue
		}
		if _, taken := s.entities[id]; !taken {
			return id
		}
	}
}

// Ingredient is one required slot in a Recipe: entities matched against it
// must carry the given Essence.
type Ingredient struct {
	Essence Essence
}

// Recipe is a crafting template: a codename the client's Assembly cites,
// and the ordered ingredient slots an Assembly's Sources must line up
// against structurally.
type Recipe struct {
	Codename    string
	Ingredients []Ingredient
}

// Validate checks only the assembly's shape against the recipe (right
// number of ingredient slots) — per-source essence/quantity checks happen
// in State.ValidateAssembly, which needs State to resolve actor ids.
func (r Recipe) Validate(assembly Assembly) bool {
	return len(assembly.Sources) == len(r.Ingredients)
}

// RecipeCatalog resolves recipe codenames and constructs the entities they
// produce. State depends only on this interface so that the concrete
// catalog (backed by a data file) can live in its own package without
// State importing it back.
type RecipeCatalog interface {
	FindRecipe(codename string) (Recipe, bool)
	Construct(codename string, id EntityId, position *geometry.Point) *Entity
}

// CraftResult is what CraftEntity produces: the newly created entity (if
// any) and the ids of every entity consumed and deleted.
type CraftResult struct {
	Created []*Entity
	Deleted []EntityId
}

// ValidateAssembly checks a crafting attempt against a recipe without
// applying it: the recipe must exist and structurally accept the assembly,
// and for every cited inventory source the held entity must exist, match
// the ingredient's required essence, and carry enough stack quantity.
func (s *State) ValidateAssembly(catalog RecipeCatalog, assembly Assembly, inv *feature.Inventory) bool {
	recipe, ok := catalog.FindRecipe(assembly.RecipeCodename)
	if !ok || !recipe.Validate(assembly) {
		return false
	}

	for i, sources := range assembly.Sources {
		if i >= len(recipe.Ingredients) {
			return false
		}
		ingredient := recipe.Ingredients[i]
		for _, source := range sources {
			entry := inv.FindEntryWithActorID(int64(source.ActorID))
			if entry == nil {
				return false
			}
			entity := s.GetEntity(source.ActorID)
			if entity == nil || entity.Essence != ingredient.Essence {
				return false
			}
			if entity.Features.Stackable != nil {
				if entity.Features.Stackable.Size() < source.Quantity {
					return false
				}
			} else if source.Quantity > 1 {
				return false
			}
		}
	}
	return true
}

// CraftEntity validates the assembly and, if valid, applies it: consumes
// the cited inventory sources, constructs the recipe's output entity via
// the registry, and stores it in a free hand if it's inventorable.
func (s *State) CraftEntity(catalog RecipeCatalog, assembly Assembly, inv *feature.Inventory) CraftResult {
	if !s.ValidateAssembly(catalog, assembly, inv) {
		return CraftResult{}
	}

	freeHand, ok := inv.GetFreeHand(feature.HandRight)
	if !ok {
		return CraftResult{}
	}

	recipe, _ := catalog.FindRecipe(assembly.RecipeCodename)
	newEntity := catalog.Construct(recipe.Codename, s.GenerateNewEntityId(), nil)
	if newEntity == nil {
		return CraftResult{}
	}

	var result CraftResult
	for _, sources := range assembly.Sources {
		for _, source := range sources {
			entry := inv.FindEntryWithActorID(int64(source.ActorID))
			if entry == nil {
				continue
			}
			entity := s.GetEntity(source.ActorID)
			if entity == nil {
				continue
			}

			if entity.Features.Stackable != nil && entity.Features.Stackable.Size() != source.Quantity {
				entity.Features.Stackable.Decrease(source.Quantity)
				continue
			}

			inv.RemoveWithActorID(int64(entity.Id))
			result.Deleted = append(result.Deleted, entity.Id)
			s.DeleteEntity(entity.Id)
		}
	}

	if newEntity.Features.Inventorable != nil {
		inv.StoreEntry(freeHand, newEntity.AsInventoryEntry())
		newEntity.Features.Inventorable.SetStoredBy(0)
	}

	s.AddEntity(newEntity)
	result.Created = append(result.Created, newEntity)
	return result
}

// MergeEntities merges the inventory entry held in hand into the entry at
// pocketIndex, both by entity reference: it is a no-op unless both entries
// exist, both entities exist, both are stackable and inventorable, and
// they hold the same codename. Conserves total stack count across the
// merge, deleting the source if it's fully absorbed.
func (s *State) MergeEntities(inv *feature.Inventory, hand feature.Hand, pocketIndex int) {
	sourceEntry := inv.GetHandEntry(hand)
	targetEntry := inv.GetPocketEntry(pocketIndex)
	if sourceEntry == nil || targetEntry == nil {
		return
	}

	sourceEntity := s.GetEntity(EntityId(sourceEntry.ActorID))
	targetEntity := s.GetEntity(EntityId(targetEntry.ActorID))
	if sourceEntity == nil || targetEntity == nil {
		return
	}

	sourceStackable, targetStackable := sourceEntity.Features.Stackable, targetEntity.Features.Stackable
	if sourceStackable == nil || targetStackable == nil {
		return
	}
	sourceInventorable, targetInventorable := sourceEntity.Features.Inventorable, targetEntity.Features.Inventorable
	if sourceInventorable == nil || targetInventorable == nil {
		return
	}
	if sourceEntry.Codename != targetEntry.Codename {
		return
	}

	itemVolume := sourceInventorable.Volume()
	maxTargetQuantity := targetEntry.CalcMaxQuantityForItemVolume(itemVolume)
	combined := sourceStackable.Size() + targetStackable.Size()
	newTargetQuantity := combined
	if newTargetQuantity > maxTargetQuantity {
		newTargetQuantity = maxTargetQuantity
	}
	newSourceQuantity := combined - newTargetQuantity

	targetStackable.SetSize(newTargetQuantity)
	targetEntry.Quantity = newTargetQuantity

	if newSourceQuantity > 0 {
		sourceStackable.SetSize(newSourceQuantity)
		sourceEntry.Quantity = newSourceQuantity
	} else {
		s.DeleteEntity(EntityId(sourceEntry.ActorID))
		inv.RemoveWithActorID(sourceEntry.ActorID)
	}
}
