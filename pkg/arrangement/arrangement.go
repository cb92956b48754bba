// Package arrangement holds the in-memory model of a look in progress: an
// ordered sequence of placed wardrobe items, keyed by item id.
//
// The arrangement is the single authoritative copy of placement state during
// a composition session. The interaction controller proposes mutations through
// callbacks; only the session owner applies them here. Insertion order is
// significant: it drives default-slot assignment for new items and the base
// paint order on the canvas.
package arrangement

import (
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
)

// ItemType distinguishes where a placed item came from.
// The value is carried through to persisted records unchanged.
type ItemType string

// Supported item types.
const (
	ItemTypeCloset      ItemType = "closet_item"
	ItemTypeNewPurchase ItemType = "new_purchase"
)

// Item is the read-only view of a wardrobe item the engine works with.
// Items are owned by the closet subsystem; the engine never mutates them.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Type     ItemType `json:"type"`
	ImageRef string   `json:"image_ref"`
}

// Entry is one item's placement within an arrangement.
type Entry struct {
	Item  Item              `json:"item"`
	Pos   geometry.Position `json:"pos"`
	Scale float64           `json:"scale"`
}

// Arrangement is an ordered set of placement entries, at most one per item id.
// The zero value is not usable; construct with [New].
type Arrangement struct {
	profile geometry.LayoutProfile
	entries []Entry
	byID    map[string]int // item id -> index in entries
}

// New creates an empty arrangement using the given layout profile for
// default-slot assignment and clamping.
func New(profile geometry.LayoutProfile) *Arrangement {
	return &Arrangement{
		profile: profile,
		byID:    make(map[string]int),
	}
}

// Profile returns the layout profile the arrangement was created with.
func (a *Arrangement) Profile() geometry.LayoutProfile {
	return a.profile
}

// Len returns the number of placed items.
func (a *Arrangement) Len() int {
	return len(a.entries)
}

// Contains reports whether the item is already placed.
func (a *Arrangement) Contains(itemID string) bool {
	_, ok := a.byID[itemID]
	return ok
}

// Get returns the entry for itemID, if present.
func (a *Arrangement) Get(itemID string) (Entry, bool) {
	i, ok := a.byID[itemID]
	if !ok {
		return Entry{}, false
	}
	return a.entries[i], true
}

// IndexOf returns the sequence index of itemID, or -1 if absent.
func (a *Arrangement) IndexOf(itemID string) int {
	i, ok := a.byID[itemID]
	if !ok {
		return -1
	}
	return i
}

// Add places item at the next default slot with scale 1.
// Adding an item that is already present is a no-op; the existing entry is
// left untouched. Returns true if the item was added.
func (a *Arrangement) Add(item Item) bool {
	if _, ok := a.byID[item.ID]; ok {
		return false
	}
	a.byID[item.ID] = len(a.entries)
	a.entries = append(a.entries, Entry{
		Item:  item,
		Pos:   a.profile.DefaultSlot(len(a.entries)),
		Scale: geometry.DefaultScale,
	})
	return true
}

// AddAt places item at an explicit position and scale, clamped.
// Used when restoring a persisted arrangement. Idempotent like [Add].
func (a *Arrangement) AddAt(item Item, pos geometry.Position, scale float64) bool {
	if _, ok := a.byID[item.ID]; ok {
		return false
	}
	scale = geometry.ClampScale(scale)
	a.byID[item.ID] = len(a.entries)
	a.entries = append(a.entries, Entry{
		Item:  item,
		Pos:   a.profile.Clamp(pos, scale),
		Scale: scale,
	})
	return true
}

// Remove deletes the item's entry, preserving the order of the rest.
// Returns true if the item was present.
func (a *Arrangement) Remove(itemID string) bool {
	i, ok := a.byID[itemID]
	if !ok {
		return false
	}
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	delete(a.byID, itemID)
	for j := i; j < len(a.entries); j++ {
		a.byID[a.entries[j].Item.ID] = j
	}
	return true
}

// Move updates the item's position, clamped against its current scale.
// Returns true if the item was present.
func (a *Arrangement) Move(itemID string, pos geometry.Position) bool {
	i, ok := a.byID[itemID]
	if !ok {
		return false
	}
	a.entries[i].Pos = a.profile.Clamp(pos, a.entries[i].Scale)
	return true
}

// SetScale updates the item's scale, clamped to the allowed range, and
// re-clamps the position so the larger footprint still fits the canvas.
// Returns true if the item was present.
func (a *Arrangement) SetScale(itemID string, scale float64) bool {
	i, ok := a.byID[itemID]
	if !ok {
		return false
	}
	scale = geometry.ClampScale(scale)
	a.entries[i].Scale = scale
	a.entries[i].Pos = a.profile.Clamp(a.entries[i].Pos, scale)
	return true
}

// Entries returns a copy of the placement sequence in order.
// The snapshot is safe to hand to the diff engine or composite generator
// while the arrangement continues to change.
func (a *Arrangement) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}
