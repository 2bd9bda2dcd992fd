package storage

import (
	"errors"
	"log"

	"court-sniper/types"
)

// SlotStore is one backing store for the slot snapshot. A completed scrape
// run replaces the entire stored set; a failed run must leave prior data
// untouched.
type SlotStore interface {
	LoadAll() ([]types.Slot, error)
	ReplaceAll([]types.Slot) error
}

// Gateway fans the snapshot out over a primary (remote) and secondary
// (local) store. Reads prefer the primary and fall back on error or empty;
// writes go to both independently, one failure never blocks the other.
type Gateway struct {
	Primary   SlotStore
	Secondary SlotStore
}

func NewGateway(primary, secondary SlotStore) *Gateway {
	return &Gateway{Primary: primary, Secondary: secondary}
}

func (g *Gateway) LoadAll() ([]types.Slot, error) {
	var lastErr error

	if g.Primary != nil {
		slots, err := g.Primary.LoadAll()
		if err == nil && len(slots) > 0 {
			log.Printf("📦 Loaded %d slots from primary store", len(slots))
			return slots, nil
		}
		if err != nil {
			log.Printf("⚠️ Primary store read failed: %v, falling back", err)
			lastErr = err
		}
	}

	if g.Secondary != nil {
		slots, err := g.Secondary.LoadAll()
		if err == nil {
			log.Printf("📦 Loaded %d slots from secondary store", len(slots))
			return slots, nil
		}
		log.Printf("⚠️ Secondary store read failed: %v", err)
		lastErr = err
	}

	return nil, lastErr
}

func (g *Gateway) ReplaceAll(slots []types.Slot) error {
	var errs []error

	for _, store := range []SlotStore{g.Primary, g.Secondary} {
		if store == nil {
			continue
		}
		if err := store.ReplaceAll(slots); err != nil {
			log.Printf("⚠️ Store write failed: %v", err)
			errs = append(errs, err)
		}
	}

	// Surface an error only when nothing accepted the snapshot.
	if len(errs) > 0 && len(errs) == g.storeCount() {
		return errors.Join(errs...)
	}
	return nil
}

func (g *Gateway) storeCount() int {
	count := 0
	if g.Primary != nil {
		count++
	}
	if g.Secondary != nil {
		count++
	}
	return count
}
