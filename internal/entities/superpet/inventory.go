package superpet

// Inventory is a player's bag in display order.
type Inventory []InventoryItem

// Add puts quantity copies of item in the bag. Equipment gets one entry per
// copy, each with an instance ID from newInstanceID; everything else merges
// into the existing stack for the item ID. Non-positive quantities are
// ignored.
func (inv Inventory) Add(item GameItem, quantity int, newInstanceID func(itemID string) string) Inventory {
	if quantity <= 0 {
		return inv
	}
	if item.IsEquipment() {
		for i := 0; i < quantity; i++ {
			inv = append(inv, InventoryItem{Item: item, Quantity: 1, InstanceID: newInstanceID(item.ID)})
		}
		return inv
	}
	if idx := inv.stackIndex(item.ID); idx >= 0 {
		inv[idx].Quantity += quantity
		return inv
	}
	return append(inv, InventoryItem{Item: item, Quantity: quantity})
}

// Put appends an equipment entry as is, keeping its instance ID and
// enhancement level.
func (inv Inventory) Put(entry InventoryItem) Inventory {
	entry.Quantity = 1
	return append(inv, entry)
}

func (inv Inventory) stackIndex(itemID string) int {
	for i, entry := range inv {
		if entry.Item.ID == itemID && !entry.Item.IsEquipment() {
			return i
		}
	}
	return -1
}

// Stack returns the stack for a non-equipment item.
func (inv Inventory) Stack(itemID string) (InventoryItem, bool) {
	if idx := inv.stackIndex(itemID); idx >= 0 {
		return inv[idx], true
	}
	return InventoryItem{}, false
}

// Count is the number of units of itemID held, across entries.
func (inv Inventory) Count(itemID string) int {
	total := 0
	for _, entry := range inv {
		if entry.Item.ID == itemID {
			total += entry.Quantity
		}
	}
	return total
}

// FindInstance returns the index of the equipment entry with instanceID.
func (inv Inventory) FindInstance(instanceID string) int {
	if instanceID == "" {
		return -1
	}
	for i, entry := range inv {
		if entry.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

// RemoveAt drops the entry at idx.
func (inv Inventory) RemoveAt(idx int) Inventory {
	return append(inv[:idx:idx], inv[idx+1:]...)
}

// Take removes quantity units of a stackable item. It reports false and
// leaves the bag unchanged when fewer are held. A stack that reaches zero
// is removed.
func (inv Inventory) Take(itemID string, quantity int) (Inventory, bool) {
	idx := inv.stackIndex(itemID)
	if idx < 0 || inv[idx].Quantity < quantity {
		return inv, false
	}
	if inv[idx].Quantity == quantity {
		return inv.RemoveAt(idx), true
	}
	inv[idx].Quantity -= quantity
	return inv, true
}

// First returns the index of the first entry holding itemID, or -1.
func (inv Inventory) First(itemID string) int {
	for i, entry := range inv {
		if entry.Item.ID == itemID {
			return i
		}
	}
	return -1
}

// RemoveItem drops every entry holding itemID and reports how many units
// went with them.
func (inv Inventory) RemoveItem(itemID string) (Inventory, int) {
	kept := make(Inventory, 0, len(inv))
	removed := 0
	for _, entry := range inv {
		if entry.Item.ID == itemID {
			removed += entry.Quantity
			continue
		}
		kept = append(kept, entry)
	}
	return kept, removed
}
