package model

// InventoryItem is an ingredient record as read from the POS inventory.
type InventoryItem struct {
	Name              string
	AvailableQuantity float64
}
