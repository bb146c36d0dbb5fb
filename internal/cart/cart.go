package cart

import (
	"fmt"
	"sync"
)

// Item is one cart line. Two lines with the same product but a different size
// or color are distinct entries.
type Item struct {
	ProductID  int64  `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	ImageURL   string `json:"imageUrl"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	Quantity   int    `json:"quantity"`
}

func (i Item) key() string {
	return fmt.Sprintf("%d|%s|%s", i.ProductID, i.Size, i.Color)
}

type snapshot struct {
	Items []Item `json:"items"`
}

// Cart is a persisted, ordered list of selected items. Totals are recomputed
// from the lines on every mutation, never stored independently.
type Cart struct {
	mu              sync.Mutex
	items           []Item
	totalItems      int
	totalPriceCents int64
	store           Store
}

// NewCart creates a cart backed by the given store, restoring any persisted
// snapshot.
func NewCart(store Store) (*Cart, error) {
	c := &Cart{store: store}

	var snap snapshot
	if err := store.Load(&snap); err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}

	c.items = snap.Items
	c.recompute()

	return c, nil
}

// Add merges the item into the cart: an existing line with the same key gains
// the quantity, otherwise the item is appended.
func (c *Cart) Add(item Item) error {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(item.key()); i >= 0 {
		c.items[i].Quantity += item.Quantity
	} else {
		c.items = append(c.items, item)
	}

	return c.persist()
}

// UpdateQuantity sets the quantity of the line with the given key. A quantity
// of zero or below removes the line.
func (c *Cart) UpdateQuantity(productID int64, size, color string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(Item{ProductID: productID, Size: size, Color: color}.key())
	if i < 0 {
		return nil
	}

	if quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	} else {
		c.items[i].Quantity = quantity
	}

	return c.persist()
}

// Remove deletes the line with the given key.
func (c *Cart) Remove(productID int64, size, color string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(Item{ProductID: productID, Size: size, Color: color}.key())
	if i < 0 {
		return nil
	}

	c.items = append(c.items[:i], c.items[i+1:]...)

	return c.persist()
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil

	return c.persist()
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)

	return out
}

// TotalItems returns the summed quantity across all lines.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalItems
}

// TotalPriceCents returns the summed line totals.
func (c *Cart) TotalPriceCents() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalPriceCents
}

func (c *Cart) indexOf(key string) int {
	for i, item := range c.items {
		if item.key() == key {
			return i
		}
	}

	return -1
}

func (c *Cart) recompute() {
	c.totalItems = 0
	c.totalPriceCents = 0
	for _, item := range c.items {
		c.totalItems += item.Quantity
		c.totalPriceCents += item.PriceCents * int64(item.Quantity)
	}
}

func (c *Cart) persist() error {
	c.recompute()

	return c.store.Save(snapshot{Items: c.items})
}
