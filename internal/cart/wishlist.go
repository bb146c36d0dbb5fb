package cart

import (
	"context"
	"fmt"
	"sync"
)

// Entry is one wishlist item, keyed by product id alone.
type Entry struct {
	ProductID  int64  `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	ImageURL   string `json:"imageUrl"`
}

// Remote is the server-side per-user wishlist.
type Remote interface {
	List(ctx context.Context) ([]Entry, error)
	Add(ctx context.Context, e Entry) error
	Remove(ctx context.Context, productID int64) error
}

type wishlistSnapshot struct {
	Entries []Entry `json:"entries"`
}

// Wishlist is the client-held wishlist. Mutations are optimistic: applied
// locally first, then confirmed against the remote. A rejected add is
// reverted; a failed delete re-fetches the authoritative list so local state
// never runs ahead of the server.
type Wishlist struct {
	mu      sync.Mutex
	entries []Entry
	store   Store
	remote  Remote
}

// NewWishlist creates a wishlist backed by the given store and remote,
// restoring any persisted snapshot.
func NewWishlist(store Store, remote Remote) (*Wishlist, error) {
	w := &Wishlist{store: store, remote: remote}

	var snap wishlistSnapshot
	if err := store.Load(&snap); err != nil {
		return nil, fmt.Errorf("load wishlist snapshot: %w", err)
	}

	w.entries = snap.Entries

	return w, nil
}

// SyncOnLogin replaces the local list wholesale with the server's list. No
// merging: the server copy wins.
func (w *Wishlist) SyncOnLogin(ctx context.Context) error {
	entries, err := w.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("fetch remote wishlist: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries = entries

	return w.persist()
}

// Add inserts the entry locally, then confirms with the remote. A remote
// rejection (duplicate, auth) reverts the optimistic insert, leaving the list
// exactly as it was.
func (w *Wishlist) Add(ctx context.Context, e Entry) error {
	w.mu.Lock()

	if w.indexOf(e.ProductID) >= 0 {
		w.mu.Unlock()

		return nil
	}

	w.entries = append(w.entries, e)
	if err := w.persist(); err != nil {
		w.mu.Unlock()

		return err
	}
	w.mu.Unlock()

	if err := w.remote.Add(ctx, e); err != nil {
		w.mu.Lock()
		defer w.mu.Unlock()

		if i := w.indexOf(e.ProductID); i >= 0 {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			_ = w.persist()
		}

		return fmt.Errorf("remote rejected wishlist add: %w", err)
	}

	return nil
}

// Remove deletes the entry locally, then confirms with the remote. On remote
// failure the authoritative list is re-fetched and replaces local state.
func (w *Wishlist) Remove(ctx context.Context, productID int64) error {
	w.mu.Lock()

	i := w.indexOf(productID)
	if i < 0 {
		w.mu.Unlock()

		return nil
	}

	w.entries = append(w.entries[:i], w.entries[i+1:]...)
	if err := w.persist(); err != nil {
		w.mu.Unlock()

		return err
	}
	w.mu.Unlock()

	if err := w.remote.Remove(ctx, productID); err != nil {
		if syncErr := w.SyncOnLogin(ctx); syncErr != nil {
			return fmt.Errorf("remote wishlist delete failed and refetch failed: %w", syncErr)
		}

		return fmt.Errorf("remote rejected wishlist delete: %w", err)
	}

	return nil
}

// Entries returns a copy of the wishlist in insertion order.
func (w *Wishlist) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Entry, len(w.entries))
	copy(out, w.entries)

	return out
}

func (w *Wishlist) indexOf(productID int64) int {
	for i, e := range w.entries {
		if e.ProductID == productID {
			return i
		}
	}

	return -1
}

func (w *Wishlist) persist() error {
	return w.store.Save(wishlistSnapshot{Entries: w.entries})
}
