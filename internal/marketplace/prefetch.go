package marketplace

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/recipe"
)

// PrefetchRecipeBooks loads every marketplace's recipe book concurrently and
// returns them keyed by marketplace name. The first failure cancels the rest.
func (r *Registry) PrefetchRecipeBooks(ctx context.Context) (map[string]*recipe.Book, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	books := make(map[string]*recipe.Book, len(r.adapters))

	for name, adapter := range r.adapters {
		g.Go(func() error {
			book, err := adapter.LoadRecipeBook(ctx)
			if err != nil {
				return err
			}
			output.Debug("loaded recipe book", "marketplace", name, "packages", len(book.Packages))

			mu.Lock()
			books[name] = book
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("prefetching recipe books: %w", err)
	}
	return books, nil
}
