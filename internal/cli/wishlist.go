package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/aggregate"
	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/entity"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/toast"
)

// NewWishlistCommand creates the wishlist command group.
func NewWishlistCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Inspect and edit the wishlist",
	}

	var (
		name  string
		price int64
	)
	item := func(id string) entity.WishlistItem {
		return entity.WishlistItem{ID: id, Name: name, Price: price}
	}

	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Save a product; saving it twice is a no-op",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWishlistMutation(cmd, rootOpts, "wishlist.add", args[0], func(ctx context.Context, w *store.Wishlist) (bool, *bool) {
				return w.Add(ctx, item(args[0])), nil
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Save a product, or unsave it if already saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWishlistMutation(cmd, rootOpts, "wishlist.toggle", args[0], func(ctx context.Context, w *store.Wishlist) (bool, *bool) {
				before := w.Has(args[0])
				saved := w.Toggle(ctx, item(args[0]))
				return saved != before, &saved
			})
		},
	}
	for _, c := range []*cobra.Command{add, toggle} {
		c.Flags().StringVar(&name, "name", "", "display name")
		c.Flags().Int64Var(&price, "price", 0, "price in minor units")
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Unsave a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWishlistMutation(cmd, rootOpts, "wishlist.remove", args[0], func(ctx context.Context, w *store.Wishlist) (bool, *bool) {
				return w.Remove(ctx, args[0]), nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWishlistMutation(cmd, rootOpts, "wishlist.clear", "", func(ctx context.Context, w *store.Wishlist) (bool, *bool) {
				w.Clear(ctx)
				return true, nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show saved products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.close()
			w := store.NewWishlist(cmd.Context(), s.adapter, s.storeOptions()...)
			defer w.Close()
			return s.out.Success(newWishlistView(w.All()))
		},
	}

	cmd.AddCommand(add, toggle, remove, clearCmd, list)
	return cmd
}

func runWishlistMutation(cmd *cobra.Command, opts *RootOptions, op, id string, fn func(context.Context, *store.Wishlist) (bool, *bool)) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	defer bus.Subscribe(s.bus, bus.WishlistChanged, func(v bus.CollectionChanged) {
		s.toasts.Push(fmt.Sprintf("Wishlist updated: %d saved", v.Items), toast.WithLevel(toast.LevelInfo))
	})()

	w := store.NewWishlist(cmd.Context(), s.adapter, s.storeOptions()...)
	defer w.Close()

	changed, saved := fn(cmd.Context(), w)
	if err := s.rejection(); err != nil {
		return err
	}

	items := w.All()
	return s.out.Success(MutationView{
		Op:      op,
		ID:      id,
		Changed: changed,
		Saved:   saved,
		Count:   aggregate.TotalItemCount(items),
		Total:   aggregate.TotalPrice(items),
		Toasts:  s.liveToasts(),
	})
}
