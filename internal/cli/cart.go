package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/aggregate"
	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/entity"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/toast"
)

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the cart",
	}

	var (
		name     string
		price    int64
		quantity int
		plan     string
	)
	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a product, merging with an existing line",
		Long: `Add a product to the cart. Adding an id that is already in the cart
increases its quantity and refreshes its price and plan.

Prices are in minor currency units (1990 = 19.90).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := entity.CartItem{ID: args[0], Name: name, Price: price, Quantity: quantity, Plan: entity.Plan(plan)}
			return runCartMutation(cmd, rootOpts, "cart.add", args[0], func(ctx context.Context, c *store.Cart) bool {
				return c.Add(ctx, item)
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().Int64Var(&price, "price", 0, "unit price in minor units")
	add.Flags().IntVar(&quantity, "qty", 1, "quantity to add")
	add.Flags().StringVar(&plan, "plan", string(entity.PlanOneTime), "purchase plan (one-time|subscription)")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartMutation(cmd, rootOpts, "cart.remove", args[0], func(ctx context.Context, c *store.Cart) bool {
				return c.Remove(ctx, args[0])
			})
		},
	}

	setQty := &cobra.Command{
		Use:   "set-qty <id> <quantity>",
		Short: "Set a line's quantity; 0 or less removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]), err)
			}
			return runCartMutation(cmd, rootOpts, "cart.setQuantity", args[0], func(ctx context.Context, c *store.Cart) bool {
				return c.SetQuantity(ctx, args[0], q)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartMutation(cmd, rootOpts, "cart.clear", "", func(ctx context.Context, c *store.Cart) bool {
				c.Clear(ctx)
				return true
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart with totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.close()
			c := store.NewCart(cmd.Context(), s.adapter, s.storeOptions()...)
			defer c.Close()
			return s.out.Success(newCartView(c.All()))
		},
	}

	cmd.AddCommand(add, remove, setQty, clearCmd, list)
	return cmd
}

func runCartMutation(cmd *cobra.Command, opts *RootOptions, op, id string, fn func(context.Context, *store.Cart) bool) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	defer bus.Subscribe(s.bus, bus.CartChanged, func(v bus.CollectionChanged) {
		s.toasts.Push(fmt.Sprintf("Cart updated: %d items, total %s", v.Items, formatPrice(v.Total)),
			toast.WithLevel(toast.LevelSuccess))
	})()

	c := store.NewCart(cmd.Context(), s.adapter, s.storeOptions()...)
	defer c.Close()

	changed := fn(cmd.Context(), c)
	if err := s.rejection(); err != nil {
		return err
	}

	items := c.All()
	return s.out.Success(MutationView{
		Op:      op,
		ID:      id,
		Changed: changed,
		Count:   aggregate.TotalItemCount(items),
		Total:   aggregate.TotalPrice(items),
		Toasts:  s.liveToasts(),
	})
}
