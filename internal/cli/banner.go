package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/banner"
)

// NewBannerCommand creates the banner command group.
func NewBannerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Inspect and control the promo banner",
	}

	var height int
	show := &cobra.Command{
		Use:   "show",
		Short: "Record the banner's measured height (no-op once dismissed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBanner(cmd, rootOpts, func(b *banner.Banner) bool {
				return b.Show(cmd.Context(), height)
			})
		},
	}
	show.Flags().IntVar(&height, "height", 0, "banner height in pixels")

	dismiss := &cobra.Command{
		Use:   "dismiss",
		Short: "Dismiss the banner for good",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBanner(cmd, rootOpts, func(b *banner.Banner) bool {
				return b.Dismiss(cmd.Context())
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forget a previous dismissal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBanner(cmd, rootOpts, func(b *banner.Banner) bool {
				was := b.State().Dismissed
				b.Reset(cmd.Context())
				return was
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the banner state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBanner(cmd, rootOpts, func(*banner.Banner) bool { return false })
		},
	}

	cmd.AddCommand(show, dismiss, reset, status)
	return cmd
}

func runBanner(cmd *cobra.Command, opts *RootOptions, fn func(*banner.Banner) bool) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	var nav banner.NavBar
	nav.Mount(s.bus)
	defer nav.Unmount()

	b := banner.New(cmd.Context(), s.adapter, banner.WithBus(s.bus), banner.WithLogger(s.logger))
	changed := fn(b)
	s.out.VerboseLog("nav offset: %dpx", nav.Offset())
	return s.out.Success(newBannerView(b.State(), changed))
}
