package bus

// Topic names a channel on the Bus and fixes its payload type.
// Topics can only be declared inside this package.
type Topic[P any] struct {
	name string
}

func newTopic[P any](name string) Topic[P] {
	return Topic[P]{name: name}
}

// Name returns the wire name of the topic.
func (t Topic[P]) Name() string {
	return t.name
}

// BannerVisibility reports the vertical space occupied by the promo banner.
type BannerVisibility struct {
	Visible bool `json:"visible" yaml:"visible"`
	Height  int  `json:"height" yaml:"height"`
}

// CollectionChanged summarizes a collection after a mutation.
type CollectionChanged struct {
	Items int   `json:"items"`
	Total int64 `json:"total"`
}

var (
	// BannerVisibilityChanged is published when the promo banner appears,
	// is dismissed, or changes height.
	BannerVisibilityChanged = newTopic[BannerVisibility]("banner-visibility-changed")

	// CartChanged is published after every successful cart mutation.
	CartChanged = newTopic[CollectionChanged]("cart-changed")

	// WishlistChanged is published after every successful wishlist mutation.
	WishlistChanged = newTopic[CollectionChanged]("wishlist-changed")
)

// TopicNames lists the wire names of every declared topic.
func TopicNames() []string {
	return []string{
		BannerVisibilityChanged.Name(),
		CartChanged.Name(),
		WishlistChanged.Name(),
	}
}
