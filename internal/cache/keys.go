package cache

import "strconv"

// Key prefixes partition the cache into invalidation classes. The
// InvalidationCoordinator relies on these prefixes, so all key construction
// goes through the builders below.
const (
	PrefixSession = "session:"
	PrefixLogin   = "login:"
	PrefixPost    = "post:"
	PrefixFeed    = "feed:"
	PrefixImage   = "image:"
)

// SessionKey caches a resolved session token → identity.
func SessionKey(token string) string {
	return PrefixSession + token
}

// LoginKey caches an account name → user row lookup on the login path.
func LoginKey(accountName string) string {
	return PrefixLogin + accountName
}

// PostKey caches a single EnrichedPost.
func PostKey(postID int64) string {
	return PrefixPost + strconv.FormatInt(postID, 10)
}

// FeedPageKey caches the ordered post-id window of one feed page. The page
// size is part of the key so differently sized windows never alias.
func FeedPageKey(pageSize int, cursor string) string {
	return PrefixFeed + strconv.Itoa(pageSize) + ":" + cursor
}

// ImageKey caches the immutable image payload of a post.
func ImageKey(imageID int64) string {
	return PrefixImage + strconv.FormatInt(imageID, 10)
}
