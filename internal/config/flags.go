package config

import (
	"flag"
	"os"
	"time"

	"github.com/picshare/readpath/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string           PostgreSQL DSN
//	-r string           Redis address (host:port); empty keeps the in-process cache
//	-page-size int      feed page size bound
//	-recent-comments n  comment previews per post
//	-session-ttl sec    session identity cache TTL, seconds
//	-login-ttl sec      login identity cache TTL, seconds
//	-post-ttl sec       per-post cache TTL, seconds
//	-feed-ttl sec       feed page cache TTL, seconds
//	-image-ttl sec      image cache TTL, seconds
//	-image-source s     "store" or "s3"
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integer seconds.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-d", "-r",
		"-page-size", "-recent-comments",
		"-session-ttl", "-login-ttl", "-post-ttl", "-feed-ttl", "-image-ttl",
		"-image-source",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")

	fs.IntVar(&config.PageSize, "page-size", config.PageSize, "feed page size bound")
	fs.IntVar(&config.RecentComments, "recent-comments", config.RecentComments, "comment previews per post")

	sessionTTL := fs.Int("session-ttl", int(config.SessionTTL.Seconds()), "session cache TTL (seconds)")
	loginTTL := fs.Int("login-ttl", int(config.LoginTTL.Seconds()), "login cache TTL (seconds)")
	postTTL := fs.Int("post-ttl", int(config.PostTTL.Seconds()), "per-post cache TTL (seconds)")
	feedTTL := fs.Int("feed-ttl", int(config.FeedTTL.Seconds()), "feed page cache TTL (seconds)")
	imageTTL := fs.Int("image-ttl", int(config.ImageTTL.Seconds()), "image cache TTL (seconds)")

	fs.StringVar(&config.ImageSource, "image-source", config.ImageSource, "image source (store or s3)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Second
	config.LoginTTL = time.Duration(*loginTTL) * time.Second
	config.PostTTL = time.Duration(*postTTL) * time.Second
	config.FeedTTL = time.Duration(*feedTTL) * time.Second
	config.ImageTTL = time.Duration(*imageTTL) * time.Second
}
