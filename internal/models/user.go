// Package models holds the store-of-record row types and the derived
// read-model types assembled by the read path.
package models

import "time"

// User is a row of the users table. Immutable except for DelFlg and
// Authority, which are administrative store-of-record fields.
type User struct {
	ID          int64     `msgpack:"id"`
	AccountName string    `msgpack:"account_name"`
	Passhash    string    `msgpack:"passhash"`
	Authority   int       `msgpack:"authority"`
	DelFlg      int       `msgpack:"del_flg"`
	CreatedAt   time.Time `msgpack:"created_at"`
}

// Active reports whether the account may authenticate and appear in feeds.
func (u *User) Active() bool {
	return u.DelFlg == 0
}

// Admin reports whether the account has moderator authority.
func (u *User) Admin() bool {
	return u.Authority != 0
}

// UserSummary is the author projection embedded in enriched feed items.
type UserSummary struct {
	ID          int64  `msgpack:"id"`
	AccountName string `msgpack:"account_name"`
}

// Summary returns the feed projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, AccountName: u.AccountName}
}
