package ports

import "context"

// Identity describes the signed-in Telegram account.
type Identity struct {
	ID        int64
	FirstName string
	Username  string
}

// ProfileClient updates the profile of the signed-in user account.
// The only profile field TeleBio touches is the bio ("about") text.
type ProfileClient interface {
	// Self returns the identity of the signed-in account.
	Self(ctx context.Context) (Identity, error)

	// UpdateBio sets the account's bio text.
	UpdateBio(ctx context.Context, text string) error
}
