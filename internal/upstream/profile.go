package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ademuri/lastfm-go/lastfm"
)

// ErrUnknownUser is reported when Last.fm has no profile for the name.
var ErrUnknownUser = errors.New("No user exists with that username.")

type userInfoGetter interface {
	GetInfo(args map[string]interface{}) (lastfm.UserGetInfo, error)
}

// ProfileChecker answers "does this user exist" through the lastfm-go SDK.
type ProfileChecker struct {
	users userInfoGetter
}

func NewProfileChecker(apiKey, secret string) *ProfileChecker {
	api := lastfm.New(apiKey, secret)
	api.SetUserAgent(userAgent)
	return &ProfileChecker{users: api.User}
}

// Check returns nil when the profile exists, ErrUnknownUser when Last.fm says
// it does not, and a wrapped error for anything else.
func (p *ProfileChecker) Check(ctx context.Context, user string) error {
	if strings.TrimSpace(user) == "" {
		return ErrUnknownUser
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := p.users.GetInfo(lastfm.P{"user": user})
	if err != nil {
		var lerr *lastfm.LastfmError
		if errors.As(err, &lerr) && lerr.Code == errCodeNotFound {
			return ErrUnknownUser
		}
		return fmt.Errorf("checking user %q: %w", user, err)
	}
	if info.Name == "" {
		return ErrUnknownUser
	}
	return nil
}
