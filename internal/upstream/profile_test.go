package upstream

import (
	"context"
	"errors"
	"testing"

	"github.com/ademuri/lastfm-go/lastfm"
)

type fakeUsers struct {
	info lastfm.UserGetInfo
	err  error
	args map[string]interface{}
}

func (f *fakeUsers) GetInfo(args map[string]interface{}) (lastfm.UserGetInfo, error) {
	f.args = args
	return f.info, f.err
}

func TestProfileCheckerKnownUser(t *testing.T) {
	users := &fakeUsers{}
	users.info.Name = "rj"
	checker := &ProfileChecker{users: users}

	if err := checker.Check(context.Background(), "rj"); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if users.args["user"] != "rj" {
		t.Errorf("user arg = %v", users.args["user"])
	}
}

func TestProfileCheckerUnknownUser(t *testing.T) {
	checker := &ProfileChecker{users: &fakeUsers{err: &lastfm.LastfmError{Code: 6, Message: "User not found"}}}

	err := checker.Check(context.Background(), "nobody")
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestProfileCheckerBlankUser(t *testing.T) {
	checker := &ProfileChecker{users: &fakeUsers{}}
	if err := checker.Check(context.Background(), "  "); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestProfileCheckerOtherErrors(t *testing.T) {
	checker := &ProfileChecker{users: &fakeUsers{err: errors.New("boom")}}

	err := checker.Check(context.Background(), "rj")
	if err == nil || errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}
