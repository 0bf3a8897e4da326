package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"tagme/pkg/errs"
	"tagme/pkg/records"
)

// Status classifies a user account. It layers on top of the profile
// data and never destroys it: every status wraps the same UserData.
type Status string

const (
	StatusNormal Status = "normal"
	StatusAdmin  Status = "admin"
	StatusBanned Status = "banned"
)

// UnmarshalJSON rejects unknown status tags so corrupted or
// schema-incompatible bytes surface as decode failures.
func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch Status(v) {
	case StatusNormal, StatusAdmin, StatusBanned:
		*s = Status(v)
		return nil
	}
	return fmt.Errorf("unknown user status %q", v)
}

// UserData is the profile payload shared by every status. The profile
// fields mirror what the external identity provider returns; Topics is
// maintained by topic creation and deletion.
type UserData struct {
	Topics      []records.TopicName `json:"topics"`
	AccessToken string              `json:"access_token"`
	Login       string              `json:"login"`
	Name        string              `json:"name"`
	AvatarURL   string              `json:"avatar_url"`
	Bio         string              `json:"bio"`
}

// RemoveTopic drops name from the user's topic list if present.
func (d *UserData) RemoveTopic(name records.TopicName) {
	out := d.Topics[:0]
	for _, t := range d.Topics {
		if t != name {
			out = append(out, t)
		}
	}
	d.Topics = out
}

// User is the persisted user record: a status tag over the shared
// profile payload.
type User struct {
	Status Status   `json:"status"`
	Data   UserData `json:"data"`
}

func (User) RecordPrefix() []byte { return []byte("@") }

// NewUser returns a fresh normal user with an empty profile.
func NewUser() User {
	return User{Status: StatusNormal, Data: UserData{Topics: []records.TopicName{}}}
}

func (u *User) IsAdmin() bool  { return u.Status == StatusAdmin }
func (u *User) IsBanned() bool { return u.Status == StatusBanned }

// Active fails closed when the account is banned.
func (u *User) Active() error {
	if u.IsBanned() {
		return errs.Forbidden("attempted to request an invalid user")
	}
	return nil
}

// Authorized succeeds iff the caller owns the resource or holds admin
// status. The receiver is the caller's own record.
func (u *User) Authorized(caller, owner records.UserID) error {
	if caller == owner || u.IsAdmin() {
		return nil
	}
	return errs.Forbidden("access to the resource is denied")
}

// Verified is the single gate used before any mutation of an owned
// resource: the account must not be banned and the caller must be the
// owner or an admin.
func (u *User) Verified(caller, owner records.UserID) error {
	if err := u.Active(); err != nil {
		return err
	}
	return u.Authorized(caller, owner)
}

// UserInfo is the public projection of a user record. It never carries
// the stored access token.
type UserInfo struct {
	ID        string              `json:"id"`
	Topics    []records.TopicName `json:"topics"`
	Login     string              `json:"login"`
	Name      string              `json:"name"`
	AvatarURL string              `json:"avatar_url"`
	Bio       string              `json:"bio"`
	Status    string              `json:"status,omitempty"`
}

// Info projects the record for API responses. Normal status is
// omitted.
func (u *User) Info(id records.UserID) UserInfo {
	status := ""
	if u.Status != StatusNormal {
		status = string(u.Status)
	}
	topics := u.Data.Topics
	if topics == nil {
		topics = []records.TopicName{}
	}
	return UserInfo{
		ID:        strconv.FormatUint(uint64(id), 10),
		Topics:    topics,
		Login:     u.Data.Login,
		Name:      u.Data.Name,
		AvatarURL: u.Data.AvatarURL,
		Bio:       u.Data.Bio,
		Status:    status,
	}
}
