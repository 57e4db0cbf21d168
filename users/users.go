package users

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RoleType is the authorization role of a user
type RoleType string

const (
	RoleUser  RoleType = "user"  // Default role, may only touch what it owns
	RoleAdmin RoleType = "admin" // May manage every user and post
)

func (r RoleType) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts free text into a RoleType
func ParseRole(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is the local record of a person who signed in through the identity provider.
// ExternalID is the provider subject and never changes; Role is never written by sign-in.
type User struct {
	ExternalID  string    `json:"externalId"`           // Provider subject ("sub"), primary key
	DisplayName string    `json:"displayName"`          // Refreshed on every sign-in
	Email       string    `json:"email"`                // Refreshed on every sign-in
	PictureURL  string    `json:"pictureUrl,omitempty"` // Refreshed on every sign-in
	Role        RoleType  `json:"role"`                 // Set at creation, changed only by an admin
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Profile is the provider-supplied part of a user, overwritten on each sign-in
type Profile struct {
	DisplayName string
	Email       string
	PictureURL  string
}

// ProfileUpdate is a partial edit made through the API. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	PictureURL  *string `json:"pictureUrl,omitempty"`
}

const (
	maxDisplayNameLength = 100
	maxPictureURLLength  = 2048
)

func (p ProfileUpdate) Validate() error {
	if p.DisplayName == nil && p.PictureURL == nil {
		return fmt.Errorf("nothing to update")
	}
	if p.DisplayName != nil {
		name := strings.TrimSpace(*p.DisplayName)
		if name == "" {
			return fmt.Errorf("displayName must not be empty")
		}
		if len(name) > maxDisplayNameLength {
			return fmt.Errorf("displayName must be at most %d characters", maxDisplayNameLength)
		}
	}
	if p.PictureURL != nil {
		if err := validatePictureURL(*p.PictureURL); err != nil {
			return err
		}
	}
	return nil
}

// validatePictureURL accepts an absolute http(s) URL, or "" to clear the picture
func validatePictureURL(raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > maxPictureURLLength {
		return fmt.Errorf("pictureUrl must be at most %d characters", maxPictureURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("pictureUrl must be an http or https URL")
	}
	return nil
}

type UsersListResponse struct {
	Users  []*User `json:"users"`
	Total  int     `json:"total"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}
