package gabb

import (
	"context"
	"net/http"
)

// UserProfile is the parent account's own profile.
type UserProfile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// UserProfile fetches the parent account profile.
func (c *Client) UserProfile(ctx context.Context) (*UserProfile, error) {
	var env envelope[UserProfile]
	if err := c.do(ctx, http.MethodGet, "user/profile", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
