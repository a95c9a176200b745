package users

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrReferral wraps the reason a referral code cannot be redeemed.
	ErrReferral = errors.New("referral rejected")
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Blocked      bool      `json:"blocked"`
	ReferralCode string    `json:"referral_code"`
	ReferredBy   string    `json:"referred_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Page struct {
	Users       []User `json:"users"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	TotalUsers  int    `json:"total_users"`
	Limit       int    `json:"limit"`
}

type Referral struct {
	Code        string `json:"code"`
	Redeemed    bool   `json:"redeemed"`
	RewardCents int64  `json:"reward_cents"`
	OfferActive bool   `json:"offer_active"`
}
