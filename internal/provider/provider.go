package provider

import "context"

// UserInfo is the account status the remote service reports. LastCheckin
// is the raw timestamp string; empty means the account never checked in.
type UserInfo struct {
	ID           string  `json:"id"`
	TokenBalance float64 `json:"dipTokenBalance"`
	LastCheckin  string  `json:"dipInitMineTime"`
}

type CheckinResult struct {
	Award float64 `json:"tokensToAward"`
}

type Provider interface {
	Name() string

	SignIn(ctx context.Context, email, password string) (string, error)
	UserInfo(ctx context.Context, token string) (UserInfo, error)
	CheckIn(ctx context.Context, token, userID string) (CheckinResult, error)
}
