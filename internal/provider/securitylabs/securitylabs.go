package securitylabs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/k2wGG/Check-bot/internal/config"
	"github.com/k2wGG/Check-bot/internal/logbus"
	"github.com/k2wGG/Check-bot/internal/provider"
)

// Client talks to the check-in API. Failed calls are retried a fixed
// number of times with a fixed wait before the error surfaces.
type Client struct {
	cfg config.ProviderConfig
	bus *logbus.Bus
	ua  string
}

func New(cfg config.ProviderConfig, bus *logbus.Bus) *Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = randomUserAgent()
	}
	return &Client{cfg: cfg, bus: bus, ua: ua}
}

func (c *Client) Name() string { return "securitylabs" }

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResp struct {
	AccessToken string `json:"accessToken"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var resp signInResp
	r, err := c.newClient("").R().
		SetContext(ctx).
		SetBody(signInReq{Email: email, Password: password}).
		SetResult(&resp).
		Post("/api/v1/auth/signin-user")
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", fmt.Errorf("sign-in failed: %s", r.Status())
	}
	if resp.AccessToken == "" {
		return "", errors.New("sign-in returned no access token")
	}
	return resp.AccessToken, nil
}

func (c *Client) UserInfo(ctx context.Context, token string) (provider.UserInfo, error) {
	var info provider.UserInfo
	r, err := c.newClient(token).R().
		SetContext(ctx).
		SetResult(&info).
		Get("/api/v1/users")
	if err != nil {
		return provider.UserInfo{}, err
	}
	if r.IsError() {
		return provider.UserInfo{}, fmt.Errorf("fetch user info failed: %s", r.Status())
	}
	return info, nil
}

func (c *Client) CheckIn(ctx context.Context, token, userID string) (provider.CheckinResult, error) {
	var result provider.CheckinResult
	r, err := c.newClient(token).R().
		SetContext(ctx).
		SetResult(&result).
		SetPathParam("userId", userID).
		Get("/api/v1/users/earn/{userId}")
	if err != nil {
		return provider.CheckinResult{}, err
	}
	if r.IsError() {
		return provider.CheckinResult{}, fmt.Errorf("check-in failed: %s", r.Status())
	}
	return result, nil
}

func (c *Client) newClient(token string) *resty.Client {
	client := resty.New().
		SetBaseURL(c.cfg.BaseURL).
		SetTimeout(c.cfg.Timeout()).
		SetRetryCount(c.cfg.Retry.Count).
		SetRetryWaitTime(c.cfg.Retry.Wait()).
		SetRetryMaxWaitTime(c.cfg.Retry.Wait()).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			if r == nil {
				return true
			}
			return r.StatusCode() >= 500
		})

	client.SetHeaders(map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "ru-RU,ru;q=0.9",
		"Content-Type":    "application/json",
		"Referer":         c.referer(),
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-origin",
		"User-Agent":      c.ua,
	})
	if token != "" {
		client.SetHeader("Authorization", "Bearer "+token)
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.bus != nil {
			c.bus.Debug("http request", map[string]any{
				"method": req.Method,
				"url":    req.URL,
			})
		}
		return nil
	})

	return client
}

func (c *Client) referer() string {
	ref := c.cfg.BaseURL + "/?from=extension&type=signin"
	if c.cfg.ReferralCode != "" {
		ref += "&referralCode=" + c.cfg.ReferralCode
	}
	return ref
}
