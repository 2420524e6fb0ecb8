// internal/voice/token.go

// Package voice issues join credentials for the third-party voice media
// layer. The contract is a pure credential-issuance function: given a channel
// and a uid, return a signed token, or a test-mode grant when no signing
// secret is configured. Voice is best-effort and never blocks gameplay.
package voice

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued voice token stays valid.
const DefaultTTL = 24 * time.Hour

// Service signs voice channel grants with the configured app credential.
type Service struct {
	appID  string
	secret string
	ttl    time.Duration
}

// New builds a token service. An empty secret puts the service in test mode:
// grants carry a nil token and TestMode=true.
func New(appID, secret string) *Service {
	return &Service{appID: appID, secret: secret, ttl: DefaultTTL}
}

// Grant is the response handed back to the client for joining a voice
// channel. Token is null in test mode.
type Grant struct {
	Token       *string `json:"token"`
	AppID       string  `json:"appId"`
	ChannelName string  `json:"channelName"`
	UID         string  `json:"uid"`
	TestMode    bool    `json:"testMode"`
	ExpiresAt   int64   `json:"expiresAt,omitempty"`
}

// IssueToken signs a grant for the channel/uid pair. Missing parameters and a
// missing app id are errors; a missing secret degrades to a test-mode grant.
func (s *Service) IssueToken(channelName, uid string) (Grant, error) {
	if channelName == "" || uid == "" {
		return Grant{}, fmt.Errorf("channelName and uid are required")
	}
	if s.appID == "" {
		return Grant{}, fmt.Errorf("voice app id not configured")
	}
	if s.secret == "" {
		return Grant{
			AppID:       s.appID,
			ChannelName: channelName,
			UID:         uid,
			TestMode:    true,
		}, nil
	}

	expiresAt := time.Now().Add(s.ttl)
	claims := jwt.MapClaims{
		"iss":     s.appID,
		"sub":     uid,
		"channel": channelName,
		"iat":     time.Now().Unix(),
		"exp":     expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return Grant{}, fmt.Errorf("sign voice token: %w", err)
	}
	return Grant{
		Token:       &token,
		AppID:       s.appID,
		ChannelName: channelName,
		UID:         uid,
		ExpiresAt:   expiresAt.Unix(),
	}, nil
}
