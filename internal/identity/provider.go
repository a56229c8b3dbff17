package identity

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/EasterCompany/dex-meetup-service/config"
	"github.com/EasterCompany/dex-meetup-service/types"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("google sign-in is not configured")

// UserInfoFunc resolves the signed-in Google account for a token.
type UserInfoFunc func(ctx context.Context, src oauth2.TokenSource) (types.User, error)

// Provider runs the Google OAuth2 web flow and turns a successful consent
// into a session.
type Provider struct {
	oauth    *oauth2.Config
	sessions *SessionStore
	userInfo UserInfoFunc
}

// NewProvider returns a Provider. The endpoint defaults to Google; tests can
// swap it with WithEndpoint.
func NewProvider(cfg config.OAuthConfig, sessions *SessionStore) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				oauth2api.UserinfoEmailScope,
				oauth2api.UserinfoProfileScope,
			},
		},
		sessions: sessions,
		userInfo: GoogleUserInfo,
	}
}

// WithEndpoint overrides the OAuth2 endpoint and the user lookup.
func (p *Provider) WithEndpoint(ep oauth2.Endpoint, userInfo UserInfoFunc) *Provider {
	p.oauth.Endpoint = ep
	if userInfo != nil {
		p.userInfo = userInfo
	}
	return p
}

// Sessions exposes the session store backing the provider.
func (p *Provider) Sessions() *SessionStore {
	return p.sessions
}

// LoginURL issues a state and returns the consent page URL.
func (p *Provider) LoginURL(ctx context.Context) (string, error) {
	if p.oauth.ClientID == "" {
		return "", ErrNotConfigured
	}
	state, err := p.sessions.NewState(ctx)
	if err != nil {
		return "", fmt.Errorf("issue state: %w", err)
	}
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Callback validates state, exchanges code and opens a session for the
// Google account that consented.
func (p *Provider) Callback(ctx context.Context, state, code string) (*types.Session, error) {
	if err := p.sessions.ConsumeState(ctx, state); err != nil {
		return nil, err
	}
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	user, err := p.userInfo(ctx, p.oauth.TokenSource(ctx, tok))
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	sess, err := p.sessions.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	log.Printf("Identity: %s signed in", user.UID)
	return sess, nil
}

// SignOut deletes the session.
func (p *Provider) SignOut(ctx context.Context, sessionID string) error {
	return p.sessions.Delete(ctx, sessionID)
}

// GoogleUserInfo reads the account profile from the OAuth2 userinfo API.
func GoogleUserInfo(ctx context.Context, src oauth2.TokenSource) (types.User, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return types.User{}, err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return types.User{}, err
	}
	return types.User{
		UID:         info.Id,
		DisplayName: info.Name,
		Email:       info.Email,
		PhotoURL:    info.Picture,
	}, nil
}
