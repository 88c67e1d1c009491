package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// tokenFile is the provisioned user OAuth token inside the secrets dir.
const tokenFile = "token.json"

// Credentials holds the two credential files the descriptor mounts: the
// service-account key used for delegated API access and the OAuth client
// used to refresh a provisioned user token.
type Credentials struct {
	dir     string
	service *jwt.Config
	oauth   *oauth2.Config
}

// LoadCredentials reads and parses both credential files. An absent or
// malformed file is an error; callers are expected to treat it as fatal.
func LoadCredentials(dir, serviceFile, authFile string) (*Credentials, error) {
	key, err := os.ReadFile(serviceFile)
	if err != nil {
		return nil, fmt.Errorf("service account key: %w", err)
	}
	service, err := google.JWTConfigFromJSON(key, gmailapi.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("service account key %s: %w", serviceFile, err)
	}
	secrets, err := os.ReadFile(authFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client secrets: %w", err)
	}
	oauth, err := google.ConfigFromJSON(secrets, gmailapi.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("oauth client secrets %s: %w", authFile, err)
	}
	return &Credentials{dir: dir, service: service, oauth: oauth}, nil
}

// Delegate builds a Gmail client acting as subject through domain-wide
// delegation.
func (c *Credentials) Delegate(ctx context.Context, subject string) (*gmailapi.Service, error) {
	if subject == "" {
		return nil, errors.New("no subject mailbox: set DEFAULT_EMAIL or pass subject_email")
	}
	cfg := *c.service
	cfg.Subject = subject
	return gmailapi.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
}

// TokenPath is where the user OAuth token lives.
func (c *Credentials) TokenPath() string {
	return filepath.Join(c.dir, tokenFile)
}

// HasToken reports whether a user token has been provisioned.
func (c *Credentials) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// AuthorizedUser loads the provisioned user token, refreshes it, and
// writes back the rotated copy. There is no interactive consent flow
// here; token.json has to be produced out of band and copied into the
// secrets dir.
func (c *Credentials) AuthorizedUser(ctx context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(c.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("user token: %w (run the consent flow and copy token.json into the secrets dir)", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("user token %s: %w", c.TokenPath(), err)
	}
	fresh, err := c.oauth.TokenSource(ctx, &tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing user token: %w (provision a new token.json if the grant was revoked)", err)
	}
	if fresh.AccessToken != tok.AccessToken {
		if err := c.saveToken(fresh); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}

func (c *Credentials) saveToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.TokenPath(), data, 0o600); err != nil {
		return fmt.Errorf("saving refreshed token: %w", err)
	}
	return nil
}
