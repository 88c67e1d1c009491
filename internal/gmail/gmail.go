// Package gmail integrates the stack with a Google Workspace mailbox.
// Every operation runs through a service account with domain-wide
// delegation, so each call names the mailbox it acts on.
package gmail

import (
	"context"

	gmailapi "google.golang.org/api/gmail/v1"
)

// API is the slice of the Gmail API the mailbox operations use.
type API interface {
	Labels(ctx context.Context) ([]*gmailapi.Label, error)
	CreateLabel(ctx context.Context, label *gmailapi.Label) (*gmailapi.Label, error)
	Search(ctx context.Context, query string, max int64) ([]*gmailapi.Message, error)
	Message(ctx context.Context, id string) (*gmailapi.Message, error)
	Modify(ctx context.Context, id string, mod *gmailapi.ModifyMessageRequest) error
	CreateDraft(ctx context.Context, draft *gmailapi.Draft) (*gmailapi.Draft, error)
	UpdateDraft(ctx context.Context, id string, draft *gmailapi.Draft) (*gmailapi.Draft, error)
}

// DialFunc opens an API session delegated to the given mailbox.
type DialFunc func(ctx context.Context, subject string) (API, error)

// Mailbox bundles delegated API access with the service defaults.
type Mailbox struct {
	// DefaultEmail is the mailbox acted on when a request names none.
	DefaultEmail string

	dial DialFunc
}

// New builds a Mailbox on top of an arbitrary dialer.
func New(dial DialFunc, defaultEmail string) *Mailbox {
	return &Mailbox{DefaultEmail: defaultEmail, dial: dial}
}

// Connect builds a Mailbox backed by the live Gmail API.
func Connect(creds *Credentials, defaultEmail string) *Mailbox {
	return New(func(ctx context.Context, subject string) (API, error) {
		svc, err := creds.Delegate(ctx, subject)
		if err != nil {
			return nil, err
		}
		return &googleAPI{svc: svc}, nil
	}, defaultEmail)
}

// googleAPI adapts the generated client to the API interface. All calls
// run as "me", the delegated subject.
type googleAPI struct {
	svc *gmailapi.Service
}

func (g *googleAPI) Labels(ctx context.Context) ([]*gmailapi.Label, error) {
	res, err := g.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return res.Labels, nil
}

func (g *googleAPI) CreateLabel(ctx context.Context, label *gmailapi.Label) (*gmailapi.Label, error) {
	return g.svc.Users.Labels.Create("me", label).Context(ctx).Do()
}

func (g *googleAPI) Search(ctx context.Context, query string, max int64) ([]*gmailapi.Message, error) {
	res, err := g.svc.Users.Messages.List("me").Q(query).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (g *googleAPI) Message(ctx context.Context, id string) (*gmailapi.Message, error) {
	return g.svc.Users.Messages.Get("me", id).Format("raw").Context(ctx).Do()
}

func (g *googleAPI) Modify(ctx context.Context, id string, mod *gmailapi.ModifyMessageRequest) error {
	_, err := g.svc.Users.Messages.Modify("me", id, mod).Context(ctx).Do()
	return err
}

func (g *googleAPI) CreateDraft(ctx context.Context, draft *gmailapi.Draft) (*gmailapi.Draft, error) {
	return g.svc.Users.Drafts.Create("me", draft).Context(ctx).Do()
}

func (g *googleAPI) UpdateDraft(ctx context.Context, id string, draft *gmailapi.Draft) (*gmailapi.Draft, error) {
	return g.svc.Users.Drafts.Update("me", id, draft).Context(ctx).Do()
}
