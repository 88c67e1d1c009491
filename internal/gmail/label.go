package gmail

import (
	"context"
	"fmt"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
)

// LabelName is the intake label the workflows file handled mail under.
const LabelName = "AI"

// Colors given to the intake label when the service has to create it.
const (
	labelTextColor = "#ffffff"
	labelBGColor   = "#a479e2"
)

// EnsureLabel returns the id of the named label, creating it with the
// service colors when the mailbox does not have it yet. Gmail label
// names are case-insensitive, so the lookup is too.
func (m *Mailbox) EnsureLabel(ctx context.Context, subjectEmail, name string) (string, error) {
	if subjectEmail == "" {
		subjectEmail = m.DefaultEmail
	}
	if name == "" {
		name = LabelName
	}
	api, err := m.dial(ctx, subjectEmail)
	if err != nil {
		return "", err
	}
	labels, err := api.Labels(ctx)
	if err != nil {
		return "", fmt.Errorf("listing labels: %w", err)
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, name) {
			return l.Id, nil
		}
	}
	created, err := api.CreateLabel(ctx, &gmailapi.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
		Color: &gmailapi.LabelColor{
			TextColor:       labelTextColor,
			BackgroundColor: labelBGColor,
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating label %q: %w", name, err)
	}
	return created.Id, nil
}
