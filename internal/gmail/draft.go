package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"

	gmailapi "google.golang.org/api/gmail/v1"
)

// subjectSuffix is stamped on every draft the service creates.
const subjectSuffix = " | Centre Médical Bruxelles-Schuman"

// draftSubject appends the clinic suffix to the caller's subject. An
// empty subject still gets the suffix so drafts remain recognizable.
func draftSubject(subject string) string {
	if subject == "" {
		return subjectSuffix
	}
	return subject + subjectSuffix
}

// CreateDraft stores a reply draft, then renames it so the subject
// carries the draft id. The workflows key on the DRAFT# prefix to pair a
// draft with the thread it answers.
func (m *Mailbox) CreateDraft(ctx context.Context, subject, html, subjectEmail string) (*gmailapi.Draft, error) {
	if subjectEmail == "" {
		subjectEmail = m.DefaultEmail
	}
	api, err := m.dial(ctx, subjectEmail)
	if err != nil {
		return nil, err
	}

	full := draftSubject(subject)
	raw, err := rawMessage(full, html)
	if err != nil {
		return nil, err
	}
	draft, err := api.CreateDraft(ctx, &gmailapi.Draft{Message: &gmailapi.Message{Raw: raw}})
	if err != nil {
		return nil, fmt.Errorf("creating draft: %w", err)
	}

	prefixed, err := rawMessage(fmt.Sprintf("DRAFT#%s %s", draft.Id, full), html)
	if err != nil {
		return nil, err
	}
	updated, err := api.UpdateDraft(ctx, draft.Id, &gmailapi.Draft{Message: &gmailapi.Message{Raw: prefixed}})
	if err != nil {
		return nil, fmt.Errorf("renaming draft %s: %w", draft.Id, err)
	}
	return updated, nil
}

// rawMessage assembles a multipart/alternative message holding a single
// HTML part and returns it base64url encoded for the drafts API.
func rawMessage(subject, html string) (string, error) {
	var msg bytes.Buffer
	mw := multipart.NewWriter(&msg)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="utf-8"`},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return "", err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(html)); err != nil {
		return "", err
	}
	if err := qp.Close(); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(msg.Bytes()), nil
}
