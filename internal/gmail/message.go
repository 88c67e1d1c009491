package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
	gmailapi "google.golang.org/api/gmail/v1"
)

// Correspondent is the mailbox the intake workflows watch.
const Correspondent = "secretaire@ophtalmologiste.be"

const latestQuery = "from: " + Correspondent

// Defaults applied to fetch requests that leave fields unset.
const (
	defaultLabelID = "Label_15"
	defaultQuery   = "is:unread"
	defaultMax     = 5
)

// Email is one fetched message reduced to what the workflows consume.
type Email struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// EmailWithInvite adds the calendar invite found among the MIME parts.
// AttachmentICS stays null when the message carries none.
type EmailWithInvite struct {
	Email
	AttachmentICS *Invite `json:"attachment_ics"`
}

// FetchParams mirrors the getNewEmail request body. Zero values fall
// back to the service defaults.
type FetchParams struct {
	SubjectEmail string `json:"subject_email"`
	LabelID      string `json:"ai_label_id"`
	Query        string `json:"query"`
	MaxResults   int64  `json:"maxResult"`
	MarkAsRead   bool   `json:"mark_as_read"`
}

func (p *FetchParams) applyDefaults(defaultEmail string) {
	if p.SubjectEmail == "" {
		p.SubjectEmail = defaultEmail
	}
	if p.LabelID == "" {
		p.LabelID = defaultLabelID
	}
	if p.Query == "" {
		p.Query = defaultQuery
	}
	if p.MaxResults <= 0 {
		p.MaxResults = defaultMax
	}
}

// Latest returns the five most recent messages from the correspondent.
func (m *Mailbox) Latest(ctx context.Context, subjectEmail string) ([]Email, error) {
	api, err := m.dial(ctx, subjectEmail)
	if err != nil {
		return nil, err
	}
	refs, err := api.Search(ctx, latestQuery, defaultMax)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	emails := make([]Email, 0, len(refs))
	for _, ref := range refs {
		msg, err := api.Message(ctx, ref.Id)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", ref.Id, err)
		}
		title, found, err := parseRaw(msg.Raw)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", ref.Id, err)
		}
		emails = append(emails, Email{Title: title, Content: found.body()})
	}
	return emails, nil
}

// Fetch pulls the messages matching the query, stamps the intake label
// on each one, and optionally clears UNREAD.
func (m *Mailbox) Fetch(ctx context.Context, p FetchParams) ([]EmailWithInvite, error) {
	p.applyDefaults(m.DefaultEmail)
	api, err := m.dial(ctx, p.SubjectEmail)
	if err != nil {
		return nil, err
	}
	refs, err := api.Search(ctx, p.Query, p.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	emails := make([]EmailWithInvite, 0, len(refs))
	for _, ref := range refs {
		msg, err := api.Message(ctx, ref.Id)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", ref.Id, err)
		}
		title, found, err := parseRaw(msg.Raw)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", ref.Id, err)
		}
		item := EmailWithInvite{Email: Email{Title: title, Content: found.body()}}
		if found.ics != "" {
			item.AttachmentICS = ParseICS(found.ics)
		}
		emails = append(emails, item)

		if !slices.Contains(msg.LabelIds, p.LabelID) {
			mod := &gmailapi.ModifyMessageRequest{AddLabelIds: []string{p.LabelID}}
			if err := api.Modify(ctx, ref.Id, mod); err != nil {
				return nil, fmt.Errorf("labeling message %s: %w", ref.Id, err)
			}
		}
		if p.MarkAsRead {
			mod := &gmailapi.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
			if err := api.Modify(ctx, ref.Id, mod); err != nil {
				return nil, fmt.Errorf("marking message %s read: %w", ref.Id, err)
			}
		}
	}
	return emails, nil
}

// content collects the interesting part bodies of one message.
type content struct {
	text string
	html string
	ics  string
}

// body prefers the plain text part, falling back to HTML.
func (c content) body() string {
	if c.text != "" {
		return c.text
	}
	return c.html
}

// parseRaw decodes a raw-format Gmail message into its subject and part
// bodies.
func parseRaw(raw string) (string, content, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
	if err != nil {
		return "", content{}, fmt.Errorf("decoding raw payload: %w", err)
	}
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return "", content{}, fmt.Errorf("parsing message: %w", err)
	}
	title := decodeWords(msg.Header.Get("Subject"))
	var found content
	err = walk(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, &found)
	return title, found, err
}

// walk descends through the MIME structure recording the first body of
// each interesting type.
func walk(contentType, transferEncoding string, body io.Reader, found *content) error {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unlabeled entities are read as plain text.
		mediaType, params = "text/plain", nil
	}
	if strings.HasPrefix(mediaType, "multipart/") {
		if params["boundary"] == "" {
			return nil
		}
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading mime part: %w", err)
			}
			err = walk(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part, found)
			if err != nil {
				return err
			}
		}
	}

	switch mediaType {
	case "text/plain", "text/html", "text/calendar":
	default:
		return nil
	}
	data, err := decodeBody(body, transferEncoding)
	if err != nil {
		return fmt.Errorf("decoding %s part: %w", mediaType, err)
	}
	text := decodeCharset(data, params["charset"])
	switch mediaType {
	case "text/plain":
		if found.text == "" {
			found.text = text
		}
	case "text/html":
		if found.html == "" {
			found.html = text
		}
	case "text/calendar":
		if found.ics == "" {
			found.ics = text
		}
	}
	return nil
}

// decodeBody undoes the content transfer encoding. Multipart parts
// arrive with quoted-printable already stripped, so that branch only
// fires for top-level bodies.
func decodeBody(r io.Reader, transferEncoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	return io.ReadAll(r)
}

// decodeWords flattens RFC 2047 encoded words in a header value.
func decodeWords(s string) string {
	dec := mime.WordDecoder{CharsetReader: charsetReader}
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

func charsetReader(label string, r io.Reader) (io.Reader, error) {
	if enc := lookupEncoding(label); enc != nil {
		return transform.NewReader(r, enc.NewDecoder()), nil
	}
	return r, nil
}

// decodeCharset converts a part body to UTF-8, replacing anything the
// declared charset cannot represent.
func decodeCharset(data []byte, label string) string {
	enc := lookupEncoding(label)
	if enc == nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return string(out)
}

// lookupEncoding resolves a MIME charset label. A nil result means the
// data can be used as UTF-8 directly.
func lookupEncoding(label string) encoding.Encoding {
	if label == "" {
		return nil
	}
	enc, err := ianaindex.MIME.Encoding(label)
	if err != nil || enc == nil {
		return nil
	}
	return enc
}
