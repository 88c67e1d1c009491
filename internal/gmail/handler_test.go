package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(f *fakeAPI) http.Handler {
	m := New(func(ctx context.Context, subject string) (API, error) {
		return f, nil
	}, "cabinet@example.com")
	return NewRouter(m)
}

func decodeItems(t *testing.T, body *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var items []map[string]any
	require.NoError(t, json.Unmarshal(body.Body.Bytes(), &items))
	return items
}

func TestRootEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(newFakeAPI()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]string{"app": "gmail server"}, got)
}

func TestLastFiveEndpoint(t *testing.T) {
	f := newFakeAPI()
	f.addMessage("m1", plainMail("Premier message", "Bonjour"))
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/last5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeItems(t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Premier message", items[0]["title"])
	assert.Equal(t, "Bonjour", items[0]["content"])

	// The listing shape has no attachment field.
	_, hasICS := items[0]["attachment_ics"]
	assert.False(t, hasICS)
}

func TestGetNewEmailEndpoint(t *testing.T) {
	f := newFakeAPI()
	f.addMessage("m1", plainMail("Nouveau", "Contenu"))
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/getNewEmail", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeItems(t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Nouveau", items[0]["title"])

	// attachment_ics is always present, null when no invite was attached.
	v, hasICS := items[0]["attachment_ics"]
	assert.True(t, hasICS)
	assert.Nil(t, v)

	require.Len(t, f.searches, 1)
	assert.Equal(t, "is:unread", f.searches[0].query)
}

func TestGetNewEmailWithInvite(t *testing.T) {
	f := newFakeAPI()
	f.addMessage("m1", inviteMail())
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/getNewEmail", strings.NewReader(`{"mark_as_read": true}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeItems(t, rec)
	require.Len(t, items, 1)

	invite, ok := items[0]["attachment_ics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Consultation Dr Marchal", invite["summary"])
	assert.Equal(t, "Europe/Brussels", invite["tzid"])
	assert.NotEmpty(t, invite["ics_file"])

	require.Len(t, f.modifies, 2)
	assert.Equal(t, []string{"UNREAD"}, f.modifies[1].remove)
}

func TestGetNewEmailRejectsBadBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/getNewEmail", strings.NewReader("not json"))
	newTestRouter(newFakeAPI()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got["detail"], "invalid request body")
}

func TestGetNewEmailUpstreamFailure(t *testing.T) {
	m := New(func(ctx context.Context, subject string) (API, error) {
		return nil, errors.New("delegation refused")
	}, "cabinet@example.com")
	router := NewRouter(m)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/getNewEmail", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got["detail"], "delegation refused")
}

func TestCreateDraftEmailDefaultContent(t *testing.T) {
	f := newFakeAPI()
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/createDraftEmail", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "r-1", got["id"])

	title, found, err := parseRaw(f.drafts["r-1"].Message.Raw)
	require.NoError(t, err)
	assert.Equal(t, "DRAFT#r-1  | Centre Médical Bruxelles-Schuman", title)
	assert.Contains(t, found.html, "nous allons répondre à votre email")
}

func TestCreateDraftEmailCustomBody(t *testing.T) {
	f := newFakeAPI()
	router := newTestRouter(f)

	body := `{"subject": "Question tarif", "content": "<p>Voici nos tarifs.</p>"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/createDraftEmail", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	title, found, err := parseRaw(f.drafts["r-1"].Message.Raw)
	require.NoError(t, err)
	assert.Equal(t, "DRAFT#r-1 Question tarif | Centre Médical Bruxelles-Schuman", title)
	assert.Equal(t, "<p>Voici nos tarifs.</p>", found.html)
}
