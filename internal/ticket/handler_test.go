package ticket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, webhookURL string) http.Handler {
	t.Helper()
	store := NewStore(t.TempDir())
	forwarder := &Forwarder{URL: webhookURL, Client: &http.Client{Timeout: 5 * time.Second}}
	return NewRouter(store, forwarder)
}

func TestRootEndpoint(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"Hello": "World"}, body)
}

func TestGenerateThenViewTicket(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	payload := `[{"output": {
		"merchant": {"name": "Corner Cafe"},
		"items_list": [{"item": "Coffee", "price": 3.5, "category": "Drinks"}],
		"total_price": {"subtotal_before_tax": 3.5, "total_after_tax": 3.5},
		"payment": {"total_paid_amount": 3.5}
	}}]`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generateTicket", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "HTML ticket generated successfully!")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewTicket", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Corner Cafe")
}

func TestViewTicketBeforeGenerate(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewTicket", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ticket not found. Please generate a ticket first.")
}

func TestGenerateTicketRejectsBadPayload(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generateTicket", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadFormPage(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploadTicket", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `enctype="multipart/form-data"`)
	assert.NotContains(t, rec.Body.String(), "File uploaded successfully")
}

func TestUploadTicketRejectsNonJPEG(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	body, boundary := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploadTicket", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid file type. Only JPG images are accepted.")
}

func TestUploadTicketForwardsToWebhook(t *testing.T) {
	type upload struct {
		filename    string
		contentType string
		content     []byte
	}
	received := make(chan upload, 1)

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		received <- upload{
			filename:    header.Filename,
			contentType: header.Header.Get("Content-Type"),
			content:     content,
		}
	}))
	defer webhook.Close()

	router := newTestRouter(t, webhook.URL)

	scan := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	body, boundary := multipartFile(t, "scan.jpg", "image/jpeg", scan)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploadTicket", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "File uploaded successfully and sent to the webhook!")

	select {
	case got := <-received:
		assert.Equal(t, "scan.jpg", got.filename)
		assert.Equal(t, "image/jpeg", got.contentType)
		assert.Equal(t, scan, got.content)
	case <-time.After(3 * time.Second):
		t.Fatal("webhook never received the upload")
	}
}

func multipartFile(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.Boundary()
}
