// internal/pkg/pulse/client_test.go
package pulse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackbox-gh/storefront-backend/internal/config"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{}
	cfg.Pulse.APIKey = "test-key"
	cfg.Pulse.BaseURL = srv.URL
	cfg.Pulse.TextModel = "text-model"
	cfg.Pulse.VisionModel = "vision-model"
	cfg.Pulse.RequestTimeout = 2 * time.Second

	return NewClient(cfg, log), srv
}

func reply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"role":  "model",
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestDiagnoseTextModel(t *testing.T) {
	var gotPath string
	var gotReq generateRequest

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		reply(t, w, "Battery swollen. Low complexity replacement.")
	}))

	verdict := client.Diagnose(context.Background(), "Apple MacBook Pro", "will not hold charge", "")

	assert.Equal(t, "Battery swollen. Low complexity replacement.", verdict)
	assert.Equal(t, "/models/text-model:generateContent", gotPath)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "Apple MacBook Pro")
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "will not hold charge")
}

func TestDiagnoseImageUsesVisionModel(t *testing.T) {
	var gotPath string
	var gotReq generateRequest

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		reply(t, w, "Cracked digitizer.")
	}))

	verdict := client.Diagnose(context.Background(), "Phone", "screen", "data:image/jpeg;base64,AAAA")

	assert.Equal(t, "Cracked digitizer.", verdict)
	assert.Equal(t, "/models/vision-model:generateContent", gotPath)
	require.Len(t, gotReq.Contents[0].Parts, 2)
	require.NotNil(t, gotReq.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "AAAA", gotReq.Contents[0].Parts[1].InlineData.Data)
	assert.Equal(t, "image/jpeg", gotReq.Contents[0].Parts[1].InlineData.MimeType)
}

func TestDiagnoseFallsBackOnServerError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	verdict := client.Diagnose(context.Background(), "Phone", "screen", "")
	assert.Equal(t, DiagnosisFallback, verdict)
}

func TestDiagnoseFallsBackWithoutAPIKey(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	client.config.Pulse.APIKey = ""

	verdict := client.Diagnose(context.Background(), "Phone", "screen", "")
	assert.Equal(t, DiagnosisFallback, verdict)
}

func TestDiagnoseDefaultOnEmptyCandidates(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}}))
	}))

	verdict := client.Diagnose(context.Background(), "Phone", "screen", "")
	assert.Equal(t, DiagnosisDefault, verdict)
}

func TestConverseReplaysHistory(t *testing.T) {
	var gotReq generateRequest

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		reply(t, w, "Screen repairs start same day.")
	}))

	history := []Message{
		{Role: "user", Text: "Do you fix laptops?"},
		{Role: "model", Text: "Yes. All brands."},
	}
	answer := client.Converse(context.Background(), history, "How fast for screens?")

	assert.Equal(t, "Screen repairs start same day.", answer)
	require.Len(t, gotReq.Contents, 3)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	assert.Equal(t, "model", gotReq.Contents[1].Role)
	assert.Equal(t, "How fast for screens?", gotReq.Contents[2].Parts[0].Text)
}

func TestConverseFallsBackOnError(t *testing.T) {
	client, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	answer := client.Converse(context.Background(), nil, "hello")
	assert.Equal(t, ChatFallback, answer)
}

func TestStripDataURL(t *testing.T) {
	assert.Equal(t, "AAAA", stripDataURL("data:image/jpeg;base64,AAAA"))
	assert.Equal(t, "AAAA", stripDataURL("AAAA"))
}
