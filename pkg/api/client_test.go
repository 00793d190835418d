package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/errors"
)

type discardLogger struct{}

func (discardLogger) Debug(string, string, map[string]interface{}) {}
func (discardLogger) Info(string, string, map[string]interface{})  {}
func (discardLogger) Warn(string, string, map[string]interface{})  {}
func (discardLogger) Error(string, string, map[string]interface{}) {}
func (discardLogger) Fatal(string, string, map[string]interface{}) {}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Options{
		APIKey:      "test-key",
		TenantOrgID: "org-1",
		BaseURL:     server.URL,
		Logger:      discardLogger{},
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return client
}

func writeResult(w http.ResponseWriter, result interface{}) {
	resp := map[string]interface{}{
		"status": "SUCCESS",
		"data":   map[string]interface{}{"result": result},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Options{})
	if err == nil {
		t.Fatal("New() error = nil, want validation error")
	}
	if _, ok := err.(*errors.StructuredError); !ok {
		t.Errorf("New() returned %T, want *errors.StructuredError", err)
	}
}

func TestCreateEncodingSendsHeadersAndUnwrapsEnvelope(t *testing.T) {
	var gotPath, gotAPIKey, gotOrg, gotRequestID, gotContentType string
	var gotBody Encoding

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-Api-Key")
		gotOrg = r.Header.Get("X-Tenant-Org-Id")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		writeResult(w, Encoding{ID: "enc-1", Name: gotBody.Name})
	}))

	created, err := client.CreateEncoding(context.Background(), Encoding{Name: "my encoding"})
	if err != nil {
		t.Fatalf("CreateEncoding() error = %v", err)
	}

	if gotPath != "/encoding/encodings" {
		t.Errorf("path = %q, want %q", gotPath, "/encoding/encodings")
	}
	if gotAPIKey != "test-key" {
		t.Errorf("X-Api-Key = %q, want %q", gotAPIKey, "test-key")
	}
	if gotOrg != "org-1" {
		t.Errorf("X-Tenant-Org-Id = %q, want %q", gotOrg, "org-1")
	}
	if gotRequestID == "" {
		t.Error("X-Request-Id should not be empty")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotContentType, "application/json")
	}
	if gotBody.Name != "my encoding" {
		t.Errorf("request body name = %q, want %q", gotBody.Name, "my encoding")
	}
	if created.ID != "enc-1" {
		t.Errorf("created ID = %q, want %q", created.ID, "enc-1")
	}
}

func TestRequestIDsAreFresh(t *testing.T) {
	var ids []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-Id"))
		writeResult(w, Encoding{ID: "enc"})
	}))

	for i := 0; i < 2; i++ {
		if _, err := client.CreateEncoding(context.Background(), Encoding{Name: "e"}); err != nil {
			t.Fatalf("CreateEncoding() error = %v", err)
		}
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Errorf("request IDs not fresh: %v", ids)
	}
}

func TestErrorResponseBecomesStructuredError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{
			"status": "ERROR",
			"data": {
				"code": 1001,
				"message": "validation failed",
				"messages": [{"type": "ERROR", "text": "host must not be empty"}]
			}
		}`))
	}))

	_, err := client.CreateHTTPInput(context.Background(), HTTPInput{})
	if err == nil {
		t.Fatal("CreateHTTPInput() error = nil, want error")
	}
	sErr, ok := err.(*errors.StructuredError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.StructuredError", err)
	}
	if sErr.Type != errors.APIError {
		t.Errorf("type = %q, want %q", sErr.Type, errors.APIError)
	}
	if sErr.Code != errors.ErrAPIStatusRejected {
		t.Errorf("code = %d, want %d", sErr.Code, errors.ErrAPIStatusRejected)
	}
	for _, want := range []string{"validation failed", "host must not be empty"} {
		if !strings.Contains(sErr.Details, want) {
			t.Errorf("details %q does not contain %q", sErr.Details, want)
		}
	}
}

func TestEncodingStatusUsesGET(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		writeResult(w, Task{Status: StatusRunning, Progress: 42})
	}))

	task, err := client.EncodingStatus(context.Background(), "enc-1")
	if err != nil {
		t.Fatalf("EncodingStatus() error = %v", err)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
	if gotPath != "/encoding/encodings/enc-1/status" {
		t.Errorf("path = %q", gotPath)
	}
	if task.Status != StatusRunning || task.Progress != 42 {
		t.Errorf("task = %+v", task)
	}
}

func TestStartEncodingIgnoresResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/encoding/encodings/enc-1/start" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "SUCCESS", "data": {}}`))
	}))

	if err := client.StartEncoding(context.Background(), "enc-1"); err != nil {
		t.Fatalf("StartEncoding() error = %v", err)
	}
}

func TestMissingResultIsAnError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "SUCCESS", "data": {}}`))
	}))

	_, err := client.CreateEncoding(context.Background(), Encoding{Name: "e"})
	if err == nil {
		t.Fatal("CreateEncoding() error = nil, want missing-resource error")
	}
	sErr, ok := err.(*errors.StructuredError)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if sErr.Code != errors.ErrAPIResourceMissing {
		t.Errorf("code = %d, want %d", sErr.Code, errors.ErrAPIResourceMissing)
	}
}

func TestTaskErrorMessages(t *testing.T) {
	task := &Task{Messages: []Message{
		{Type: MessageTypeError, Text: "bad input"},
		{Type: MessageTypeInfo, Text: "ignored"},
		{Type: MessageTypeError, Text: "second failure"},
	}}
	got := task.ErrorMessages()
	want := []string{"bad input", "second failure"}
	if len(got) != len(want) {
		t.Fatalf("ErrorMessages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ErrorMessages()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	var nilTask *Task
	if nilTask.ErrorMessages() != nil {
		t.Error("nil task should yield nil messages")
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusCreated, false},
		{StatusQueued, false},
		{StatusRunning, false},
		{StatusFinished, true},
		{StatusError, true},
		{StatusCanceled, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
