package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
)

func TestNewNilWhenEmpty(t *testing.T) {
	if c := New(""); c != nil {
		t.Error("expected nil client when webhook URL is empty")
	}
	if c := New("   "); c != nil {
		t.Error("expected nil client when webhook URL is blank")
	}
}

func TestSendNilClient(t *testing.T) {
	var c *Client
	if err := c.Send(context.Background(), sampleRequest()); err != nil {
		t.Errorf("expected nil error for nil client, got %v", err)
	}
	if c.Enabled() {
		t.Error("nil client should not be enabled")
	}
}

func TestSendSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}

		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if _, ok := raw["attachments"]; !ok {
			t.Error("expected attachments in payload")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := New(ts.URL, WithClock(func() time.Time { return fixedNow }))
	if err := c.Send(context.Background(), sampleRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected exactly 1 call, got %d", n)
	}
}

func TestSendNon200IsFailure(t *testing.T) {
	for _, status := range []int{
		http.StatusCreated,
		http.StatusNoContent,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	} {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(status)
		}))

		err := New(ts.URL).Send(context.Background(), sampleRequest())
		ts.Close()

		var nerr *NotificationError
		if !errors.As(err, &nerr) {
			t.Errorf("status %d: expected NotificationError, got %v", status, err)
			continue
		}
		if nerr.HTTPStatus != status {
			t.Errorf("status %d: error carries %d", status, nerr.HTTPStatus)
		}
		if n := atomic.LoadInt32(&calls); n != 1 {
			t.Errorf("status %d: expected no retries, got %d calls", status, n)
		}
	}
}

func TestSendServiceUnavailableBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer ts.Close()

	err := New(ts.URL).Send(context.Background(), sampleRequest())
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if got := err.Error(); got != "webhook returned HTTP 503: maintenance" {
		t.Errorf("unexpected error text: %q", got)
	}
}

func TestSendTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	err := New(url).Send(context.Background(), sampleRequest())
	var nerr *NotificationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotificationError, got %v", err)
	}
	if nerr.HTTPStatus != 0 {
		t.Errorf("expected no HTTP status for transport failure, got %d", nerr.HTTPStatus)
	}
}

func TestSendTimeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer ts.Close()
	defer close(block)

	err := New(ts.URL, WithTimeout(50*time.Millisecond)).Send(context.Background(), sampleRequest())
	var nerr *NotificationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotificationError on timeout, got %v", err)
	}
}

func TestSendRejectsNegativeCounts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	req := sampleRequest()
	req.Counts.High = -1
	err := New(ts.URL).Send(context.Background(), req)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if !errors.Is(err, models.ErrNegativeCount) {
		t.Errorf("expected ErrNegativeCount in chain, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("expected no network call, got %d", n)
	}
}
