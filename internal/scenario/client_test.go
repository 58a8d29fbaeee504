package scenario

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleRules = `[
	{"id":"scn-aaaa0001","deviceTypeId":"dtp-lamp0001","weatherCondition":"cloudiness","conditionValue":"75","operator":">","newStatus":"ON"},
	{"id":"scn-aaaa0002","deviceTypeId":"dtp-lamp0001","weatherCondition":"sunset","conditionValue":"-","operator":">","newStatus":"ON"}
]`

func TestClient_RulesForDeviceType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("deviceTypeId"); got != "dtp-lamp0001" {
			t.Errorf("deviceTypeId = %q, want dtp-lamp0001", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Authorization = %q, want Bearer token-123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleRules)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	rules, err := client.RulesForDeviceType(context.Background(), "dtp-lamp0001", "token-123")
	if err != nil {
		t.Fatalf("fetching rules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].WeatherCondition != ConditionCloudiness || rules[0].Operator != OperatorGreater {
		t.Fatalf("unexpected first rule: %+v", rules[0])
	}
}

func TestClient_ForwardsFullHeaderValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Authorization = %q, want Bearer token-123", got)
		}
		w.Write([]byte("[]")) //nolint:errcheck // test server
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	if _, err := client.RulesForDeviceType(context.Background(), "dtp-lamp0001", "Bearer token-123"); err != nil {
		t.Fatalf("fetching rules: %v", err)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	_, err := client.RulesForDeviceType(context.Background(), "dtp-lamp0001", "bad-token")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	_, err := client.RulesForDeviceType(context.Background(), "dtp-lamp0001", "token")
	if !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{not json")) //nolint:errcheck // test server
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	_, err := client.RulesForDeviceType(context.Background(), "dtp-lamp0001", "token")
	if !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
}
