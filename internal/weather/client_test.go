package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const samplePayload = `{
	"coord": {"lat": 51.5074, "lon": -0.1278},
	"weather": [
		{"id": 500, "main": "Rain", "description": "light rain"},
		{"id": 701, "main": "Mist", "description": "mist"}
	],
	"main": {"temp": 18.5, "humidity": 82},
	"wind": {"speed": 4.2},
	"clouds": {"all": 90},
	"sys": {"sunrise": 1717214400, "sunset": 1717273800}
}`

func TestClient_Snapshot(t *testing.T) {
	var gotAuth, gotLat, gotLon string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotLat = r.URL.Query().Get("lat")
		gotLon = r.URL.Query().Get("lon")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload)) //nolint:errcheck // test server
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	snapshot, err := client.Snapshot(context.Background(), 51.5074, -0.1278, "Bearer tok-123")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if gotLat != "51.5074" || gotLon != "-0.1278" {
		t.Errorf("query lat/lon = %q/%q, want 51.5074/-0.1278", gotLat, gotLon)
	}

	if snapshot.Temperature != 18.5 {
		t.Errorf("Temperature = %v, want 18.5", snapshot.Temperature)
	}
	if snapshot.Humidity != 82 {
		t.Errorf("Humidity = %v, want 82", snapshot.Humidity)
	}
	if snapshot.WindSpeed != 4.2 {
		t.Errorf("WindSpeed = %v, want 4.2", snapshot.WindSpeed)
	}
	if snapshot.Cloudiness != 90 {
		t.Errorf("Cloudiness = %v, want 90", snapshot.Cloudiness)
	}
	if len(snapshot.WeatherIDs) != 2 || snapshot.WeatherIDs[0] != 500 || snapshot.WeatherIDs[1] != 701 {
		t.Errorf("WeatherIDs = %v, want [500 701]", snapshot.WeatherIDs)
	}
	if len(snapshot.WeatherDescriptions) != 2 || snapshot.WeatherDescriptions[0] != "light rain" {
		t.Errorf("WeatherDescriptions = %v, want [light rain mist]", snapshot.WeatherDescriptions)
	}
	if snapshot.Sunrise.Unix() != 1717214400 {
		t.Errorf("Sunrise = %v, want epoch 1717214400", snapshot.Sunrise)
	}
}

func TestClient_Snapshot_CredentialWithoutPrefix(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(samplePayload)) //nolint:errcheck // test server
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Snapshot(context.Background(), 0, 0, "tok-123"); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestClient_Snapshot_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Snapshot(context.Background(), 0, 0, "bad")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Snapshot() error = %v, want ErrUnauthorized", err)
	}
}

func TestClient_Snapshot_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Snapshot(context.Background(), 0, 0, "tok")
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("Snapshot() error = %v, want ErrFetchFailed", err)
	}
}

func TestClient_Snapshot_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json")) //nolint:errcheck // test server
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Snapshot(context.Background(), 0, 0, "tok")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Snapshot() error = %v, want ErrMalformedResponse", err)
	}
}
