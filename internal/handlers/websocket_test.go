package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"thermostat_gateway/internal/models"
)

func TestWebSocketStreamsSnapshots(t *testing.T) {
	svc, m := newMockServices()
	m.registry.devices = []models.Device{{
		ID: "u1", Serial: "S1", CurrentTempC: 21.3, TempScale: "C", Available: true,
	}}

	srv := httptest.NewServer(newTestRouter(svc, ""))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?interval=1s"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var envelope struct {
		Type string `json:"type"`
		Data struct {
			Connected bool `json:"connected"`
			Devices   []struct {
				ID                 string `json:"id"`
				CurrentTempDisplay string `json:"current_temp_display"`
			} `json:"devices"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&envelope); err != nil {
		t.Fatalf("reading initial frame: %v", err)
	}

	if envelope.Type != "devices" {
		t.Fatalf("expected devices envelope, got %q", envelope.Type)
	}
	if !envelope.Data.Connected {
		t.Fatal("expected connected flag in frame")
	}
	if len(envelope.Data.Devices) != 1 || envelope.Data.Devices[0].ID != "u1" {
		t.Fatalf("unexpected devices payload: %+v", envelope.Data.Devices)
	}
	if envelope.Data.Devices[0].CurrentTempDisplay != "21.5°" {
		t.Fatalf("expected half-degree celsius display, got %q", envelope.Data.Devices[0].CurrentTempDisplay)
	}
}
