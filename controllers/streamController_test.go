package controllers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"facturation-backend/controllers"
	"facturation-backend/events"

	"github.com/gofiber/fiber/v2"
)

// closedFeed replays a fixed list of events and then ends the subscription,
// which lets the stream handler return.
type closedFeed struct {
	events []events.Event
}

func (f closedFeed) Publish(context.Context, events.Event) error { return nil }

func (f closedFeed) Subscribe(context.Context) (<-chan events.Event, func()) {
	ch := make(chan events.Event, len(f.events))
	for _, evt := range f.events {
		ch <- evt
	}
	close(ch)
	return ch, func() {}
}

func (f closedFeed) Close() error { return nil }

func TestStreamInvoices(t *testing.T) {
	app := newTestApp(t)
	events.Bus = closedFeed{events: []events.Event{events.Deleted("inv-1")}}

	heartbeat := controllers.StreamHeartbeat
	controllers.StreamHeartbeat = time.Hour
	t.Cleanup(func() { controllers.StreamHeartbeat = heartbeat })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/invoices/stream", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "text/event-stream" {
		t.Errorf("content type: %q", ct)
	}
	if cc := resp.Header.Get(fiber.HeaderCacheControl); cc != "no-cache" {
		t.Errorf("cache control: %q", cc)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	if !strings.HasPrefix(body, ": subscribed\n\n") {
		t.Errorf("first frame: %q", body)
	}
	if !strings.Contains(body, "event: invoice.deleted\ndata: {") || !strings.Contains(body, `"invoiceId":"inv-1"`) {
		t.Errorf("event frame missing: %q", body)
	}
}
