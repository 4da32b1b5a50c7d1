package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"facturation-backend/events"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StreamHeartbeat is how often an idle stream sends a comment line; a failed
// write is how a disconnected client is detected.
var StreamHeartbeat = 15 * time.Second

// StreamInvoices pushes invoice changes as Server-Sent Events.
func StreamInvoices(c *fiber.Ctx) error {
	if events.Bus == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "realtime updates are disabled")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancelCtx := context.WithCancel(context.Background())
	sub, unsubscribe := events.Bus.Subscribe(ctx)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancelCtx()
		defer unsubscribe()

		// first frame tells the client the subscription is live
		if _, err := fmt.Fprint(w, ": subscribed\n\n"); err != nil || w.Flush() != nil {
			return
		}

		ticker := time.NewTicker(StreamHeartbeat)
		defer ticker.Stop()
		for {
			select {
			case evt, ok := <-sub:
				if !ok {
					return
				}
				if err := writeEvent(w, evt); err != nil {
					zap.L().Debug("invoice stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil || w.Flush() != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, evt events.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data); err != nil {
		return err
	}
	return w.Flush()
}
