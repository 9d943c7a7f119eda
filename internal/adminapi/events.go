package adminapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"

	"github.com/AvalonLA/atelier/internal/events"
	"github.com/AvalonLA/atelier/internal/webserver"
)

var sseJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// registerEventRoutes registers the change notification stream
func registerEventRoutes() {
	webserver.ApiGET("/store/events", streamStoreEvents)
}

var watchedTables = []string{
	events.TableProducts,
	events.TableOrders,
	events.TableConsultations,
	events.TableConfig,
}

// subscribeAll registers the handler on every table, rolling back the
// subscriptions already made when one fails. The returned release func
// detaches everything that was registered.
func subscribeAll(bus *events.Bus, tables []string, fn func(events.Change)) (func(), error) {
	done := make([]string, 0, len(tables))
	release := func() {
		for _, t := range done {
			_ = bus.Unsubscribe(t, fn)
		}
	}
	for _, table := range tables {
		if err := bus.SubscribeChanges(table, fn); err != nil {
			release()
			return nil, err
		}
		done = append(done, table)
	}
	return release, nil
}

// streamStoreEvents pushes row change notifications to the console as
// server-sent events. The console re-fetches the affected list on each
// message instead of patching state incrementally. Subscriptions are
// made before the stream headers go out, so a failure is still a plain
// JSON error response.
func streamStoreEvents(c echo.Context) error {
	changes := make(chan events.Change, 16)
	handler := func(ch events.Change) {
		select {
		case changes <- ch:
		default:
			// slow consumer, drop the notification
		}
	}

	release, err := subscribeAll(GetApp(c).Bus(), watchedTables, handler)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SUBSCRIBE_FAILED", "Failed to subscribe", err.Error())
	}
	defer release()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch := <-changes:
			body, err := sseJSON.Marshal(ch)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", body); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
