/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package v1

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/krotik/common/stringutil"
	"github.com/krotik/ecal/engine"
	"github.com/krotik/ecal/scope"
	"github.com/krotik/tracestore/api"
	"github.com/krotik/tracestore/ecal"
	"github.com/krotik/tracestore/trace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
EndpointFeed is the feed endpoint URL (rooted). Handles websockets under feed/
*/
const EndpointFeed = api.APIRoot + APIv1 + "/feed/"

/*
Feed is the feed hub which publishes trace store events to websocket clients.
The feed endpoint is not available if no hub is set.
*/
var Feed *FeedHub

/*
feedUpgrader can upgrade normal requests to websocket communications
*/
var feedUpgrader = websocket.Upgrader{
	Subprotocols:    []string{"tracestore-feed"},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var metricFeedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tracestore_feed_messages_total",
	Help: "Number of event messages handled by the websocket feed.",
}, []string{"result"})

/*
FeedHub manages the websocket connections of the feed. Events are queued and
written to the connections by a separate goroutine.
*/
type FeedHub struct {
	mutex  *sync.RWMutex                        // Mutex for the connection map
	conns  map[string]*ecal.WebsocketConnection // Open connections by comm id
	max    int                                  // Maximum number of connections
	queue  chan []*trace.Event                  // Queue of events to publish
	closed bool                                 // Flag if the hub was closed
	done   chan struct{}                        // Closed once the queue is drained
}

/*
NewFeedHub creates a new feed hub and starts its publishing goroutine.
*/
func NewFeedHub(maxConnections int, queueSize int) *FeedHub {
	fh := &FeedHub{&sync.RWMutex{}, make(map[string]*ecal.WebsocketConnection),
		maxConnections, make(chan []*trace.Event, queueSize), false, make(chan struct{})}

	go fh.run()

	return fh
}

/*
Publish queues events for all feed clients. Events are dropped if the queue
is full. Publish never blocks and can be used as a trace store event listener.
*/
func (fh *FeedHub) Publish(events []*trace.Event) {
	fh.mutex.RLock()
	defer fh.mutex.RUnlock()

	if fh.closed {
		return
	}

	select {
	case fh.queue <- events:
	default:
		metricFeedMessages.WithLabelValues("dropped").Add(float64(len(events)))
	}
}

/*
Connections returns the number of open feed connections.
*/
func (fh *FeedHub) Connections() int {
	fh.mutex.RLock()
	defer fh.mutex.RUnlock()

	return len(fh.conns)
}

/*
Close closes all connections and stops the publishing goroutine.
*/
func (fh *FeedHub) Close() {
	fh.mutex.Lock()

	if fh.closed {
		fh.mutex.Unlock()
		return
	}

	fh.closed = true
	close(fh.queue)

	conns := fh.conns
	fh.conns = make(map[string]*ecal.WebsocketConnection)

	fh.mutex.Unlock()

	<-fh.done

	for _, wc := range conns {
		wc.Close("Feed closed")
	}
}

/*
run writes queued events to all connections.
*/
func (fh *FeedHub) run() {
	defer close(fh.done)

	for events := range fh.queue {
		fh.mutex.RLock()

		conns := make([]*ecal.WebsocketConnection, 0, len(fh.conns))
		for _, wc := range fh.conns {
			conns = append(conns, wc)
		}

		fh.mutex.RUnlock()

		for _, wc := range conns {
			if err := wc.WriteMessage(ecal.MessageTypeEvent, events); err != nil {
				metricFeedMessages.WithLabelValues("failed").Add(float64(len(events)))
				fh.deregister(wc)
				continue
			}

			metricFeedMessages.WithLabelValues("sent").Add(float64(len(events)))
		}
	}
}

/*
register adds a connection to the hub.
*/
func (fh *FeedHub) register(wc *ecal.WebsocketConnection) error {
	fh.mutex.Lock()
	defer fh.mutex.Unlock()

	if fh.closed {
		return fmt.Errorf("Feed is closed")
	} else if len(fh.conns) >= fh.max {
		return fmt.Errorf("Too many feed connections (maximum is %v)", fh.max)
	}

	fh.conns[wc.CommID] = wc

	return nil
}

/*
deregister removes a connection from the hub.
*/
func (fh *FeedHub) deregister(wc *ecal.WebsocketConnection) {
	fh.mutex.Lock()
	defer fh.mutex.Unlock()

	delete(fh.conns, wc.CommID)
}

/*
FeedEndpointInst creates a new endpoint handler.
*/
func FeedEndpointInst() api.RestEndpointHandler {
	return &feedEndpoint{}
}

/*
Handler object for feed operations.
*/
type feedEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET handles a feed websocket. Clients receive all trace store events.
Messages from clients are forwarded to ECAL if a scripting interpreter is
running. A message with a true close value closes the connection.
*/
func (fe *feedEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	if Feed == nil {
		http.Error(w, "Resource was not found", http.StatusNotFound)
		return
	}

	// Update the incomming connection to a websocket
	// If the upgrade fails then the client gets an HTTP error response.

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {

		// We give details here on what went wrong

		w.Write([]byte(err.Error()))
		return
	}

	wc := ecal.NewWebsocketConnection(uuid.NewString(), conn)

	if err := Feed.register(wc); err != nil {
		wc.Close(err.Error())
		return
	}

	defer Feed.deregister(wc)

	wc.Init()

	if api.SI != nil {
		api.SI.RegisterECALSock(wc)
		defer api.SI.DeregisterECALSock(wc)
	}

	for {
		var fatal bool
		var data map[string]interface{}

		// Read websocket message

		if data, fatal, err = wc.ReadData(); err != nil {
			if fatal {
				break
			}

			wc.WriteData(map[string]interface{}{
				"error": err.Error(),
			})

			continue
		}

		if val, ok := data["close"]; ok && stringutil.IsTrueValue(fmt.Sprint(val)) {
			wc.Close("")
			break
		}

		if api.SI != nil {
			event := engine.NewEvent("WebSocketRequest", []string{"web", "sock", "data"},
				map[interface{}]interface{}{
					"commID": wc.CommID,
					"data":   scope.ConvertJSONToECALObject(data),
				})

			if _, err = api.SI.Interpreter.RuntimeProvider.Processor.AddEvent(event, nil); err != nil {
				api.SI.Interpreter.RuntimeProvider.Logger.LogDebug(err)
			}
		}
	}
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (fe *feedEndpoint) SwaggerDefs(s map[string]interface{}) {

	// No swagger definitions for this endpoint as it only handles websocket requests
}
