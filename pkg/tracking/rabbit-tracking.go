package tracking

import (
	"net/http"

	"github.com/wbpulse/wbpulse/pkg/catalog"
	"github.com/wbpulse/wbpulse/pkg/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitTracking publishes dashboard usage events on the tracking
// topic. All Track methods are fire-and-forget from the caller's point
// of view, a broken broker only surfaces in the returned error.
type RabbitTracking struct {
	connection *amqp.Connection
	prefix     string
}

func NewRabbitTracking(url, prefix string) (*RabbitTracking, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := messaging.DefineTopic(ch, prefix, messaging.TrackingTopic); err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitTracking{connection: conn, prefix: prefix}, nil
}

func (rt *RabbitTracking) Close() error {
	return rt.connection.Close()
}

func (rt *RabbitTracking) send(data any) error {
	return messaging.SendChange(rt.connection, rt.prefix, messaging.TrackingTopic, data)
}

type BaseEvent struct {
	SessionId uint32 `json:"session_id"`
	Event     uint16 `json:"event"`
}

type SessionEvent struct {
	*BaseEvent
	UserAgent string `json:"user_agent,omitempty"`
	Ip        string `json:"ip,omitempty"`
	Language  string `json:"language,omitempty"`
}

func (rt *RabbitTracking) TrackSession(sessionId uint32, r *http.Request) error {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return rt.send(SessionEvent{
		BaseEvent: &BaseEvent{Event: 0, SessionId: sessionId},
		UserAgent: r.UserAgent(),
		Ip:        ip,
		Language:  r.Header.Get("Accept-Language"),
	})
}

type ListingEvent struct {
	*BaseEvent
	catalog.Criteria
	Sort string `json:"sort,omitempty"`
}

func (rt *RabbitTracking) TrackListing(sessionId uint32, criteria catalog.Criteria, sort string) error {
	return rt.send(ListingEvent{
		BaseEvent: &BaseEvent{Event: 1, SessionId: sessionId},
		Criteria:  criteria,
		Sort:      sort,
	})
}

type ChartEvent struct {
	*BaseEvent
	Chart string `json:"chart"`
}

func (rt *RabbitTracking) TrackChart(sessionId uint32, chart string) error {
	return rt.send(ChartEvent{
		BaseEvent: &BaseEvent{Event: 2, SessionId: sessionId},
		Chart:     chart,
	})
}

type GenerationEvent struct {
	*BaseEvent
	Query    string `json:"query"`
	Quantity int    `json:"quantity"`
}

func (rt *RabbitTracking) TrackGeneration(sessionId uint32, query string, quantity int) error {
	return rt.send(GenerationEvent{
		BaseEvent: &BaseEvent{Event: 3, SessionId: sessionId},
		Query:     query,
		Quantity:  quantity,
	})
}
