package bus

import "time"

// Well-known topics.
const (
	// TopicInput carries input.Event payloads from platform goroutines to the
	// engine frame loop.
	TopicInput = "input"
	// TopicScene carries scene structure notifications.
	TopicScene = "scene"
	// TopicEngine carries frame loop notifications.
	TopicEngine = "engine"
)

// EventBus is a thread-safe, in-process pub/sub bus.
//
// - Handlers subscribe by topic and Event.Type().
// - Delivery is synchronous, in subscription order, on the publisher goroutine.
// - Handler errors are joined and returned from PublishToTopic.
// - Metrics are collected only while at least one observer is registered.
type EventBus interface {
	// SubscribeTopic registers a handler for eventType within topic. The
	// wildcard type "*" receives every event of the topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// PublishToTopic publishes to a specific topic.
	PublishToTopic(topic string, event Event) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a snapshot of accumulated metrics.
	GetMetrics() EventBusMetrics
	// GetTopics returns a snapshot list of known topics.
	GetTopics() []TopicInfo
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries; it should return quickly.
type EventBusObserver interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration)
}

// EventBusMetrics is updated only while at least one observer is registered.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}

// TopicInfo provides a minimal snapshot about a topic.
type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
