package messaging

import (
	"encoding/json"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CatalogPublisher announces catalog replacements. It plugs into the
// store as its ChangeHandler.
type CatalogPublisher struct {
	mu         sync.Mutex
	connection *amqp.Connection
	prefix     string
	pendingJob CatalogUpdated
}

func NewCatalogPublisher(url, prefix string) (*CatalogPublisher, error) {
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
	if err := DefineTopic(ch, prefix, CatalogUpdatedTopic); err != nil {
		conn.Close()
		return nil, err
	}
	return &CatalogPublisher{connection: conn, prefix: prefix}, nil
}

// SetJob attaches generation metadata to the next announcement.
func (p *CatalogPublisher) SetJob(jobId, query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingJob = CatalogUpdated{JobId: jobId, Query: query}
}

func (p *CatalogPublisher) CatalogReplaced(count int) {
	p.mu.Lock()
	update := p.pendingJob
	p.pendingJob = CatalogUpdated{}
	p.mu.Unlock()

	update.Count = count
	if err := SendChange(p.connection, p.prefix, CatalogUpdatedTopic, update); err != nil {
		log.Printf("Failed to publish catalog update: %v", err)
	}
}

func (p *CatalogPublisher) Close() error {
	return p.connection.Close()
}

// ListenForCatalogUpdates invokes onUpdate for every announcement from
// another instance. Read-only replicas use it to re-fetch the listing.
func ListenForCatalogUpdates(url, prefix string, onUpdate func(CatalogUpdated)) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ListenToTopic(ch, prefix, CatalogUpdatedTopic, func(d amqp.Delivery) error {
		var update CatalogUpdated
		if err := json.Unmarshal(d.Body, &update); err != nil {
			return err
		}
		onUpdate(update)
		return nil
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
