package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
)

// Notification topics published by the ledger node
const (
	TopicHashTx    = "hashtx"
	TopicHashBlock = "hashblock"
)

// Notifier listens to ledger node ZMQ notifications and turns them into wake-ups for the
// confirmation pollers. Payloads are only logged; state is always read back through TxStatus.
type Notifier struct {
	// ZMQ connection address, e.g. "tcp://127.0.0.1:28332"
	address string
	topics  []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	reconnectInterval time.Duration

	mu          sync.Mutex
	subscribers []chan struct{}
}

// NewNotifier creates a notifier for the given address
func NewNotifier(address string, topics ...string) *Notifier {
	if len(topics) == 0 {
		topics = []string{TopicHashTx, TopicHashBlock}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Notifier{
		address:           address,
		topics:            topics,
		ctx:               ctx,
		cancel:            cancel,
		reconnectInterval: 5 * time.Second,
	}
}

// Subscribe returns a channel receiving at most one pending wake-up at a time
func (n *Notifier) Subscribe() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan struct{}, 1)
	n.subscribers = append(n.subscribers, ch)
	return ch
}

// wake signal every subscriber without blocking
func (n *Notifier) wake() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Start starts listening to ZMQ messages
func (n *Notifier) Start() error {
	if n.address == "" {
		return fmt.Errorf("zmq address is empty")
	}
	log.Printf("Starting ledger notifier: %s", n.address)
	log.Printf("Listening to topics: %s", strings.Join(n.topics, ", "))

	n.wg.Add(1)
	go n.listen()
	return nil
}

// Stop stops listening
func (n *Notifier) Stop() {
	log.Println("Stopping ledger notifier...")
	n.cancel()
	n.wg.Wait()
	log.Println("Ledger notifier stopped")
}

func (n *Notifier) listen() {
	defer n.wg.Done()

	for {
		if n.ctx.Err() != nil {
			log.Println("Received stop signal, ledger notifier is shutting down...")
			return
		}

		socket := zmq4.NewSub(n.ctx)
		if err := socket.Dial(n.address); err != nil {
			log.Printf("Failed to connect to ZMQ server: %v, will retry in %v", err, n.reconnectInterval)
			socket.Close()
			n.sleep()
			continue
		}

		for _, topic := range n.topics {
			if err := socket.SetOption(zmq4.OptionSubscribe, topic); err != nil {
				log.Printf("Failed to subscribe to topic %s: %v", topic, err)
			}
		}
		log.Printf("Successfully connected to ZMQ server: %s", n.address)

		n.receive(socket)
		socket.Close()

		if n.ctx.Err() == nil {
			log.Printf("ZMQ connection lost, will reconnect in %v", n.reconnectInterval)
			n.sleep()
		}
	}
}

func (n *Notifier) sleep() {
	select {
	case <-n.ctx.Done():
	case <-time.After(n.reconnectInterval):
	}
}

func (n *Notifier) receive(socket zmq4.Socket) {
	for {
		msg, err := socket.Recv()
		if err != nil {
			if n.ctx.Err() == nil {
				log.Printf("Failed to receive message: %v", err)
			}
			return
		}
		if len(msg.Frames) < 2 {
			log.Printf("Received message with incorrect format: %v", msg)
			continue
		}
		n.handle(string(msg.Frames[0]), msg.Frames[1])
	}
}

func (n *Notifier) handle(topic string, data []byte) {
	switch topic {
	case TopicHashTx, TopicHashBlock:
		log.Printf("Ledger notification %s: %s", topic, hex.EncodeToString(data))
		n.wake()
	default:
		log.Printf("Received message for unknown topic: %s", topic)
	}
}
