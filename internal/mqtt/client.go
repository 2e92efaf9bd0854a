package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	qosAtLeastOnce byte = 1

	defaultTimeout          = 10 * time.Second
	disconnectQuiesceMillis = 250
)

// Options configures a broker connection shared by publisher and subscriber.
type Options struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	CAFile    string
	Timeout   time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

// clientOptions builds the paho options. The client id gets a random
// suffix so two instances with the same configured id do not evict
// each other from the broker.
func (o Options) clientOptions() (*pahomqtt.ClientOptions, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(o.BrokerURL).
		SetClientID(fmt.Sprintf("%s-%s", o.ClientID, uuid.NewString()[:8])).
		SetAutoReconnect(true).
		SetConnectTimeout(o.timeout())

	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	if o.CAFile != "" {
		pem, err := os.ReadFile(o.CAFile)
		if err != nil {
			return nil, errors.Wrap(err, "read ca certificate")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificates parsed from %s", o.CAFile)
		}
		opts.SetTLSConfig(&tls.Config{RootCAs: pool})
	}

	return opts, nil
}

func wait(tok pahomqtt.Token, timeout time.Duration) error {
	if !tok.WaitTimeout(timeout) {
		return errors.New("operation timed out")
	}
	return tok.Error()
}

// Publisher sends payloads to a single topic with at-least-once delivery.
type Publisher struct {
	client  pahomqtt.Client
	topic   string
	timeout time.Duration
	log     *logrus.Entry
}

// NewPublisher connects to the broker and returns a ready publisher.
func NewPublisher(opts Options, topic string, log *logrus.Entry) (*Publisher, error) {
	copts, err := opts.clientOptions()
	if err != nil {
		return nil, err
	}

	client := pahomqtt.NewClient(copts)
	if err := wait(client.Connect(), opts.timeout()); err != nil {
		return nil, errors.Wrap(err, "connect to broker")
	}
	log.Infof("connected to mqtt broker at %s", opts.BrokerURL)

	return &Publisher{client: client, topic: topic, timeout: opts.timeout(), log: log}, nil
}

// Publish sends one payload and reports whether the broker confirmed it.
// The boolean is the only failure signal; the caller owns re-queueing.
func (p *Publisher) Publish(payload []byte) bool {
	tok := p.client.Publish(p.topic, qosAtLeastOnce, false, payload)
	if err := wait(tok, p.timeout); err != nil {
		p.log.WithError(err).Warnf("publish to %s failed", p.topic)
		return false
	}
	return true
}

// Close disconnects from the broker after letting in-flight work settle.
func (p *Publisher) Close() {
	p.client.Disconnect(disconnectQuiesceMillis)
	p.log.Info("disconnected from mqtt broker")
}

// Handler consumes one raw message payload.
type Handler func(payload []byte)

// Subscriber feeds every message on a topic to a handler.
type Subscriber struct {
	client  pahomqtt.Client
	topic   string
	timeout time.Duration
	log     *logrus.Entry
}

// NewSubscriber connects, subscribes, and starts delivering messages.
// Subscribing happens in the connect handler so it is re-established
// after every reconnect; the first result is surfaced here so callers
// fail fast on a bad topic or ACL.
func NewSubscriber(opts Options, topic string, handler Handler, log *logrus.Entry) (*Subscriber, error) {
	copts, err := opts.clientOptions()
	if err != nil {
		return nil, err
	}

	timeout := opts.timeout()
	firstSub := make(chan error, 1)
	var once sync.Once

	copts.SetOnConnectHandler(func(c pahomqtt.Client) {
		tok := c.Subscribe(topic, qosAtLeastOnce, func(_ pahomqtt.Client, msg pahomqtt.Message) {
			handler(msg.Payload())
		})
		err := wait(tok, timeout)
		if err != nil {
			log.WithError(err).Errorf("subscribe to %s failed", topic)
		} else {
			log.Infof("subscribed to %s", topic)
		}
		once.Do(func() { firstSub <- err })
	})

	client := pahomqtt.NewClient(copts)
	if err := wait(client.Connect(), timeout); err != nil {
		return nil, errors.Wrap(err, "connect to broker")
	}

	select {
	case err := <-firstSub:
		if err != nil {
			client.Disconnect(disconnectQuiesceMillis)
			return nil, errors.Wrap(err, "initial subscribe")
		}
	case <-time.After(timeout):
		client.Disconnect(disconnectQuiesceMillis)
		return nil, errors.New("timed out waiting for initial subscription")
	}

	return &Subscriber{client: client, topic: topic, timeout: timeout, log: log}, nil
}

// Close unsubscribes and disconnects. Messages already handed to the
// handler are unaffected.
func (s *Subscriber) Close() {
	_ = wait(s.client.Unsubscribe(s.topic), s.timeout)
	s.client.Disconnect(disconnectQuiesceMillis)
	s.log.Info("disconnected from mqtt broker")
}
