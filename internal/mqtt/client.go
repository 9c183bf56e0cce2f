package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/ui"
)

const connectTimeout = 10 * time.Second

var (
	client     mqtt.Client
	clientLock sync.Mutex
)

// Init connects the shared mqtt client using the given broker
// configuration. It is a no-op when no broker is configured or when a
// connection already exists.
func Init(config configuration.MqttConfig) error {
	clientLock.Lock()
	defer clientLock.Unlock()

	if len(config.Broker) <= 0 || client != nil {
		return nil
	}

	clientId := config.ClientId
	if len(clientId) <= 0 {
		clientId = "therm2go"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(clientId).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false)
	if len(config.Username) > 0 {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}
	opts.OnConnect = func(c mqtt.Client) {
		ui.Debug("Connected to mqtt broker %s", config.Broker)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		ui.Warning("Lost connection to mqtt broker: %v", err)
	}

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.New(fmt.Sprintf("Timeout connecting to mqtt broker %s", config.Broker))
	}
	if token.Error() != nil {
		return token.Error()
	}

	client = c
	return nil
}

// Subscribe registers a callback for messages on the given topic.
func Subscribe(topic string, callback func(topic string, payload []byte)) error {
	clientLock.Lock()
	c := client
	clientLock.Unlock()

	if c == nil {
		return errors.New("Mqtt client is not initialized, configure a broker first")
	}

	token := c.Subscribe(topic, 0, func(_ mqtt.Client, message mqtt.Message) {
		callback(message.Topic(), message.Payload())
	})
	token.Wait()
	return token.Error()
}

// Publish sends a payload to the given topic.
func Publish(topic string, payload string, retained bool) error {
	clientLock.Lock()
	c := client
	clientLock.Unlock()

	if c == nil {
		return errors.New("Mqtt client is not initialized, configure a broker first")
	}

	token := c.Publish(topic, 0, retained, payload)
	token.Wait()
	return token.Error()
}

// DisconnectAtExit closes the shared client connection, waiting briefly
// for in-flight messages to drain.
func DisconnectAtExit() {
	clientLock.Lock()
	defer clientLock.Unlock()

	if client == nil {
		return
	}
	client.Disconnect(250)
	client = nil
}
