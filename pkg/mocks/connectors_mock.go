// Package mocks provides recording fakes for tests.
package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/autoflowhq/autoflow/pkg/connectors"
)

// Delivery records one call made against the connector mock.
type Delivery struct {
	Channel string // email, sms, chat, notification
	To      string
	Subject string
	Body    string
}

// ConnectorMock implements every delivery interface, records calls, and
// can be scripted to fail the first N attempts.
type ConnectorMock struct {
	mu         sync.Mutex
	deliveries []Delivery
	failures   int
	calls      int
}

// NewConnectorMock returns a mock that succeeds on every call.
func NewConnectorMock() *ConnectorMock {
	return &ConnectorMock{}
}

// FailFirst makes the next n calls across all channels return an error.
func (m *ConnectorMock) FailFirst(n int) *ConnectorMock {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures = n

	return m
}

// Set returns a connector set backed entirely by this mock.
func (m *ConnectorMock) Set() *connectors.Set {
	return &connectors.Set{
		Email:         m,
		SMS:           m,
		Chat:          m,
		Notifications: m,
	}
}

// Deliveries returns a copy of the recorded calls in order.
func (m *ConnectorMock) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Delivery, len(m.deliveries))
	copy(out, m.deliveries)

	return out
}

// Calls returns the total number of attempts, including failed ones.
func (m *ConnectorMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

func (m *ConnectorMock) record(d Delivery) (connectors.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	if m.failures > 0 {
		m.failures--

		return connectors.Outcome{Success: false}, errors.New("connector unavailable")
	}

	m.deliveries = append(m.deliveries, d)

	return connectors.Outcome{Success: true, LatencyMs: 1}, nil
}

func (m *ConnectorMock) SendEmail(_ context.Context, to, subject, body string) (connectors.Outcome, error) {
	return m.record(Delivery{Channel: "email", To: to, Subject: subject, Body: body})
}

func (m *ConnectorMock) SendSMS(_ context.Context, to, body string) (connectors.Outcome, error) {
	return m.record(Delivery{Channel: "sms", To: to, Body: body})
}

func (m *ConnectorMock) PostMessage(_ context.Context, channel, text string) (connectors.Outcome, error) {
	return m.record(Delivery{Channel: "chat", To: channel, Body: text})
}

func (m *ConnectorMock) CreateNotification(_ context.Context, userID, title, message string) (connectors.Outcome, error) {
	return m.record(Delivery{Channel: "notification", To: userID, Subject: title, Body: message})
}
