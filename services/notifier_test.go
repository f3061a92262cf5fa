package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu       sync.Mutex
	sent     []outboundEmail
	failures int
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("smtp connection refused")
	}
	m.sent = append(m.sent, outboundEmail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) lastSent() outboundEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

func waitForSent(t *testing.T, m *fakeMailer, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.sentCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d sent emails, got %d", want, m.sentCount())
}

func TestNotifierDeliversQueuedEmail(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewNotifier(mailer)
	n.retryBackoff = time.Millisecond
	n.Start()
	defer n.Stop()

	n.Welcome("user@test.com", "Test User")
	waitForSent(t, mailer, 1)

	sent := mailer.lastSent()
	assert.Equal(t, "user@test.com", sent.to)
	assert.Equal(t, "Welcome to AZHome", sent.subject)
	assert.Contains(t, sent.body, "Test User")
}

func TestNotifierRetriesTransientFailures(t *testing.T) {
	mailer := &fakeMailer{failures: 2}
	n := NewNotifier(mailer)
	n.retryBackoff = time.Millisecond
	n.Start()
	defer n.Stop()

	n.PasswordReset("user@test.com", "12345")
	waitForSent(t, mailer, 1)

	assert.Contains(t, mailer.lastSent().body, "12345")
}

func TestNotifierDropsAfterMaxAttempts(t *testing.T) {
	mailer := &fakeMailer{failures: 10}
	n := NewNotifier(mailer)
	n.retryBackoff = time.Millisecond
	n.Start()
	defer n.Stop()

	n.Welcome("user@test.com", "Test User")

	// Three attempts consume three failures, then the email is dropped
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, mailer.sentCount())
	mailer.mu.Lock()
	assert.Equal(t, 7, mailer.failures)
	mailer.mu.Unlock()
}

func TestNotifierSkipsEmptyRecipient(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewNotifier(mailer)
	n.Start()
	defer n.Stop()

	n.Welcome("", "Ghost")
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, mailer.sentCount())
}

func TestNotifierFullQueueDoesNotBlock(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewNotifier(mailer)
	// Worker not started, so the queue only drains its buffer

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			n.Welcome("user@test.com", "Test User")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
	require.Len(t, n.queue, 100)
}
