package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage("noreply@yamdb.local", "user@example.com", "abc234")

	if msg.Subject != ConfirmationSubject {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.Body != "Your confirmation code: abc234" {
		t.Errorf("Body = %q", msg.Body)
	}
	if len(msg.To) != 1 || msg.To[0] != "user@example.com" {
		t.Errorf("To = %v", msg.To)
	}
}

func TestMessageFormat(t *testing.T) {
	raw := string(ConfirmationMessage("a@example.com", "b@example.com", "XYZ789").Format())

	for _, want := range []string{
		"From: a@example.com\r\n",
		"To: b@example.com\r\n",
		"Subject: Confirmation code for token\r\n",
		"\r\n\r\nYour confirmation code: XYZ789\r\n",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("formatted message missing %q:\n%s", want, raw)
		}
	}
}

func TestConsumerDeliver(t *testing.T) {
	rec := &recordingSender{}
	c := NewConsumer("amqp://unused", rec, zap.NewNop())

	body, _ := json.Marshal(ConfirmationMessage("a@example.com", "b@example.com", "XYZ789"))
	if err := c.Deliver(context.Background(), body); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(rec.sent) != 1 || rec.sent[0].Body != "Your confirmation code: XYZ789" {
		t.Errorf("sent = %+v", rec.sent)
	}
}

func TestConsumerDeliverBadPayload(t *testing.T) {
	c := NewConsumer("amqp://unused", &recordingSender{}, zap.NewNop())

	tests := map[string][]byte{
		"not json":      []byte("{"),
		"no recipients": []byte(`{"subject":"x","body":"y"}`),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if err := c.Deliver(context.Background(), body); !errors.Is(err, errBadPayload) {
				t.Errorf("Deliver() error = %v, want errBadPayload", err)
			}
		})
	}
}

func TestConsumerDeliverPropagatesSendError(t *testing.T) {
	sendErr := errors.New("smtp down")
	c := NewConsumer("amqp://unused", &recordingSender{err: sendErr}, zap.NewNop())

	body, _ := json.Marshal(ConfirmationMessage("a@example.com", "b@example.com", "XYZ789"))
	err := c.Deliver(context.Background(), body)
	if !errors.Is(err, sendErr) {
		t.Errorf("Deliver() error = %v, want %v", err, sendErr)
	}
	if errors.Is(err, errBadPayload) {
		t.Error("transport failure must not be treated as a bad payload")
	}
}

type settlement struct {
	acked, nacked, requeued bool
}

func (s *settlement) Ack(bool) error {
	s.acked = true
	return nil
}

func (s *settlement) Nack(_ bool, requeue bool) error {
	s.nacked = true
	s.requeued = requeue
	return nil
}

func TestConsumerSettle(t *testing.T) {
	c := NewConsumer("amqp://unused", &recordingSender{}, zap.NewNop())

	tests := []struct {
		name string
		err  error
		want settlement
	}{
		{"delivered", nil, settlement{acked: true}},
		{"bad payload", fmt.Errorf("%w: no recipients", errBadPayload), settlement{nacked: true}},
		{"transport failure", errors.New("dial tcp: connection refused"), settlement{nacked: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got settlement
			c.settle(&got, tt.err)
			if got != tt.want {
				t.Errorf("settle() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLogSender(t *testing.T) {
	if err := NewLogSender(zap.NewNop()).Send(context.Background(), Message{To: []string{"x@example.com"}}); err != nil {
		t.Errorf("Send() error = %v", err)
	}
}
