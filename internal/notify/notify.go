package notify

import (
	"context"
	"fmt"
	"sync"
)

const (
	TypeOrder    = "order"
	TypeReferral = "referral"
)

// Message is the JSON payload pushed to a user's live connections.
type Message struct {
	Type        string   `json:"type"`
	OrderID     uint     `json:"orderId,omitempty"`
	VoucherCode string   `json:"voucherCode,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Message     string   `json:"message"`
}

func OrderMessage(orderID uint, text string) Message {
	return Message{Type: TypeOrder, OrderID: orderID, Message: text}
}

func ReferralMessage(code string, amount float64) Message {
	return Message{
		Type:        TypeReferral,
		VoucherCode: code,
		Amount:      &amount,
		Message:     fmt.Sprintf("Congratulations! You've earned a voucher worth KSh %v", amount),
	}
}

// Notifier delivers a message to a user. Implementations must not block the
// caller on slow or absent receivers.
type Notifier interface {
	Notify(ctx context.Context, userID uint, msg Message)
}

type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, userID uint, msg Message) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, userID, msg)
		}
	}
}

type Nop struct{}

func (Nop) Notify(context.Context, uint, Message) {}

type Delivery struct {
	UserID  uint
	Message Message
}

// Recorder keeps every message it is given. Useful in tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Delivery
}

func (r *Recorder) Notify(_ context.Context, userID uint, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Delivery{UserID: userID, Message: msg})
}

func (r *Recorder) Sent() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.sent))
	copy(out, r.sent)
	return out
}
