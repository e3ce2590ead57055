package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// NATSBus publishes change events on maintenance.<entity>.<op> so every
// replica of the service sees every mutation.
type NATSBus struct {
	nc *nats.Conn
}

// ConnectNATS dials the server with reconnect handling.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			utils.Logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			utils.Logger.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			utils.Logger.WithError(err).WithField("subject", subject).Error("NATS error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

func NewNATSBus(nc *nats.Conn) *NATSBus {
	return &NATSBus{nc: nc}
}

func (b *NATSBus) Publish(_ context.Context, ev ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		utils.Logger.WithError(err).Error("marshal change event")
		return
	}
	if err := b.nc.Publish(Subject(ev), data); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"subject": Subject(ev),
			"id":      ev.ID,
		}).Warn("publish change event failed")
	}
}

func (b *NATSBus) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	out := make(chan ChangeEvent, subscriberBuffer)
	msgs := make(chan *nats.Msg, subscriberBuffer)

	sub, err := b.nc.ChanSubscribe(SubjectWildcard, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", SubjectWildcard, err)
	}

	go func() {
		defer close(out)
		defer func() { _ = sub.Unsubscribe() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				var ev ChangeEvent
				if err := json.Unmarshal(msg.Data, &ev); err != nil {
					utils.Logger.WithError(err).WithField("subject", msg.Subject).Warn("bad change event")
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (b *NATSBus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}
