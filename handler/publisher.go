package handler

import (
	"context"

	"github.com/GbredngleK/NG-Insider-Bot/model"
)

// ChannelPublisher publishes approved reviews to one channel through a Transport.
type ChannelPublisher struct {
	Transport Transport
	ChannelID string
}

func (p ChannelPublisher) Publish(ctx context.Context, msg model.Outgoing) (string, error) {
	return p.Transport.Send(ctx, model.Target{ChannelID: p.ChannelID}, msg)
}
