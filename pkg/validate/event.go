package validate

import "github.com/ogulcanaydogan/token-ledger/pkg/model"

// EventInput is a raw ingestion request.
type EventInput struct {
	Actor         string
	ResourceClass string
	InQuantity    int64
	OutQuantity   int64
	SessionID     string
	Notes         string
}

// Event validates every field of in and returns a normalized, unpriced,
// unstamped event. Nothing is returned on the first failure.
func (n *Normalizer) Event(in EventInput) (*model.UsageEvent, error) {
	actor, err := n.Actor(in.Actor)
	if err != nil {
		return nil, err
	}
	class, err := n.ResourceClass(in.ResourceClass)
	if err != nil {
		return nil, err
	}
	inQty, err := n.Quantity("in_quantity", in.InQuantity)
	if err != nil {
		return nil, err
	}
	outQty, err := n.Quantity("out_quantity", in.OutQuantity)
	if err != nil {
		return nil, err
	}

	return &model.UsageEvent{
		Actor:         actor,
		ResourceClass: class,
		InQuantity:    inQty,
		OutQuantity:   outQty,
		TotalQuantity: inQty + outQty,
		SessionID:     in.SessionID,
		Notes:         n.Notes(in.Notes),
	}, nil
}
