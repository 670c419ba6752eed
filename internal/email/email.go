package email

import (
	"context"
	"fmt"

	"tripweaver/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send notifies the traveler that inferred segments were added to their
// itinerary and should be reviewed.
func (s *Sender) Send(ctx context.Context, event kafka.FilledEvent) error {
	if len(event.FilledIDs) == 0 {
		return nil
	}
	fmt.Printf("notify traveler: itinerary %s revision %d gained %d inferred segments\n",
		event.ItineraryID, event.Revision, len(event.FilledIDs))
	return nil
}
