package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dispatcher fans out event lifecycle mails to a resolved recipient set.
// Sends run concurrently and independently: one recipient's failure never
// stops the others, and a started batch always runs to completion.
type Dispatcher struct {
	directory Directory
	transport Transport
	logger    *logrus.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(directory Directory, transport Transport, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		directory: directory,
		transport: transport,
		logger:    logger,
	}
}

// Dispatch resolves the audience and sends the given variant to every
// recipient. Failures are recorded in the report, never propagated; the
// caller's state change has already committed by the time this runs.
func (d *Dispatcher) Dispatch(ctx context.Context, event EventSummary, changes []ChangeRow, kind Kind, audience Audience) Report {
	report := Report{Errors: make(map[string]string)}

	recipients, err := ResolveRecipients(ctx, d.directory, audience)
	if err != nil {
		// Without a recipient set there is nothing to attempt. The failure is
		// recorded for monitoring, not surfaced as a request error.
		d.logger.WithError(err).WithField("event_id", event.ID).
			Error("Failed to resolve notification recipients")
		report.Errors["*"] = err.Error()
		report.Failed = 1
		return report
	}

	// The actor does not get told about their own edit. Approval mails from a
	// different approver still reach them.
	if kind == KindChanged {
		recipients = excludeUser(recipients, audience.ActorID)
	}

	if len(recipients) == 0 {
		d.logger.WithFields(logrus.Fields{
			"event_id": event.ID,
			"variant":  kind,
		}).Info("No recipients for event notification")
		return report
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, recipient := range recipients {
		wg.Add(1)
		go func(rcpt Recipient) {
			defer wg.Done()

			entry := d.logger.WithFields(logrus.Fields{
				"event_id": event.ID,
				"variant":  kind,
				"to":       rcpt.Address,
			})
			entry.Info("Sending event notification")

			messageID, err := d.transport.Send(rcpt.Address, kind, ViewData{
				RecipientName: rcpt.Name,
				EventTitle:    event.Title,
				StartTime:     event.StartTime,
				EndTime:       event.EndTime,
				Changes:       changes,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				entry.WithError(err).Error("Failed to send event notification")
				report.Failed++
				report.Errors[rcpt.Address] = err.Error()
				return
			}
			entry.WithField("message_id", messageID).Info("Event notification sent")
			report.Sent++
			report.Delivered = append(report.Delivered, rcpt.Address)
		}(recipient)
	}

	wg.Wait()
	return report
}

func excludeUser(recipients []Recipient, userID uuid.UUID) []Recipient {
	if userID == uuid.Nil {
		return recipients
	}
	out := recipients[:0:0]
	for _, r := range recipients {
		if r.UserID == userID {
			continue
		}
		out = append(out, r)
	}
	return out
}
