package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/lattice/store"
)

// Handler turns DynamoDB stream records into domain events and keeps the
// email-claim table consistent with hard deletes.
type Handler struct {
	store    *store.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(s *store.Store, n Notifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    s,
		notifier: n,
		logger:   logger,
	}
}

// HandleRecords processes a batch of DynamoDB stream records. It is designed
// to be used as an AWS Lambda handler. Notifier failures are swallowed after
// a warning; claim-cleanup failures fail the batch so the records retry.
func (h *Handler) HandleRecords(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	table := tableFromARN(record.EventSourceArn)

	switch record.EventName {
	case "INSERT":
		h.emit(ctx, "entity.created", eventPayload(table, record.Change.NewImage))

	case "MODIFY":
		oldStatus := getStringAttr(record.Change.OldImage, "status")
		newStatus := getStringAttr(record.Change.NewImage, "status")
		if oldStatus == newStatus {
			return nil
		}
		payload := eventPayload(table, record.Change.NewImage)
		payload["previousStatus"] = oldStatus
		h.emit(ctx, "entity.status_changed", payload)

	case "REMOVE":
		h.emit(ctx, "entity.deleted", eventPayload(table, record.Change.OldImage))

		// Deletes are hard; drop the email claim so the address can be
		// reused by a future owner.
		if email := getStringAttr(record.Change.OldImage, "email"); email != "" {
			if err := h.store.ReleaseEmail(ctx, table, email); err != nil {
				return fmt.Errorf("release email claim: %w", err)
			}
		}
	}

	return nil
}

// emit delivers an event best-effort, swallowing notifier failures.
func (h *Handler) emit(ctx context.Context, eventType string, payload map[string]any) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Emit(ctx, eventType, payload); err != nil {
		h.logger.Warn("notifier emit failed",
			"type", eventType,
			"error", err,
		)
	}
}

// eventPayload builds the common event payload from a stream image.
func eventPayload(table string, image map[string]events.DynamoDBAttributeValue) map[string]any {
	payload := map[string]any{"table": table}
	if id := getStringAttr(image, "id"); id != "" {
		payload["id"] = id
	}
	if status := getStringAttr(image, "status"); status != "" {
		payload["status"] = status
	}
	if createdAt := getNumberAttr(image, "createdAt"); createdAt != 0 {
		payload["createdAt"] = createdAt
	}
	return payload
}

// tableFromARN extracts the table name from a stream event source ARN
// (arn:aws:dynamodb:region:account:table/NAME/stream/LABEL).
func tableFromARN(arn string) string {
	parts := strings.Split(arn, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeNumber {
		n, _ := strconv.ParseInt(v.Number(), 10, 64)
		return n
	}
	return 0
}
