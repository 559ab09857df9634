package worker

// Processes receipt jobs from QueueReceipt: fetch the completed order,
// render the PDF receipt, then email it through the SMTP circuit breaker.
// Exhausted retries move the job to the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chathuwa-whiz/zors-pos/internal/infra"
	"github.com/chathuwa-whiz/zors-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxReceiptAttempts = 3

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	OrderID string `json:"order_id"`
	ToEmail string `json:"to_email"`
}

type ReceiptWorker struct {
	orders         repository.OrderRepository
	mailer         *infra.Mailer
	cb             *infra.CircuitBreaker
	rdb            *redis.Client
	pdfStoragePath string
}

func NewReceiptWorker(
	orders repository.OrderRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
	pdfStoragePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		orders:         orders,
		mailer:         mailer,
		cb:             cb,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload from the job envelope
//  2. Fetch the completed order (with items) from DB
//  3. Render the PDF receipt
//  4. Send the email through the circuit breaker with backoff
//  5. Move to DLQ when all attempts fail
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Str("order_id", payload.OrderID).Msg("receipt_worker: empty to_email, skipping")
		return
	}

	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		log.Error().Str("order_id", payload.OrderID).Msg("receipt_worker: invalid order_id")
		return
	}

	order, err := w.orders.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("receipt_worker: order not found")
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(order, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("receipt_worker: PDF generation failed")
		SendToDLQ(ctx, w.rdb, QueueReceipt, "receipt", raw,
			fmt.Sprintf("pdf generation failed: %v", err), 1)
		return
	}

	subject := fmt.Sprintf("Your receipt — %s", order.Name)
	body := fmt.Sprintf("Thank you for your purchase.\nTotal: $%s", order.FinalTotal.StringFixed(2))

	sendErr := withRetry(ctx, maxReceiptAttempts, func(attempt int) error {
		return w.cb.Execute(func() error {
			return w.mailer.SendReceipt(payload.ToEmail, subject, body, pdfPath)
		})
	})
	if sendErr != nil {
		log.Error().Err(sendErr).
			Str("order_id", payload.OrderID).
			Str("to", payload.ToEmail).
			Msg("receipt_worker: email failed after all attempts")
		SendToDLQ(ctx, w.rdb, QueueReceipt, "receipt", raw,
			fmt.Sprintf("email failed after %d attempts: %v", maxReceiptAttempts, sendErr),
			maxReceiptAttempts)
		return
	}

	log.Info().
		Str("order_id", payload.OrderID).
		Str("to", payload.ToEmail).
		Str("pdf", pdfPath).
		Msg("receipt_worker: receipt sent")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
