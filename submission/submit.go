package submission

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrUploadsInProgress refuses a submission while images are still pending
// or uploading. It clears by itself once the queue drains.
var ErrUploadsInProgress = errors.New("image uploads are still in progress")

// ValidationError carries every failed field rule.
type ValidationError struct {
	Fields ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("draft has %d invalid field(s)", len(e.Fields))
}

// SubmissionError wraps a product service rejection. The draft is left as it
// was so the submission can be retried.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to %s product: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Submit checks the draft and sends it to the product service, creating a
// new product or updating the one the draft was opened from. On success the
// caller is expected to discard the draft. Only one submit runs per draft at
// a time and a draft is submitted successfully at most once.
func Submit(ctx context.Context, d *Draft, products ProductService) (*Product, error) {
	s, err := d.claim()
	if err != nil {
		return nil, err
	}
	submitted := false
	defer func() { d.unclaim(submitted) }()

	if hasInFlight(s.Items) {
		return nil, ErrUploadsInProgress
	}
	if result := Validate(s); !result.Valid() {
		return nil, &ValidationError{Fields: result}
	}

	payload := Compose(s, d.Categories())

	var (
		product *Product
		op      = "create"
	)
	if s.ProductID == "" {
		product, err = products.Create(ctx, payload)
	} else {
		op = "update"
		product, err = products.Update(ctx, s.ProductID, payload)
	}
	if err != nil {
		d.logger.Warn("Product service rejected submission", zap.String("op", op), zap.Error(err))
		return nil, &SubmissionError{Op: op, Err: err}
	}

	submitted = true
	d.logger.Info("Product submitted", zap.String("op", op), zap.String("product_id", product.ID),
		zap.Int("images", len(payload.Images)))
	return product, nil
}

// claim marks the draft as being submitted and returns the snapshot to send.
func (d *Draft) claim() (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.closed:
		return Snapshot{}, ErrDraftClosed
	case d.submitted:
		return Snapshot{}, ErrAlreadySubmitted
	case d.submitting:
		return Snapshot{}, ErrSubmitInProgress
	}
	d.submitting = true
	d.lastActive = d.now()
	return d.snapshotLocked(), nil
}

func (d *Draft) unclaim(submitted bool) {
	d.mu.Lock()
	d.submitting = false
	d.submitted = submitted
	d.mu.Unlock()
}
