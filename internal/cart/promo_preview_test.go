package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/cartengine/pkg/config"
	"github.com/angelmondragon/cartengine/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPreview(t *testing.T, validator PromoValidator, quiet time.Duration, onResult func(PreviewResult)) *PromoPreview {
	t.Helper()
	preview, err := NewPromoPreview(PreviewParams{
		Validator: validator,
		Subtotal:  func() decimal.Decimal { return dec("1200") },
		Config:    config.PromoConfig{DebounceQuiet: quiet, MinCodeLength: 3, ValidationTimeout: time.Second},
		OnResult:  onResult,
	})
	require.NoError(t, err)
	t.Cleanup(preview.Close)
	return preview
}

func TestPromoPreviewIgnoresShortInput(t *testing.T) {
	t.Parallel()
	validator := newStaticValidator()
	preview := newTestPreview(t, validator, time.Millisecond, nil)

	preview.Input(context.Background(), "SA")
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, validator.Calls())
	assert.Equal(t, enums.PromoStatusNone, preview.Status())
}

func TestPromoPreviewDebouncesToLatestInput(t *testing.T) {
	t.Parallel()
	validator := newStaticValidator()
	results := make(chan PreviewResult, 4)
	preview := newTestPreview(t, validator, 30*time.Millisecond, func(r PreviewResult) { results <- r })

	ctx := context.Background()
	preview.Input(ctx, "SAV")
	preview.Input(ctx, "SAVE")
	preview.Input(ctx, "SAVE1")
	last := preview.Input(ctx, "save10")

	select {
	case result := <-results:
		assert.Equal(t, last, result.Seq)
		assert.Equal(t, "SAVE10", result.Code)
		assert.Equal(t, enums.PromoStatusValid, result.Status)
		require.NotNil(t, result.Verdict)
		assert.True(t, result.Verdict.DiscountAmount.Equal(dec("120")))
	case <-time.After(2 * time.Second):
		t.Fatal("preview never reported a result")
	}
	assert.Equal(t, []string{"SAVE10"}, validator.Calls(), "only the settled input is validated")
}

func TestPromoPreviewReportsInvalidReason(t *testing.T) {
	t.Parallel()
	results := make(chan PreviewResult, 1)
	preview := newTestPreview(t, newStaticValidator(), time.Millisecond, func(r PreviewResult) { results <- r })

	preview.Input(context.Background(), "NOPE")

	select {
	case result := <-results:
		assert.Equal(t, enums.PromoStatusInvalid, result.Status)
		assert.Equal(t, "promo code NOPE is not valid", result.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("preview never reported a result")
	}
}

// gatedValidator blocks every call until released.
type gatedValidator struct {
	mu      sync.Mutex
	started chan string
	release chan struct{}
}

func newGatedValidator() *gatedValidator {
	return &gatedValidator{started: make(chan string, 4), release: make(chan struct{})}
}

func (g *gatedValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoVerdict, error) {
	g.started <- code
	<-g.release
	return &PromoVerdict{Code: code, DiscountAmount: dec("10"), DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("10")}, nil
}

func TestPromoPreviewDiscardsSupersededResult(t *testing.T) {
	t.Parallel()
	validator := newGatedValidator()
	var delivered []PreviewResult
	var mu sync.Mutex
	preview := newTestPreview(t, validator, time.Hour, func(r PreviewResult) {
		mu.Lock()
		delivered = append(delivered, r)
		mu.Unlock()
	})

	ctx := context.Background()
	firstSeq := preview.Input(ctx, "FIRST")
	done := make(chan struct{})
	go func() {
		preview.run(ctx, firstSeq, "FIRST")
		close(done)
	}()
	assert.Equal(t, "FIRST", <-validator.started)
	assert.Equal(t, enums.PromoStatusValidating, preview.Status())

	secondSeq := preview.Input(ctx, "SECOND")
	close(validator.release)
	<-done

	mu.Lock()
	assert.Empty(t, delivered, "late answer for a superseded input is dropped")
	mu.Unlock()
	assert.Equal(t, secondSeq, preview.Current().Seq)
	assert.Equal(t, enums.PromoStatusNone, preview.Status())

	preview.run(ctx, secondSeq, "SECOND")
	<-validator.started
	assert.Equal(t, enums.PromoStatusValid, preview.Status())
	assert.Equal(t, "SECOND", preview.Current().Code)
}

func TestPromoPreviewClearedInputDiscardsPending(t *testing.T) {
	t.Parallel()
	validator := newGatedValidator()
	preview := newTestPreview(t, validator, time.Hour, nil)

	ctx := context.Background()
	seq := preview.Input(ctx, "SAVE10")
	done := make(chan struct{})
	go func() {
		preview.run(ctx, seq, "SAVE10")
		close(done)
	}()
	<-validator.started

	preview.Input(ctx, "")
	close(validator.release)
	<-done

	current := preview.Current()
	assert.Equal(t, enums.PromoStatusNone, current.Status)
	assert.Equal(t, "", current.Code)
	assert.Nil(t, current.Verdict)
}

func TestPromoPreviewNeverAppliesPromo(t *testing.T) {
	t.Parallel()
	f := openTestSession(t)
	addCake(t, f.session, 2)

	results := make(chan PreviewResult, 1)
	preview, err := f.session.NewPromoPreview(func(r PreviewResult) { results <- r })
	require.NoError(t, err)
	t.Cleanup(preview.Close)
	preview.quiet = time.Millisecond

	preview.Input(context.Background(), "SAVE10")
	select {
	case result := <-results:
		assert.Equal(t, enums.PromoStatusValid, result.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("preview never reported a result")
	}
	assert.Nil(t, f.session.AppliedPromo())
	assert.Equal(t, enums.PromoStatusNone, f.session.PromoStatus())
}

func TestNewPromoPreviewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := NewPromoPreview(PreviewParams{Subtotal: func() decimal.Decimal { return decimal.Zero }})
	assert.Error(t, err)
	_, err = NewPromoPreview(PreviewParams{Validator: newStaticValidator()})
	assert.Error(t, err)
}
