package cart

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/cartengine/pkg/config"
	"github.com/angelmondragon/cartengine/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/logger"
	"github.com/angelmondragon/cartengine/pkg/metrics"
	"github.com/shopspring/decimal"
)

// PreviewResult is the latest state of the promo preview.
type PreviewResult struct {
	Seq     uint64
	Code    string
	Status  enums.PromoStatus
	Verdict *PromoVerdict
	Reason  string
}

// PreviewParams configures a PromoPreview.
type PreviewParams struct {
	Validator PromoValidator
	Subtotal  func() decimal.Decimal
	Config    config.PromoConfig
	Metrics   *metrics.CartMetrics
	Logger    *logger.Logger
	OnResult  func(PreviewResult)
}

// PromoPreview validates typed promo codes after a quiet period so the shopper
// sees feedback before applying. Each input supersedes all earlier ones; a
// late answer for a superseded input is dropped. The preview never changes
// the cart's applied promo.
type PromoPreview struct {
	mu        sync.Mutex
	validator PromoValidator
	subtotal  func() decimal.Decimal
	quiet     time.Duration
	minLength int
	timeout   time.Duration
	metrics   *metrics.CartMetrics
	logg      *logger.Logger
	onResult  func(PreviewResult)

	seq     uint64
	timer   *time.Timer
	current PreviewResult
	closed  bool
}

func NewPromoPreview(params PreviewParams) (*PromoPreview, error) {
	if params.Validator == nil {
		return nil, fmt.Errorf("promo validator required")
	}
	if params.Subtotal == nil {
		return nil, fmt.Errorf("subtotal source required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &PromoPreview{
		validator: params.Validator,
		subtotal:  params.Subtotal,
		quiet:     params.Config.DebounceQuiet,
		minLength: params.Config.MinCodeLength,
		timeout:   params.Config.ValidationTimeout,
		metrics:   params.Metrics,
		logg:      logg,
		onResult:  params.OnResult,
		current:   PreviewResult{Status: enums.PromoStatusNone},
	}, nil
}

// NewPromoPreview builds a preview bound to this session's regular subtotal.
func (s *Session) NewPromoPreview(onResult func(PreviewResult)) (*PromoPreview, error) {
	return NewPromoPreview(PreviewParams{
		Validator: s.validator,
		Subtotal:  s.RegularSubtotal,
		Config:    s.promoCfg,
		Metrics:   s.metrics,
		Logger:    s.logg,
		OnResult:  onResult,
	})
}

// Input records the current text of the promo field and returns its sequence
// number. Inputs shorter than the minimum length, including a cleared field,
// reset the preview without validating.
func (p *PromoPreview) Input(ctx context.Context, raw string) uint64 {
	code := NormalizePromoCode(raw)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return p.seq
	}
	p.seq++
	seq := p.seq
	p.stopTimerLocked()
	p.current = PreviewResult{Seq: seq, Code: code, Status: enums.PromoStatusNone}
	if code == "" || utf8.RuneCountInString(code) < p.minLength {
		return seq
	}

	ctx = context.WithoutCancel(ctx)
	p.timer = time.AfterFunc(p.quiet, func() {
		p.run(ctx, seq, code)
	})
	return seq
}

// Current returns the latest preview state.
func (p *PromoPreview) Current() PreviewResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *PromoPreview) Status() enums.PromoStatus {
	return p.Current().Status
}

// Close cancels any pending validation; later answers are discarded.
func (p *PromoPreview) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.seq++
	p.stopTimerLocked()
}

func (p *PromoPreview) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *PromoPreview) run(ctx context.Context, seq uint64, code string) {
	if !p.begin(seq) {
		return
	}

	verdict, err := runValidation(ctx, p.validator, p.timeout, p.metrics, code, p.subtotal())
	result := PreviewResult{Seq: seq, Code: code}
	switch {
	case err == nil:
		result.Status = enums.PromoStatusValid
		result.Verdict = verdict
	case pkgerrors.HasCode(err, pkgerrors.CodeInvalidPromo):
		result.Status = enums.PromoStatusInvalid
		result.Reason = pkgerrors.As(err).Message()
	default:
		result.Status = enums.PromoStatusNone
		result.Reason = pkgerrors.As(err).Message()
		p.logg.Warn(p.logg.WithField(ctx, "promo_code", code), "promo preview validation unavailable")
	}

	p.mu.Lock()
	if seq != p.seq || p.closed {
		p.mu.Unlock()
		p.metrics.IncPromoValidation(metrics.PromoOutcomeSuperseded)
		return
	}
	p.current = result
	onResult := p.onResult
	p.mu.Unlock()

	if onResult != nil {
		onResult(result)
	}
}

func (p *PromoPreview) begin(seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq || p.closed {
		return false
	}
	p.current.Status = enums.PromoStatusValidating
	return true
}
