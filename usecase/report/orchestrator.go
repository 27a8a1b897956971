// Package report turns a date range into an aggregated report request.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/stockdesk/api/transport"
	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/pkg/localdate"
	"github.com/fastygo/stockdesk/pkg/observe"
	"github.com/fastygo/stockdesk/usecase"
	"github.com/fastygo/stockdesk/usecase/catalog"
)

const (
	DefaultScanPageSize = 1000
	DefaultConfirmTTL   = 8 * time.Second

	// maxScanPages bounds a scan against a remote that never reports the last page.
	maxScanPages = 10_000
)

type Config struct {
	ScanPageSize int
	ConfirmTTL   time.Duration
}

// State drives the confirmation view.
type State struct {
	Generating bool
	Generated  bool
}

// Result is what a successful run submitted.
type Result struct {
	Request  domain.ReportRequest
	Included int
	Scanned  int
	Response transport.ReportResponse
}

type Orchestrator struct {
	products usecase.ProductGateway
	reports  usecase.ReportGateway
	session  usecase.SessionReader
	whatsapp usecase.WhatsAppSource
	notifier Notifier
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time

	mu    sync.Mutex
	state State
	timer *time.Timer
	seq   uint64

	subject observe.Subject[State]
}

// New wires an orchestrator. whatsapp and notifier may be nil.
func New(
	products usecase.ProductGateway,
	reports usecase.ReportGateway,
	session usecase.SessionReader,
	whatsapp usecase.WhatsAppSource,
	notifier Notifier,
	logger *zap.Logger,
	cfg Config,
) *Orchestrator {
	if cfg.ScanPageSize <= 0 {
		cfg.ScanPageSize = DefaultScanPageSize
	}
	if cfg.ConfirmTTL <= 0 {
		cfg.ConfirmTTL = DefaultConfirmTTL
	}
	if notifier == nil {
		notifier = discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		products: products,
		reports:  reports,
		session:  session,
		whatsapp: whatsapp,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run validates the display range, scans the catalog, aggregates the
// products created inside the range and submits the report. Every outcome is
// also sent to the notifier. A returned error is always a *Failure.
func (o *Orchestrator) Run(ctx context.Context, startLocal, endLocal string) (*Result, error) {
	current := o.session.Current()
	email, name := current.Identity()
	token := o.session.Token()

	if email == "" {
		return nil, o.reject(&Failure{
			Reason:      ReasonNoIdentity,
			Title:       "invalid session",
			Description: "sign in again to generate reports",
		})
	}

	period := domain.DateRange{
		StartDate: localdate.ToISO(startLocal),
		EndDate:   localdate.ToISO(endLocal),
	}
	if status := period.Status(); status != domain.RangeValid {
		return nil, o.reject(rangeFailure(status))
	}

	seq := o.begin()
	defer o.finish(seq)

	products, err := o.scan(ctx, token)
	if err != nil {
		return nil, o.reject(remoteFailure(ReasonScan, err))
	}

	totals, included := Aggregate(products, period)
	req := domain.ReportRequest{
		Type:   domain.ReportTypeCustom,
		Email:  email,
		Name:   name,
		Range:  period,
		Totals: totals,
	}
	if o.whatsapp != nil {
		req.WhatsApp = o.whatsapp.WhatsApp()
	}

	resp, err := o.reports.GenerateReport(ctx, token, toTransport(req))
	if err != nil {
		return nil, o.reject(remoteFailure(ReasonSubmit, err))
	}

	result := &Result{Request: req, Included: included, Scanned: len(products)}
	if resp != nil {
		result.Response = *resp
		if resp.OK != nil && !*resp.OK {
			o.logger.Warn("report accepted with ok=false", zap.String("message", resp.Message))
		}
	}

	o.confirm(seq)
	o.logger.Info("report generated",
		zap.String("start", period.StartDate),
		zap.String("end", period.EndDate),
		zap.Int64("units", totals.Units),
		zap.String("value", totals.Value.StringFixed(2)),
		zap.Int("included", included))
	o.notifier.Notify(Notification{
		Level:       LevelSuccess,
		Title:       "analysis complete",
		Description: fmt.Sprintf("period analysed: %s to %s", startLocal, endLocal),
	})
	return result, nil
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Subscribe(fn func(State)) func() {
	return o.subject.Subscribe(fn)
}

// Stop cancels a pending confirmation timer.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopTimer()
}

// scan reads the whole catalog page by page, bypassing any cache.
func (o *Orchestrator) scan(ctx context.Context, token string) ([]domain.Product, error) {
	var all []domain.Product
	now := o.now()
	for page := 0; page < maxScanPages; page++ {
		raw, err := o.products.ListProducts(ctx, token, page, o.cfg.ScanPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, catalog.MapProducts(raw.Content, now)...)
		if raw.Last || len(raw.Content) == 0 || page+1 >= raw.TotalPages {
			return all, nil
		}
	}
	o.logger.Warn("catalog scan stopped at page limit", zap.Int("pages", maxScanPages))
	return all, nil
}

// begin supersedes any pending confirmation and marks the run in flight.
// The returned sequence identifies the run.
func (o *Orchestrator) begin() (seq uint64) {
	o.mutate(func(st *State) bool {
		o.seq++
		seq = o.seq
		o.stopTimer()
		*st = State{Generating: true}
		return true
	})
	return seq
}

// finish clears Generating unless a newer run has started since.
func (o *Orchestrator) finish(seq uint64) {
	o.mutate(func(st *State) bool {
		if o.seq != seq {
			return false
		}
		st.Generating = false
		return true
	})
}

// confirm raises Generated and schedules its one-shot clear. A superseded
// run neither raises the flag nor lets its timer clear a newer one.
func (o *Orchestrator) confirm(seq uint64) {
	o.mutate(func(st *State) bool {
		if o.seq != seq {
			return false
		}
		st.Generated = true
		o.timer = time.AfterFunc(o.cfg.ConfirmTTL, func() {
			o.mutate(func(st *State) bool {
				if o.seq != seq || !st.Generated {
					return false
				}
				st.Generated = false
				o.timer = nil
				return true
			})
		})
		return true
	})
}

// mutate applies fn under the state lock and publishes the result when fn
// reports a change.
func (o *Orchestrator) mutate(fn func(*State) bool) {
	o.subject.UpdateIf(func() (State, bool) {
		o.mu.Lock()
		defer o.mu.Unlock()
		changed := fn(&o.state)
		return o.state, changed
	})
}

func (o *Orchestrator) stopTimer() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) reject(f *Failure) *Failure {
	if f.Err != nil {
		o.logger.Warn("report failed", zap.String("reason", string(f.Reason)), zap.Error(f.Err))
	} else {
		o.logger.Debug("report rejected", zap.String("reason", string(f.Reason)))
	}
	o.notifier.Notify(Notification{Level: LevelError, Title: f.Title, Description: f.Description})
	return f
}

func toTransport(req domain.ReportRequest) transport.ReportRequest {
	return transport.ReportRequest{
		Type:          req.Type,
		Email:         req.Email,
		WhatsApp:      req.WhatsApp,
		Name:          req.Name,
		StartDate:     req.Range.StartDate,
		EndDate:       req.Range.EndDate,
		TotalProdutos: req.Totals.Units,
		ValorTotal:    json.Number(req.Totals.Value.StringFixed(2)),
	}
}
