package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/stockdesk/api/transport"
	"github.com/fastygo/stockdesk/domain"
)

type sessionStub struct{ session domain.Session }

func (s sessionStub) Token() string           { return s.session.Token }
func (s sessionStub) Current() domain.Session { return s.session }

type whatsappStub string

func (w whatsappStub) WhatsApp() string { return string(w) }

type catalogStub struct {
	mu    sync.Mutex
	pages []*transport.ProductPage
	err   error
	calls []int
	sizes []int
}

func (c *catalogStub) ListProducts(_ context.Context, _ string, page, size int) (*transport.ProductPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, page)
	c.sizes = append(c.sizes, size)
	if c.err != nil {
		return nil, c.err
	}
	if page >= len(c.pages) {
		return &transport.ProductPage{Page: page, TotalPages: len(c.pages)}, nil
	}
	return c.pages[page], nil
}

func (c *catalogStub) GetProduct(context.Context, string, string) (*transport.ProductResponse, error) {
	return nil, errors.New("not used")
}
func (c *catalogStub) CreateProduct(context.Context, string, transport.ProductRequest) error {
	return errors.New("not used")
}
func (c *catalogStub) UpdateProduct(context.Context, string, string, transport.ProductRequest) error {
	return errors.New("not used")
}
func (c *catalogStub) DeleteProduct(context.Context, string, string) error {
	return errors.New("not used")
}

func (c *catalogStub) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type reportStub struct {
	mu    sync.Mutex
	err   error
	reqs  []transport.ReportRequest
	token []string
}

func (r *reportStub) GenerateReport(_ context.Context, token string, req transport.ReportRequest) (*transport.ReportResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	r.token = append(r.token, token)
	if r.err != nil {
		return nil, r.err
	}
	ok := true
	return &transport.ReportResponse{OK: &ok, FileURL: "https://files.example.com/r.pdf"}, nil
}

func (r *reportStub) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs)
}

type recorder struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.got[len(r.got)-1]
}

var signedIn = domain.Session{
	IsAuthenticated: true,
	Token:           "tok",
	User:            &domain.User{ID: "1", Email: "ana@example.com", Name: "Ana"},
}

func product(id string, qty int64, price, createdAt string) transport.ProductResponse {
	return transport.ProductResponse{
		ID:        transport.FlexString(id),
		Name:      "p" + id,
		Price:     decimal.RequireFromString(price),
		Quantity:  transport.FlexInt(qty),
		CreatedAt: createdAt,
	}
}

func januaryCatalog() *catalogStub {
	return &catalogStub{pages: []*transport.ProductPage{{
		Content: []transport.ProductResponse{
			product("1", 3, "10.00", "2024-01-15T09:00:00"),
			product("2", 1, "5.00", "2024-02-05T09:00:00"),
		},
		TotalElements: 2,
		TotalPages:    1,
		Last:          true,
	}}}
}

type fixture struct {
	catalog  *catalogStub
	reports  *reportStub
	notifier *recorder
	orch     *Orchestrator
}

func newFixture(t *testing.T, session domain.Session, catalog *catalogStub, ttl time.Duration, whatsapp string) *fixture {
	t.Helper()
	f := &fixture{catalog: catalog, reports: &reportStub{}, notifier: &recorder{}}
	var source whatsappStub
	if whatsapp != "" {
		source = whatsappStub(whatsapp)
	}
	f.orch = New(catalog, f.reports, sessionStub{session: session}, source, f.notifier,
		zaptest.NewLogger(t), Config{ScanPageSize: 1000, ConfirmTTL: ttl})
	t.Cleanup(f.orch.Stop)
	return f
}

func TestRun_JanuaryScenario(t *testing.T) {
	f := newFixture(t, signedIn, januaryCatalog(), time.Hour, "")

	result, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Included)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, int64(3), result.Request.Totals.Units)
	assert.Equal(t, "30.00", result.Request.Totals.Value.StringFixed(2))

	require.Equal(t, 1, f.reports.count())
	sent := f.reports.reqs[0]
	assert.Equal(t, transport.ReportRequest{
		Type:          "Custom",
		Email:         "ana@example.com",
		Name:          "Ana",
		StartDate:     "2024-01-01",
		EndDate:       "2024-01-31",
		TotalProdutos: 3,
		ValorTotal:    "30.00",
	}, sent)
	assert.Equal(t, "tok", f.reports.token[0])
	assert.Equal(t, []int{1000}, f.catalog.sizes)

	st := f.orch.State()
	assert.True(t, st.Generated)
	assert.False(t, st.Generating)
	assert.Equal(t, LevelSuccess, f.notifier.last().Level)
	assert.Contains(t, f.notifier.last().Description, "01/01/2024 to 31/01/2024")
}

func TestRun_EndDateIsInclusiveThroughEndOfDay(t *testing.T) {
	catalog := &catalogStub{pages: []*transport.ProductPage{{
		Content: []transport.ProductResponse{
			product("1", 2, "1.00", "2024-01-31T23:59:59"),
			product("2", 5, "1.00", "2024-02-01T00:00:00"),
			product("3", 7, "1.00", "2024-01-01T00:00:00"),
			product("4", 11, "1.00", "2024-01-31T23:59:59.5"),
			product("5", 13, "1.00", "2024-01-31T23:59:59.999999"),
		},
		TotalPages: 1,
	}}}
	f := newFixture(t, signedIn, catalog, time.Hour, "")

	result, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.NoError(t, err)
	assert.Equal(t, int64(33), result.Request.Totals.Units)
	assert.Equal(t, 4, result.Included)
}

func TestRun_ScansEveryPage(t *testing.T) {
	catalog := &catalogStub{pages: []*transport.ProductPage{
		{Content: []transport.ProductResponse{product("1", 1, "2", "2024-01-10")}, Page: 0, TotalPages: 3},
		{Content: []transport.ProductResponse{product("2", 1, "3", "2024-01-11")}, Page: 1, TotalPages: 3},
		{Content: []transport.ProductResponse{product("3", 1, "4", "2024-01-12")}, Page: 2, TotalPages: 3},
	}}
	f := newFixture(t, signedIn, catalog, time.Hour, "")

	result, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, catalog.calls)
	assert.Equal(t, "9.00", result.Request.Totals.Value.StringFixed(2))
}

func TestRun_IncludesRememberedWhatsApp(t *testing.T) {
	f := newFixture(t, signedIn, januaryCatalog(), time.Hour, "+5511987654321")

	_, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.NoError(t, err)
	assert.Equal(t, "+5511987654321", f.reports.reqs[0].WhatsApp)
}

func TestRun_LocalRejectionsMakeNoCalls(t *testing.T) {
	cases := []struct {
		name       string
		session    domain.Session
		start, end string
		reason     Reason
	}{
		{"no identity", domain.Session{}, "01/01/2024", "31/01/2024", ReasonNoIdentity},
		{"empty start", signedIn, "", "31/01/2024", ReasonIncompleteRange},
		{"partial end", signedIn, "01/01/2024", "31/01", ReasonIncompleteRange},
		{"malformed", signedIn, "31/02/2024", "01/03/2024", ReasonMalformedRange},
		{"inverted", signedIn, "31/01/2024", "01/01/2024", ReasonInvertedRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.session, januaryCatalog(), time.Hour, "")

			result, err := f.orch.Run(context.Background(), tc.start, tc.end)
			assert.Nil(t, result)

			var failure *Failure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, tc.reason, failure.Reason)
			assert.True(t, failure.Local())
			assert.Equal(t, 0, f.catalog.callCount())
			assert.Equal(t, 0, f.reports.count())
			assert.Equal(t, LevelError, f.notifier.last().Level)
			assert.Equal(t, State{}, f.orch.State())
		})
	}
}

func TestRun_ScanFailureNotifies(t *testing.T) {
	catalog := &catalogStub{err: &domain.RemoteError{Status: 403, Message: "Access denied"}}
	f := newFixture(t, signedIn, catalog, time.Hour, "")

	_, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ReasonScan, failure.Reason)
	assert.False(t, failure.Local())
	assert.Equal(t, 0, f.reports.count())

	n := f.notifier.last()
	assert.Equal(t, "could not generate report", n.Title)
	assert.Equal(t, "Access denied", n.Description)
	assert.Equal(t, State{}, f.orch.State())
}

func TestRun_SubmitFailureUsesGenericDescription(t *testing.T) {
	f := newFixture(t, signedIn, januaryCatalog(), time.Hour, "")
	f.reports.err = domain.NewError(domain.ErrCodeTransport, "timeout")

	_, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ReasonSubmit, failure.Reason)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransport))
	assert.Equal(t, "an error occurred while fetching products or generating the report", f.notifier.last().Description)
	assert.False(t, f.orch.State().Generated)
}

func TestRun_GeneratedFlagAutoClears(t *testing.T) {
	f := newFixture(t, signedIn, januaryCatalog(), 20*time.Millisecond, "")

	_, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.NoError(t, err)
	assert.True(t, f.orch.State().Generated)

	assert.Eventually(t, func() bool { return !f.orch.State().Generated }, time.Second, 5*time.Millisecond)
}

func TestRun_NewRunSupersedesPendingConfirmation(t *testing.T) {
	f := newFixture(t, signedIn, januaryCatalog(), time.Hour, "")

	_, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.NoError(t, err)
	require.True(t, f.orch.State().Generated)

	var states []State
	unsubscribe := f.orch.Subscribe(func(s State) { states = append(states, s) })
	defer unsubscribe()

	f.reports.err = errors.New("down")
	_, err = f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.Error(t, err)

	require.NotEmpty(t, states)
	assert.Equal(t, State{Generating: true}, states[0])
	assert.Equal(t, State{}, f.orch.State())

	f.orch.mu.Lock()
	assert.Nil(t, f.orch.timer)
	f.orch.mu.Unlock()
}

func TestRun_StaleTimerDoesNotClearNewConfirmation(t *testing.T) {
	f := newFixture(t, signedIn, januaryCatalog(), 100*time.Millisecond, "")

	_, err := f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = f.orch.Run(context.Background(), "01/01/2024", "31/01/2024")
	require.NoError(t, err)

	// the first timer would have fired by now
	time.Sleep(60 * time.Millisecond)
	assert.True(t, f.orch.State().Generated)

	assert.Eventually(t, func() bool { return !f.orch.State().Generated }, time.Second, 5*time.Millisecond)
}

func TestAggregate_FractionalSecondOnEndDay(t *testing.T) {
	products := []domain.Product{
		{Quantity: 2, Price: decimal.RequireFromString("3.50"), CreatedAt: time.Date(2024, 1, 31, 23, 59, 59, 500_000_000, time.Local)},
		{Quantity: 4, Price: decimal.RequireFromString("1.00"), CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)},
	}

	totals, included := Aggregate(products, domain.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	assert.Equal(t, 1, included)
	assert.Equal(t, int64(2), totals.Units)
	assert.Equal(t, "7.00", totals.Value.StringFixed(2))
}

func TestAggregate_InvalidRange(t *testing.T) {
	totals, included := Aggregate([]domain.Product{{Quantity: 1, CreatedAt: time.Now()}}, domain.DateRange{})
	assert.Equal(t, 0, included)
	assert.Equal(t, int64(0), totals.Units)
	assert.True(t, totals.Value.IsZero())
}

// gatedCatalog holds each ListProducts call until its gate is released.
type gatedCatalog struct {
	*catalogStub

	mu      sync.Mutex
	n       int
	gates   []chan struct{}
	entered chan int
}

func newGatedCatalog(calls int) *gatedCatalog {
	g := &gatedCatalog{catalogStub: januaryCatalog(), entered: make(chan int, calls)}
	for i := 0; i < calls; i++ {
		g.gates = append(g.gates, make(chan struct{}))
	}
	return g
}

func (g *gatedCatalog) ListProducts(ctx context.Context, token string, page, size int) (*transport.ProductPage, error) {
	g.mu.Lock()
	i := g.n
	g.n++
	g.mu.Unlock()
	g.entered <- i
	<-g.gates[i]
	return g.catalogStub.ListProducts(ctx, token, page, size)
}

func TestRun_OverlappingRunsKeepLatestInFlight(t *testing.T) {
	catalog := newGatedCatalog(2)
	orch := New(catalog, &reportStub{}, sessionStub{session: signedIn}, nil, nil,
		zaptest.NewLogger(t), Config{ConfirmTTL: time.Hour})
	t.Cleanup(orch.Stop)

	run := func() <-chan error {
		done := make(chan error, 1)
		go func() {
			_, err := orch.Run(context.Background(), "01/01/2024", "31/01/2024")
			done <- err
		}()
		return done
	}

	first := run()
	require.Equal(t, 0, <-catalog.entered)
	second := run()
	require.Equal(t, 1, <-catalog.entered)

	close(catalog.gates[0])
	require.NoError(t, <-first)
	assert.Equal(t, State{Generating: true}, orch.State())

	close(catalog.gates[1])
	require.NoError(t, <-second)
	assert.Equal(t, State{Generated: true}, orch.State())
}
