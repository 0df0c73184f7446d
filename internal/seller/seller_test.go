package seller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/steamseller/internal/domain"
	"github.com/alejandrodnm/steamseller/internal/pricing"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// --- fakes de los ports ---

type fakeInventory struct {
	items []domain.Item
	err   error
}

func (f *fakeInventory) FetchInventory(context.Context) ([]domain.Item, error) {
	return f.items, f.err
}

type fakeMarket struct {
	mu        sync.Mutex
	histories map[string]domain.PriceHistory
	books     map[string]domain.PriceSnapshot
	errs      map[string]error
}

func (f *fakeMarket) FetchPriceHistory(_ context.Context, item domain.Item) (domain.PriceHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[item.AssetID]; err != nil {
		return nil, err
	}
	return f.histories[item.AssetID], nil
}

func (f *fakeMarket) FetchOrderBook(_ context.Context, item domain.Item) (domain.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.books[item.AssetID], nil
}

type fakeWallet struct {
	params domain.FeeParameters
	err    error
}

func (f *fakeWallet) FetchFeeParameters(context.Context) (domain.FeeParameters, error) {
	return f.params, f.err
}

type listCall struct {
	assetID  string
	netCents int
	amount   int
}

type fakeLister struct {
	mu     sync.Mutex
	calls  []listCall
	result domain.ListingResult
	err    error
}

func (f *fakeLister) ListItem(_ context.Context, item domain.Item, netCents, amount int) (domain.ListingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, listCall{assetID: item.AssetID, netCents: netCents, amount: amount})
	return f.result, f.err
}

type fakeJournal struct {
	summary domain.RunSummary
	results []domain.ItemResult
	saved   bool
}

func (f *fakeJournal) SaveRun(_ context.Context, s domain.RunSummary, r []domain.ItemResult) error {
	f.summary, f.results, f.saved = s, r, true
	return nil
}

func (f *fakeJournal) Close() error { return nil }

type fakeNotifier struct {
	summary  domain.RunSummary
	notified bool
}

func (f *fakeNotifier) Notify(_ context.Context, s domain.RunSummary, _ []domain.ItemResult) error {
	f.summary, f.notified = s, true
	return nil
}

// --- fixtures ---

func steamFees() domain.FeeParameters {
	return domain.FeeParameters{
		BaseFee:                    0,
		FeePercent:                 0.05,
		MinimumFee:                 1,
		PublisherFeePercentDefault: 0.10,
		Currency:                   1,
	}
}

// liquidHistory: 25 ventas a 13.00 hace dos horas, suficiente para una
// ventana de 36h con mínimo 25.
func liquidHistory() domain.PriceHistory {
	h := make(domain.PriceHistory, 25)
	for i := range h {
		h[i] = domain.PriceTick{Time: testNow.Add(-2 * time.Hour), Price: 13.0, Volume: 1}
	}
	return h
}

func liquidBook() domain.PriceSnapshot {
	return domain.PriceSnapshot{
		BuyLevels:  []domain.BookLevel{{Price: 12.0, CumulativeVolume: 10}},
		SellLevels: []domain.BookLevel{{Price: 13.5, CumulativeVolume: 30}},
	}
}

func cardItem(assetID string) domain.Item {
	return domain.Item{
		AppID:          753,
		ContextID:      "6",
		AssetID:        assetID,
		Amount:         1,
		MarketName:     "Armello Trading Card",
		MarketHashName: "330460-Armello Trading Card",
		Marketable:     true,
		ClassCode:      20,
		Category:       domain.CategoryNormalCard,
	}
}

func testPolicy(t *testing.T) *pricing.Policy {
	t.Helper()
	low, high := 1.0, 100.0
	policy, err := pricing.NewPolicy(pricing.Config{
		Liquidity: pricing.LiquidityGates{
			WindowHours:   36,
			MinSales:      25,
			MinSellOrders: 20,
			MinBuyOrders:  0,
		},
		Global: pricing.Bounds{Lowest: &low, Highest: &high},
	}, "averagePrice(24, true) * 0.95")
	require.NoError(t, err)
	return policy
}

func newTestSeller(
	t *testing.T,
	cfg Config,
	inv *fakeInventory,
	market *fakeMarket,
	lister *fakeLister,
	journal *fakeJournal,
	notifier *fakeNotifier,
) *Seller {
	t.Helper()
	s := New(cfg, inv, market, &fakeWallet{params: steamFees()}, lister, journal, notifier, testPolicy(t))
	s.now = func() time.Time { return testNow }
	return s
}

func TestRun_EndToEnd(t *testing.T) {
	// Tres items: uno listable, uno no marketable, uno sin liquidez.
	liquid := cardItem("100")
	blocked := cardItem("200")
	blocked.Marketable = false
	illiquid := cardItem("300")

	inv := &fakeInventory{items: []domain.Item{liquid, blocked, illiquid}}
	market := &fakeMarket{
		histories: map[string]domain.PriceHistory{
			"100": liquidHistory(),
			"300": {{Time: testNow.Add(-2 * time.Hour), Price: 13.0, Volume: 1}},
		},
		books: map[string]domain.PriceSnapshot{
			"100": liquidBook(),
			"300": liquidBook(),
		},
	}
	lister := &fakeLister{result: domain.ListingResult{
		Accepted:     true,
		Confirmation: domain.ConfirmationMobile,
	}}
	journal := &fakeJournal{}
	notifier := &fakeNotifier{}

	s := newTestSeller(t, Config{Workers: 2}, inv, market, lister, journal, notifier)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Listed)
	assert.Equal(t, 1, summary.SkippedType)
	assert.Equal(t, 1, summary.SkippedLiquidity)
	assert.Zero(t, summary.Failed)

	// 13.00 * 0.95 = 12.35 brutos → 1235 céntimos: fee 5% + 10% publisher
	require.Len(t, lister.calls, 1)
	assert.Equal(t, "100", lister.calls[0].assetID)
	assert.Equal(t, 1075, lister.calls[0].netCents)
	assert.Equal(t, 1, lister.calls[0].amount)

	require.True(t, journal.saved)
	require.Len(t, journal.results, 3)
	listed := journal.results[0]
	assert.Equal(t, domain.OutcomeListable, listed.Decision.Outcome)
	assert.InDelta(t, 12.35, listed.Decision.Price, 1e-9)
	assert.Equal(t, 160, listed.FeeCents)
	assert.Equal(t, 1075, listed.NetCents)
	assert.Equal(t, domain.ConfirmationMobile, listed.Confirmation)

	require.True(t, notifier.notified)
	assert.Equal(t, summary.ID, notifier.summary.ID)
}

func TestRun_DryRun(t *testing.T) {
	inv := &fakeInventory{items: []domain.Item{cardItem("100")}}
	market := &fakeMarket{
		histories: map[string]domain.PriceHistory{"100": liquidHistory()},
		books:     map[string]domain.PriceSnapshot{"100": liquidBook()},
	}
	lister := &fakeLister{result: domain.ListingResult{Accepted: true}}

	s := newTestSeller(t, Config{Workers: 1, DryRun: true}, inv, market, lister, &fakeJournal{}, &fakeNotifier{})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, lister.calls)
	assert.Zero(t, summary.Listed)
	assert.Zero(t, summary.Failed)
}

func TestRun_WalletErrorAborts(t *testing.T) {
	s := New(Config{},
		&fakeInventory{}, &fakeMarket{},
		&fakeWallet{err: fmt.Errorf("wallet: %w", domain.ErrSessionExpired)},
		&fakeLister{}, nil, nil, testPolicy(t))

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestRun_SessionErrorAbortsPricing(t *testing.T) {
	inv := &fakeInventory{items: []domain.Item{cardItem("100"), cardItem("200")}}
	market := &fakeMarket{
		histories: map[string]domain.PriceHistory{"200": liquidHistory()},
		books:     map[string]domain.PriceSnapshot{"200": liquidBook()},
		errs: map[string]error{
			"100": fmt.Errorf("fetch history: %w", domain.ErrSessionExpired),
		},
	}
	lister := &fakeLister{result: domain.ListingResult{Accepted: true}}

	s := newTestSeller(t, Config{Workers: 1}, inv, market, lister, &fakeJournal{}, &fakeNotifier{})

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Empty(t, lister.calls)
}

func TestRun_PerItemFailureIsCounted(t *testing.T) {
	inv := &fakeInventory{items: []domain.Item{cardItem("100"), cardItem("200")}}
	market := &fakeMarket{
		histories: map[string]domain.PriceHistory{"200": liquidHistory()},
		books:     map[string]domain.PriceSnapshot{"200": liquidBook()},
		errs:      map[string]error{"100": errors.New("http 500")},
	}
	lister := &fakeLister{result: domain.ListingResult{Accepted: true}}
	journal := &fakeJournal{}

	s := newTestSeller(t, Config{Workers: 1}, inv, market, lister, journal, &fakeNotifier{})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Listed)
	require.Len(t, lister.calls, 1)
	assert.Equal(t, "200", lister.calls[0].assetID)

	require.Len(t, journal.results, 2)
	assert.True(t, journal.results[0].Failed)
	assert.Equal(t, "http 500", journal.results[0].Reason)
}

func TestRun_ListingRejected(t *testing.T) {
	inv := &fakeInventory{items: []domain.Item{cardItem("100")}}
	market := &fakeMarket{
		histories: map[string]domain.PriceHistory{"100": liquidHistory()},
		books:     map[string]domain.PriceSnapshot{"100": liquidBook()},
	}
	lister := &fakeLister{result: domain.ListingResult{
		Accepted: false,
		Message:  "You have too many listings pending confirmation",
	}}

	s := newTestSeller(t, Config{Workers: 1}, inv, market, lister, &fakeJournal{}, &fakeNotifier{})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.Listed)
	assert.Equal(t, 1, summary.Failed)
}
