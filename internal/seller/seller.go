package seller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/steamseller/internal/domain"
	"github.com/alejandrodnm/steamseller/internal/ports"
	"github.com/alejandrodnm/steamseller/internal/pricing"
)

// Config contiene la configuración del orquestador.
type Config struct {
	Workers int  // goroutines para pricing paralelo (0 = NumCPU*2)
	DryRun  bool // calcula precios pero no envía órdenes de venta
}

// Seller es el orquestador de un run completo: wallet → inventario → pricing
// por item → listado → journal y notificación.
type Seller struct {
	cfg       Config
	inventory ports.InventoryProvider
	market    ports.MarketDataProvider
	wallet    ports.WalletProvider
	lister    ports.Lister
	journal   ports.Journal
	notifier  ports.Notifier
	policy    *pricing.Policy

	now func() time.Time
}

// New crea un Seller con todas las dependencias inyectadas. journal y
// notifier pueden ser nil.
func New(
	cfg Config,
	inventory ports.InventoryProvider,
	market ports.MarketDataProvider,
	wallet ports.WalletProvider,
	lister ports.Lister,
	journal ports.Journal,
	notifier ports.Notifier,
	policy *pricing.Policy,
) *Seller {
	return &Seller{
		cfg:       cfg,
		inventory: inventory,
		market:    market,
		wallet:    wallet,
		lister:    lister,
		journal:   journal,
		notifier:  notifier,
		policy:    policy,
		now:       time.Now,
	}
}

// Run ejecuta una pasada completa sobre el inventario. Un error no nil es de
// nivel de sesión (cookie caducada, fórmula mal configurada, inventario
// inaccesible); los fallos por item quedan contabilizados en el resumen.
func (s *Seller) Run(ctx context.Context) (domain.RunSummary, error) {
	started := s.now().UTC()
	summary := domain.RunSummary{ID: uuid.NewString(), StartedAt: started}

	slog.Info("run starting", "run_id", summary.ID, "dry_run", s.cfg.DryRun, "workers", s.cfg.Workers)

	fees, err := s.wallet.FetchFeeParameters(ctx)
	if err != nil {
		return summary, fmt.Errorf("seller.Run: fetch wallet: %w", err)
	}
	slog.Debug("wallet fee parameters",
		"base_fee", fees.BaseFee,
		"fee_percent", fees.FeePercent,
		"currency", fees.Currency,
	)

	items, err := s.inventory.FetchInventory(ctx)
	if err != nil {
		return summary, fmt.Errorf("seller.Run: fetch inventory: %w", err)
	}
	summary.Total = len(items)
	slog.Debug("pricing inventory", "items", len(items))

	results, err := s.priceConcurrent(ctx, fees, items)
	if err != nil {
		return summary, err
	}

	for i := range results {
		r := &results[i]
		if r.Failed || r.Decision.Outcome != domain.OutcomeListable {
			continue
		}
		if s.cfg.DryRun {
			slog.Info("would list item",
				"asset_id", r.Item.AssetID,
				"name", r.Item.MarketName,
				"price", r.Decision.Price,
				"net_cents", r.NetCents,
			)
			continue
		}
		s.listItem(ctx, r)
	}

	summary.Finished = s.now().UTC()
	s.tally(&summary, results)

	slog.Info("run complete",
		"run_id", summary.ID,
		"total", summary.Total,
		"listed", summary.Listed,
		"skipped_type", summary.SkippedType,
		"skipped_liquidity", summary.SkippedLiquidity,
		"skipped_price", summary.SkippedPrice,
		"skipped_data", summary.SkippedData,
		"failed", summary.Failed,
		"duration", summary.Finished.Sub(summary.StartedAt).Round(time.Millisecond),
	)

	if s.journal != nil {
		if err := s.journal.SaveRun(ctx, summary, results); err != nil {
			slog.Warn("journal error", "err", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, summary, results); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	return summary, nil
}

// priceItem obtiene los datos de mercado de un item, decide y, si es
// listable, resuelve la comisión. Devuelve error solo para fallos per-item;
// los errores de sesión se propagan dentro del ItemResult vía sessionErr en
// el pool.
func (s *Seller) priceItem(ctx context.Context, fees domain.FeeParameters, item domain.Item) (domain.ItemResult, error) {
	result := domain.ItemResult{Item: item}

	history, err := s.market.FetchPriceHistory(ctx, item)
	if err != nil {
		return result, fmt.Errorf("price history: %w", err)
	}
	book, err := s.market.FetchOrderBook(ctx, item)
	if err != nil {
		return result, fmt.Errorf("order book: %w", err)
	}

	pctx := domain.PricingContext{History: history, Book: book, Now: s.now().UTC()}
	decision, err := s.policy.Decide(item, pctx)
	if err != nil {
		return result, err
	}
	result.Decision = decision

	if decision.Outcome == domain.OutcomeListable {
		gross := int(math.Round(decision.Price * 100))
		breakdown := fees.SolveFee(gross, fees.PublisherPercentOrDefault(item.PublisherFeePercent))
		result.FeeCents = breakdown.TotalFee
		result.NetCents = breakdown.Net
	}

	return result, nil
}

// listItem envía la orden de venta y anota el resultado en el ItemResult.
func (s *Seller) listItem(ctx context.Context, r *domain.ItemResult) {
	amount := r.Item.Amount
	if amount <= 0 {
		amount = 1
	}

	listing, err := s.lister.ListItem(ctx, r.Item, r.NetCents, amount)
	if err != nil {
		slog.Warn("list item failed",
			"asset_id", r.Item.AssetID,
			"name", r.Item.MarketName,
			"err", err,
		)
		r.Failed = true
		r.Reason = err.Error()
		return
	}
	if !listing.Accepted {
		slog.Warn("listing rejected",
			"asset_id", r.Item.AssetID,
			"name", r.Item.MarketName,
			"message", listing.Message,
		)
		r.Failed = true
		r.Reason = listing.Message
		return
	}

	r.Listed = true
	r.Confirmation = listing.Confirmation
	slog.Info("item listed",
		"asset_id", r.Item.AssetID,
		"name", r.Item.MarketName,
		"price", r.Decision.Price,
		"net_cents", r.NetCents,
		"confirmation", listing.Confirmation.String(),
	)
}

// tally acumula los contadores del resumen a partir de los resultados.
func (s *Seller) tally(summary *domain.RunSummary, results []domain.ItemResult) {
	for _, r := range results {
		switch {
		case r.Listed:
			summary.Listed++
		case r.Failed:
			summary.Failed++
		case r.Decision.Outcome == domain.OutcomeBlockedByType:
			summary.SkippedType++
		case r.Decision.Outcome == domain.OutcomeBlockedByLiquidity:
			summary.SkippedLiquidity++
		case r.Decision.Outcome == domain.OutcomeBlockedByPrice:
			summary.SkippedPrice++
		case r.Decision.Outcome == domain.OutcomeNoData:
			summary.SkippedData++
		}
	}
}

// sessionError distingue los errores que invalidan el run completo de los
// fallos recuperables por item.
func sessionError(err error) bool {
	return errors.Is(err, domain.ErrSessionExpired) ||
		errors.Is(err, domain.ErrBadFormulaArgument) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
