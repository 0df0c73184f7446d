package seller

// concurrent.go — worker pool para pricing paralelo de items.
//
// Los fetches de historia y book dominan el tiempo de cada item; con el rate
// limiter compartido del cliente, varios workers mantienen la cola de
// peticiones llena sin superar el límite.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// priceConcurrent calcula el precio de todos los items en paralelo. Conserva
// el orden del inventario en los resultados. Un error de sesión detectado en
// cualquier worker cancela el resto y se devuelve; los fallos per-item quedan
// marcados en su ItemResult.
func (s *Seller) priceConcurrent(ctx context.Context, fees domain.FeeParameters, items []domain.Item) ([]domain.ItemResult, error) {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type work struct {
		idx  int
		item domain.Item
	}

	workCh := make(chan work, len(items))
	results := make([]domain.ItemResult, len(items))

	var (
		wg         sync.WaitGroup
		sessionMu  sync.Mutex
		sessionErr error
	)

	abort := func(err error) {
		sessionMu.Lock()
		if sessionErr == nil {
			sessionErr = err
		}
		sessionMu.Unlock()
		cancel()
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				if ctx.Err() != nil {
					results[w.idx] = domain.ItemResult{Item: w.item, Failed: true, Reason: "run aborted"}
					continue
				}

				result, err := s.priceItem(ctx, fees, w.item)
				if err != nil {
					if sessionError(err) {
						abort(err)
						result.Failed = true
						result.Reason = "run aborted"
					} else {
						slog.Warn("price item failed",
							"asset_id", w.item.AssetID,
							"name", w.item.MarketName,
							"err", err,
						)
						result.Failed = true
						result.Reason = err.Error()
					}
				}
				results[w.idx] = result
			}
		}()
	}

	for i, item := range items {
		workCh <- work{idx: i, item: item}
	}
	close(workCh)
	wg.Wait()

	if sessionErr != nil {
		return results, sessionErr
	}

	slog.Debug("concurrent pricing complete", "items", len(items), "workers", workers)
	return results, nil
}
