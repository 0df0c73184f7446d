package ports

import (
	"context"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// MarketDataProvider obtiene los datos de mercado de un item: historia de
// ventas y snapshot del order book. El engine de pricing solo ve datos ya
// validados; los reintentos y el rate limiting viven en el adapter.
type MarketDataProvider interface {
	// FetchPriceHistory devuelve las ventas históricas ordenadas ascendente
	// por tiempo.
	FetchPriceHistory(ctx context.Context, item domain.Item) (domain.PriceHistory, error)

	// FetchOrderBook devuelve el snapshot actual del book del item.
	FetchOrderBook(ctx context.Context, item domain.Item) (domain.PriceSnapshot, error)
}

// WalletProvider obtiene los parámetros de comisión de la cuenta. Se consulta
// una vez por sesión.
type WalletProvider interface {
	FetchFeeParameters(ctx context.Context) (domain.FeeParameters, error)
}

// Lister publica un item en el market al precio neto dado (céntimos que
// recibe el vendedor).
type Lister interface {
	ListItem(ctx context.Context, item domain.Item, netCents, amount int) (domain.ListingResult, error)
}
