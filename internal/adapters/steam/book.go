package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// El item_nameid no sale en ninguna API: hay que pescarlo del JS de la página
// de listados del item.
var orderSpreadRe = regexp.MustCompile(`Market_LoadOrderSpread\(\s*(\d+)\s*\)`)

// fetchItemNameID scrapea el item_nameid de la página de listados del item.
func (c *Client) fetchItemNameID(ctx context.Context, item domain.Item) (int, error) {
	path := fmt.Sprintf("/market/listings/%d/%s", item.AppID, url.PathEscape(item.MarketHashName))
	body, status, err := c.get(ctx, path, nil, false)
	if err != nil {
		return 0, fmt.Errorf("steam.fetchItemNameID %q: %w", item.MarketHashName, err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("steam.fetchItemNameID %q: status %d: %w", item.MarketHashName, status, ErrBadResponse)
	}
	m := orderSpreadRe.FindSubmatch(body)
	if m == nil {
		return 0, fmt.Errorf("steam.fetchItemNameID %q: no order spread in page: %w", item.MarketHashName, ErrBadResponse)
	}
	id, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("steam.fetchItemNameID %q: %w", item.MarketHashName, ErrBadResponse)
	}
	return id, nil
}

// FetchOrderBook obtiene el snapshot del order book de un item via el
// histograma de órdenes. Implementa la otra mitad de ports.MarketDataProvider.
func (c *Client) FetchOrderBook(ctx context.Context, item domain.Item) (domain.PriceSnapshot, error) {
	nameID, err := c.fetchItemNameID(ctx, item)
	if err != nil {
		return domain.PriceSnapshot{}, err
	}

	params := url.Values{}
	params.Set("item_nameid", strconv.Itoa(nameID))
	params.Set("language", c.language)
	params.Set("currency", strconv.Itoa(c.currency))

	body, status, err := c.get(ctx, "/market/itemordershistogram", params, false)
	if err != nil {
		return domain.PriceSnapshot{}, fmt.Errorf("steam.FetchOrderBook %q: %w", item.MarketHashName, err)
	}
	if status != http.StatusOK {
		return domain.PriceSnapshot{}, fmt.Errorf("steam.FetchOrderBook %q: status %d: %w",
			item.MarketHashName, status, ErrBadResponse)
	}

	var resp histogramResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.PriceSnapshot{}, fmt.Errorf("steam.FetchOrderBook %q: decode: %w", item.MarketHashName, ErrBadResponse)
	}
	if resp.Success != 1 {
		return domain.PriceSnapshot{}, fmt.Errorf("steam.FetchOrderBook %q: success=%d: %w",
			item.MarketHashName, resp.Success, ErrBadResponse)
	}

	return domain.PriceSnapshot{
		HighestBuyOrder: centsStringToPrice(resp.HighestBuyOrder),
		LowestSellOrder: centsStringToPrice(resp.LowestSellOrder),
		BuyLevels:       toLevels(resp.BuyOrderGraph),
		SellLevels:      toLevels(resp.SellOrderGraph),
	}, nil
}

// centsStringToPrice convierte el mejor precio del histograma: llega como
// string de céntimos cuando el lado tiene órdenes, y como otra cosa (null,
// número) cuando no. Solo el string cuenta como presente.
func centsStringToPrice(raw json.RawMessage) *float64 {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	cents, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	price := float64(cents) / 100
	return &price
}

func toLevels(graph []graphLevel) []domain.BookLevel {
	if len(graph) == 0 {
		return nil
	}
	levels := make([]domain.BookLevel, len(graph))
	for i, g := range graph {
		levels[i] = domain.BookLevel{
			Price:            g.Price,
			CumulativeVolume: g.Volume,
			Label:            g.Label,
		}
	}
	return levels
}
