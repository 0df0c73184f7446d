package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// maxBadHistoryRows es el número de filas malformadas que se toleran antes de
// dar la respuesta entera por corrupta.
const maxBadHistoryRows = 10

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// parseSteamTime convierte el formato de fecha del market ("Mar 14 2021 01: +0")
// en un instante UTC con granularidad de hora.
func parseSteamTime(s string) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ":", ""))
	if len(fields) < 4 {
		return time.Time{}, fmt.Errorf("parse steam time %q", s)
	}
	month, ok := months[fields[0]]
	if !ok {
		return time.Time{}, fmt.Errorf("parse steam time %q: bad month", s)
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse steam time %q: bad day", s)
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse steam time %q: bad year", s)
	}
	hour, err := strconv.Atoi(fields[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse steam time %q: bad hour", s)
	}
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC), nil
}

// FetchPriceHistory obtiene las ventas históricas de un item, ordenadas
// ascendente por tiempo. Implementa la mitad de ports.MarketDataProvider.
//
// Un 400 significa cookie caducada: error de sesión, no de item.
func (c *Client) FetchPriceHistory(ctx context.Context, item domain.Item) (domain.PriceHistory, error) {
	params := url.Values{}
	params.Set("appid", strconv.Itoa(item.AppID))
	params.Set("market_hash_name", item.MarketHashName)

	body, status, err := c.get(ctx, "/market/pricehistory/", params, true)
	if err != nil {
		return nil, fmt.Errorf("steam.FetchPriceHistory %q: %w", item.MarketHashName, err)
	}
	if status == http.StatusBadRequest {
		return nil, fmt.Errorf("steam.FetchPriceHistory: %w", ErrCookieExpired)
	}

	var resp priceHistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("steam.FetchPriceHistory %q: decode: %w", item.MarketHashName, ErrBadResponse)
	}
	if !resp.Success {
		return nil, fmt.Errorf("steam.FetchPriceHistory %q: success=false: %w", item.MarketHashName, ErrBadResponse)
	}

	history := make(domain.PriceHistory, 0, len(resp.Prices))
	badRows := 0
	for _, raw := range resp.Prices {
		tick, err := parseHistoryRow(raw)
		if err != nil {
			badRows++
			if badRows > maxBadHistoryRows {
				return nil, fmt.Errorf("steam.FetchPriceHistory %q: too many malformed rows: %w",
					item.MarketHashName, ErrBadResponse)
			}
			continue
		}
		history = append(history, tick)
	}
	if badRows > 0 {
		slog.Debug("price history had malformed rows",
			"market_hash_name", item.MarketHashName, "bad_rows", badRows)
	}
	return history, nil
}

// parseHistoryRow decodifica una fila ["Mar 14 2021 01: +0", 0.223, "5"].
func parseHistoryRow(raw json.RawMessage) (domain.PriceTick, error) {
	var row []any
	if err := json.Unmarshal(raw, &row); err != nil {
		return domain.PriceTick{}, err
	}
	if len(row) < 3 {
		return domain.PriceTick{}, fmt.Errorf("history row has %d elements", len(row))
	}
	ts, ok := row[0].(string)
	if !ok {
		return domain.PriceTick{}, fmt.Errorf("history row timestamp is %T", row[0])
	}
	when, err := parseSteamTime(ts)
	if err != nil {
		return domain.PriceTick{}, err
	}
	price, err := asFloat(row[1])
	if err != nil {
		return domain.PriceTick{}, fmt.Errorf("history row price: %w", err)
	}
	volume, err := asInt(row[2])
	if err != nil {
		return domain.PriceTick{}, fmt.Errorf("history row volume: %w", err)
	}
	return domain.PriceTick{Time: when, Price: price, Volume: volume}, nil
}
