package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// La info del wallet no tiene endpoint propio: viene embebida como variable JS
// en la página del inventario.
var walletInfoRe = regexp.MustCompile(`var g_rgWalletInfo = ({.*})`)

// FetchFeeParameters scrapea los parámetros de comisión del wallet de la
// página del inventario y fija la divisa del client. Implementa
// ports.WalletProvider. Se llama una vez por sesión, antes de procesar items.
func (c *Client) FetchFeeParameters(ctx context.Context) (domain.FeeParameters, error) {
	path := fmt.Sprintf("/profiles/%s/inventory/", c.steamID)
	body, status, err := c.get(ctx, path, nil, true)
	if err != nil {
		return domain.FeeParameters{}, fmt.Errorf("steam.FetchFeeParameters: %w", err)
	}
	if status != http.StatusOK {
		return domain.FeeParameters{}, fmt.Errorf("steam.FetchFeeParameters: status %d: %w", status, ErrBadResponse)
	}

	m := walletInfoRe.FindSubmatch(body)
	if m == nil {
		// sin wallet info en la página casi siempre es cookie caducada
		return domain.FeeParameters{}, fmt.Errorf("steam.FetchFeeParameters: no wallet info in page: %w", ErrCookieExpired)
	}

	var info map[string]any
	if err := json.Unmarshal(m[1], &info); err != nil {
		return domain.FeeParameters{}, fmt.Errorf("steam.FetchFeeParameters: decode wallet info: %w", ErrBadResponse)
	}
	// steam marca success=false (o 0) cuando la cookie caducó
	if !truthy(info["success"]) {
		return domain.FeeParameters{}, fmt.Errorf("steam.FetchFeeParameters: %w", ErrCookieExpired)
	}

	params := domain.FeeParameters{
		BaseFee:                    coerceInt(info, "wallet_fee_base", 0),
		FeePercent:                 coerceFloat(info, "wallet_fee_percent", 0.05),
		MinimumFee:                 coerceInt(info, "wallet_fee_minimum", 1),
		PublisherFeePercentDefault: coerceFloat(info, "wallet_publisher_fee_percent_default", 0.10),
		Currency:                   coerceInt(info, "wallet_currency", 1),
	}
	c.SetCurrency(params.Currency)
	return params, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return false
	}
}

// coerceInt lee un campo del wallet info aceptando número o string.
func coerceInt(info map[string]any, key string, def int) int {
	v, ok := info[key]
	if !ok {
		return def
	}
	n, err := asInt(v)
	if err != nil {
		return def
	}
	return n
}

func coerceFloat(info map[string]any, key string, def float64) float64 {
	v, ok := info[key]
	if !ok {
		return def
	}
	f, err := asFloat(v)
	if err != nil {
		return def
	}
	return f
}
