package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// ListItem publica un item en el market. netCents es lo que recibe el
// vendedor tras comisiones; amount la cantidad a listar. Implementa
// ports.Lister.
func (c *Client) ListItem(ctx context.Context, item domain.Item, netCents, amount int) (domain.ListingResult, error) {
	form := url.Values{}
	form.Set("sessionid", dummySessionID)
	form.Set("appid", strconv.Itoa(item.AppID))
	form.Set("contextid", item.ContextID)
	form.Set("assetid", item.AssetID)
	form.Set("amount", strconv.Itoa(amount))
	form.Set("price", strconv.Itoa(netCents))

	// Steam valida el Referer contra la página del inventario.
	referer := fmt.Sprintf("%s/profiles/%s/inventory/", c.base, c.steamID)
	body, status, err := c.postForm(ctx, "/market/sellitem/", referer, form)
	if err != nil {
		return domain.ListingResult{}, fmt.Errorf("steam.ListItem %q: %w", item.MarketHashName, err)
	}
	if status != http.StatusOK {
		return domain.ListingResult{}, fmt.Errorf("steam.ListItem %q: status %d: %w",
			item.MarketHashName, status, ErrBadResponse)
	}

	var resp sellItemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ListingResult{}, fmt.Errorf("steam.ListItem %q: decode: %w", item.MarketHashName, ErrBadResponse)
	}

	result := domain.ListingResult{
		Accepted: resp.Success,
		Message:  resp.Message,
	}
	if resp.RequiresConfirmation == 1 {
		switch {
		case resp.NeedsMobileConfirmation:
			result.Confirmation = domain.ConfirmationMobile
		case resp.NeedsEmailConfirmation:
			result.Confirmation = domain.ConfirmationEmail
		}
	}
	return result, nil
}
