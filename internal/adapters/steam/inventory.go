package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// inventoryPageSize es el máximo de assets por página que acepta el endpoint.
const inventoryPageSize = 5000

// descKey identifica una descripción dentro del inventario.
type descKey struct {
	appID      int
	classID    string
	instanceID string
}

// FetchInventory pagina el inventario del usuario con el cursor start_assetid
// y combina assets con descripciones. Implementa ports.InventoryProvider.
func (c *Client) FetchInventory(ctx context.Context) ([]domain.Item, error) {
	var assets []assetEntry
	descriptions := make(map[descKey]descriptionEntry)

	lastAssetID := ""
	for {
		params := url.Values{}
		params.Set("l", c.language)
		params.Set("count", strconv.Itoa(inventoryPageSize))
		if lastAssetID != "" {
			params.Set("start_assetid", lastAssetID)
		}

		path := fmt.Sprintf("/inventory/%s/%d/%s", c.steamID, c.appID, c.contextID)
		body, status, err := c.get(ctx, path, params, true)
		if err != nil {
			return nil, fmt.Errorf("steam.FetchInventory: %w", err)
		}
		if status == http.StatusForbidden {
			return nil, fmt.Errorf("steam.FetchInventory: user %s: %w", c.steamID, ErrInventoryPrivate)
		}

		var page inventoryResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("steam.FetchInventory: decode page: %w", ErrBadResponse)
		}
		if page.Success != 1 {
			return nil, fmt.Errorf("steam.FetchInventory: success=%d: %w", page.Success, ErrBadResponse)
		}

		assets = append(assets, page.Assets...)
		for _, d := range page.Descriptions {
			descriptions[descKey{d.AppID, d.ClassID, d.InstanceID}] = d
		}

		if page.MoreItems != 1 {
			break
		}
		if page.LastAssetID == "" {
			return nil, fmt.Errorf("steam.FetchInventory: more_items without last_assetid: %w", ErrBadResponse)
		}
		lastAssetID = page.LastAssetID
	}

	items := make([]domain.Item, 0, len(assets))
	for _, asset := range assets {
		desc, ok := descriptions[descKey{asset.AppID, asset.ClassID, asset.InstanceID}]
		if !ok {
			slog.Warn("asset without description, skipping", "asset_id", asset.AssetID)
			continue
		}
		item, err := buildItem(asset, desc)
		if err != nil {
			// item con tags rotos: se descarta, no tumba el inventario entero
			slog.Warn("skipping unclassifiable item",
				"asset_id", asset.AssetID,
				"market_hash_name", desc.MarketHashName,
				"err", err,
			)
			continue
		}
		items = append(items, item)
	}

	slog.Info("inventory fetched", "steam_id", c.steamID, "items", len(items))
	return items, nil
}

// buildItem mapea asset + descripción al Item de dominio, clasificando sus
// tags de categoría.
func buildItem(asset assetEntry, desc descriptionEntry) (domain.Item, error) {
	tags := make(map[string]string, len(desc.Tags))
	for _, tag := range desc.Tags {
		tags[tag.Category] = tag.InternalName
	}

	code, category, err := domain.ClassifyTags(tags)
	if err != nil {
		return domain.Item{}, err
	}

	amount, err := strconv.Atoi(asset.Amount)
	if err != nil || amount < 1 {
		amount = 1
	}

	var publisherFee *float64
	if desc.PublisherFee != nil {
		if fee, err := asFloat(desc.PublisherFee); err == nil {
			publisherFee = &fee
		}
	}

	return domain.Item{
		AppID:               asset.AppID,
		ContextID:           asset.ContextID,
		AssetID:             asset.AssetID,
		ClassID:             asset.ClassID,
		InstanceID:          asset.InstanceID,
		Amount:              amount,
		Name:                desc.Name,
		TypeDetail:          desc.Type,
		MarketName:          desc.MarketName,
		MarketHashName:      desc.MarketHashName,
		Tradable:            desc.Tradable != 0,
		Marketable:          desc.Marketable != 0,
		PublisherFeePercent: publisherFee,
		ClassCode:           code,
		Category:            category,
	}, nil
}
