package steam_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/steamseller/internal/adapters/steam"
	"github.com/alejandrodnm/steamseller/internal/domain"
)

const testSteamID = "76561198000000000"

func newTestClient(srv *httptest.Server) *steam.Client {
	return steam.NewClient(steam.Config{
		BaseURL:     srv.URL,
		LoginSecure: "cookie",
		SteamID:     testSteamID,
		Language:    "english",
		AppID:       753,
		ContextID:   "6",
	})
}

func testItem() domain.Item {
	return domain.Item{
		AppID:          753,
		ContextID:      "6",
		AssetID:        "111",
		MarketHashName: "123-Trading Card",
	}
}

const inventoryPage1 = `{
	"success": 1,
	"more_items": 1,
	"last_assetid": "111",
	"assets": [
		{"appid": 753, "contextid": "6", "assetid": "111", "classid": "c1", "instanceid": "i1", "amount": "1"}
	],
	"descriptions": [
		{
			"appid": 753, "classid": "c1", "instanceid": "i1",
			"name": "Card A", "market_name": "Card A", "market_hash_name": "123-Card A",
			"type": "Trading Card", "tradable": 1, "marketable": 1,
			"tags": [
				{"category": "item_class", "internal_name": "item_class_2"},
				{"category": "cardborder", "internal_name": "cardborder_0"}
			]
		}
	]
}`

const inventoryPage2 = `{
	"success": 1,
	"assets": [
		{"appid": 753, "contextid": "6", "assetid": "222", "classid": "c2", "instanceid": "i2", "amount": "1"},
		{"appid": 753, "contextid": "6", "assetid": "333", "classid": "c3", "instanceid": "i3", "amount": "1"}
	],
	"descriptions": [
		{
			"appid": 753, "classid": "c2", "instanceid": "i2",
			"name": "Emote", "market_name": "Emote", "market_hash_name": "123-Emote",
			"type": "Emoticon", "tradable": 1, "marketable": 0,
			"tags": [{"category": "item_class", "internal_name": "item_class_4"}]
		},
		{
			"appid": 753, "classid": "c3", "instanceid": "i3",
			"name": "Broken", "market_name": "Broken", "market_hash_name": "123-Broken",
			"type": "???", "tradable": 1, "marketable": 1,
			"tags": [{"category": "item_class", "internal_name": "item_class_2"}]
		}
	]
}`

func TestFetchInventory_Paginates(t *testing.T) {
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, fmt.Sprintf("/inventory/%s/753/6", testSteamID), r.URL.Path)
		pages++
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("start_assetid") == "" {
			fmt.Fprint(w, inventoryPage1)
			return
		}
		assert.Equal(t, "111", r.URL.Query().Get("start_assetid"))
		fmt.Fprint(w, inventoryPage2)
	}))
	defer srv.Close()

	items, err := newTestClient(srv).FetchInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	// el item con tags inclasificables (cardborder ausente) se descarta
	require.Len(t, items, 2)

	card := items[0]
	assert.Equal(t, "111", card.AssetID)
	assert.Equal(t, domain.CategoryNormalCard, card.Category)
	assert.Equal(t, 20, card.ClassCode)
	assert.True(t, card.Marketable)
	assert.Equal(t, "Trading Card", card.TypeDetail)

	emote := items[1]
	assert.Equal(t, domain.CategoryOther, emote.Category)
	assert.Equal(t, 4, emote.ClassCode)
	assert.False(t, emote.Marketable)
}

func TestFetchInventory_Private(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchInventory(context.Background())
	assert.ErrorIs(t, err, steam.ErrInventoryPrivate)
}

func TestFetchPriceHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/market/pricehistory/", r.URL.Path)
		assert.Equal(t, "753", r.URL.Query().Get("appid"))
		assert.Equal(t, "123-Trading Card", r.URL.Query().Get("market_hash_name"))
		fmt.Fprint(w, `{"success": true, "prices": [
			["Mar 14 2021 01: +0", 0.223, "5"],
			["not a date", 1.0, "1"],
			["Mar 15 2021 02: +0", 0.25, "3"]
		]}`)
	}))
	defer srv.Close()

	history, err := newTestClient(srv).FetchPriceHistory(context.Background(), testItem())
	require.NoError(t, err)

	// la fila malformada se tolera y se salta
	require.Len(t, history, 2)
	assert.InDelta(t, 0.223, history[0].Price, 1e-9)
	assert.Equal(t, 5, history[0].Volume)
	assert.InDelta(t, 0.25, history[1].Price, 1e-9)
}

func TestFetchPriceHistory_CookieExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchPriceHistory(context.Background(), testItem())
	assert.ErrorIs(t, err, steam.ErrCookieExpired)
}

func TestFetchOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/market/listings/753/123-Trading Card":
			fmt.Fprint(w, `<script>Market_LoadOrderSpread( 12345 );</script>`)
		case "/market/itemordershistogram":
			assert.Equal(t, "12345", r.URL.Query().Get("item_nameid"))
			fmt.Fprint(w, `{
				"success": 1,
				"highest_buy_order": "950",
				"lowest_sell_order": "1000",
				"buy_order_graph": [[9.5, 3, "3 buy orders"], [9.0, 10, "10 buy orders"]],
				"sell_order_graph": [[10.0, 5, "5 sell orders"], [11.0, 12, "12 sell orders"]]
			}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	book, err := newTestClient(srv).FetchOrderBook(context.Background(), testItem())
	require.NoError(t, err)

	require.NotNil(t, book.HighestBuyOrder)
	assert.InDelta(t, 9.5, *book.HighestBuyOrder, 1e-9)
	require.NotNil(t, book.LowestSellOrder)
	assert.InDelta(t, 10.0, *book.LowestSellOrder, 1e-9)
	assert.Equal(t, 10, book.TotalBuyVolume())
	assert.Equal(t, 12, book.TotalSellVolume())
}

func TestFetchOrderBook_EmptySides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/market/listings/753/123-Trading Card":
			fmt.Fprint(w, `Market_LoadOrderSpread( 7 )`)
		default:
			fmt.Fprint(w, `{"success": 1, "highest_buy_order": null, "lowest_sell_order": null,
				"buy_order_graph": [], "sell_order_graph": []}`)
		}
	}))
	defer srv.Close()

	book, err := newTestClient(srv).FetchOrderBook(context.Background(), testItem())
	require.NoError(t, err)
	assert.Nil(t, book.HighestBuyOrder)
	assert.Nil(t, book.LowestSellOrder)
	assert.Equal(t, 0, book.TotalBuyVolume())
	assert.Equal(t, 0, book.TotalSellVolume())
}

func TestFetchFeeParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, fmt.Sprintf("/profiles/%s/inventory/", testSteamID), r.URL.Path)
		fmt.Fprint(w, `<script>
			var g_rgWalletInfo = {"wallet_currency":3,"wallet_fee_base":"0","wallet_fee_percent":"0.05","wallet_fee_minimum":"1","wallet_publisher_fee_percent_default":"0.10","success":1};
		</script>`)
	}))
	defer srv.Close()

	params, err := newTestClient(srv).FetchFeeParameters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, params.BaseFee)
	assert.InDelta(t, 0.05, params.FeePercent, 1e-9)
	assert.Equal(t, 1, params.MinimumFee)
	assert.InDelta(t, 0.10, params.PublisherFeePercentDefault, 1e-9)
	assert.Equal(t, 3, params.Currency)
}

func TestFetchFeeParameters_ExpiredCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>please log in</html>`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchFeeParameters(context.Background())
	assert.ErrorIs(t, err, steam.ErrCookieExpired)
}

func TestListItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/market/sellitem/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "111", r.PostForm.Get("assetid"))
		assert.Equal(t, "1074", r.PostForm.Get("price"))
		assert.Equal(t, "1", r.PostForm.Get("amount"))
		assert.Contains(t, r.Header.Get("Referer"), testSteamID)
		fmt.Fprint(w, `{"success": true, "requires_confirmation": 1, "needs_mobile_confirmation": true, "needs_email_confirmation": false}`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv).ListItem(context.Background(), testItem(), 1074, 1)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, domain.ConfirmationMobile, result.Confirmation)
}
