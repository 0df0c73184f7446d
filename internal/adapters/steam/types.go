package steam

// types.go — tipos wire de los endpoints de steamcommunity. Los formatos son
// poco uniformes (números como strings, arrays posicionales, campos que
// cambian de tipo según haya datos), así que el mapeo a dominio vive aquí y
// el resto del código no ve nada de esto.

import (
	"encoding/json"
	"fmt"
)

type inventoryResponse struct {
	Success      int                `json:"success"`
	MoreItems    int                `json:"more_items"`
	LastAssetID  string             `json:"last_assetid"`
	Assets       []assetEntry       `json:"assets"`
	Descriptions []descriptionEntry `json:"descriptions"`
}

type assetEntry struct {
	AppID      int    `json:"appid"`
	ContextID  string `json:"contextid"`
	AssetID    string `json:"assetid"`
	ClassID    string `json:"classid"`
	InstanceID string `json:"instanceid"`
	Amount     string `json:"amount"`
}

type descriptionEntry struct {
	AppID          int        `json:"appid"`
	ClassID        string     `json:"classid"`
	InstanceID     string     `json:"instanceid"`
	Name           string     `json:"name"`
	MarketName     string     `json:"market_name"`
	MarketHashName string     `json:"market_hash_name"`
	Type           string     `json:"type"`
	Tradable       int        `json:"tradable"`
	Marketable     int        `json:"marketable"`
	PublisherFee   any        `json:"publisher_fee"` // número o string según el día
	Tags           []tagEntry `json:"tags"`
}

type tagEntry struct {
	Category     string `json:"category"`
	InternalName string `json:"internal_name"`
}

type priceHistoryResponse struct {
	Success bool `json:"success"`

	// cada fila es ["Mar 14 2021 01: +0", 0.223, "5"]
	Prices []json.RawMessage `json:"prices"`
}

type histogramResponse struct {
	Success int `json:"success"`

	// Vienen como string de céntimos cuando el lado tiene órdenes y como
	// número/null cuando no.
	HighestBuyOrder json.RawMessage `json:"highest_buy_order"`
	LowestSellOrder json.RawMessage `json:"lowest_sell_order"`

	BuyOrderGraph  []graphLevel `json:"buy_order_graph"`
	SellOrderGraph []graphLevel `json:"sell_order_graph"`
}

// graphLevel es un nivel [precio, volumen acumulado, texto] del histograma.
type graphLevel struct {
	Price  float64
	Volume int
	Label  string
}

func (g *graphLevel) UnmarshalJSON(data []byte) error {
	var raw []json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		// el tercer elemento es un string, no un número: decodifica como mixto
		var mixed []any
		if err := json.Unmarshal(data, &mixed); err != nil {
			return fmt.Errorf("graph level: %w", err)
		}
		return g.fromMixed(mixed)
	}
	mixed := make([]any, len(raw))
	for i, n := range raw {
		mixed[i] = n
	}
	return g.fromMixed(mixed)
}

func (g *graphLevel) fromMixed(mixed []any) error {
	if len(mixed) < 2 {
		return fmt.Errorf("graph level has %d elements", len(mixed))
	}
	price, err := asFloat(mixed[0])
	if err != nil {
		return fmt.Errorf("graph level price: %w", err)
	}
	volume, err := asFloat(mixed[1])
	if err != nil {
		return fmt.Errorf("graph level volume: %w", err)
	}
	g.Price = price
	g.Volume = int(volume)
	if len(mixed) > 2 {
		if s, ok := mixed[2].(string); ok {
			g.Label = s
		}
	}
	return nil
}

type sellItemResponse struct {
	Success                 bool   `json:"success"`
	RequiresConfirmation    int    `json:"requires_confirmation"`
	NeedsMobileConfirmation bool   `json:"needs_mobile_confirmation"`
	NeedsEmailConfirmation  bool   `json:"needs_email_confirmation"`
	EmailDomain             string `json:"email_domain"`
	Message                 string `json:"message"`
}

// asFloat coacciona los valores que steam a veces manda como número y a veces
// como string.
func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case json.Number:
		return t.Float64()
	case string:
		var n json.Number = json.Number(t)
		return n.Float64()
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// asInt es asFloat truncado a entero.
func asInt(v any) (int, error) {
	f, err := asFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
