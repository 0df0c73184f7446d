package domain

// BookLevel es un punto de la curva de profundidad acumulada de un lado del
// book. CumulativeVolume es monótono no decreciente a lo largo del lado; la
// última entrada acumula el volumen total del lado.
type BookLevel struct {
	Price            float64
	CumulativeVolume int
	Label            string // texto descriptivo del market, opaco
}

// BookSide identifica un lado del order book.
type BookSide int

const (
	BuySide BookSide = iota
	SellSide
)

func (s BookSide) String() string {
	if s == BuySide {
		return "buy"
	}
	return "sell"
}

// PriceSnapshot es el estado del order book de un item en el momento de la
// consulta. Se construye una vez por intento de pricing y es de solo lectura.
//
// HighestBuyOrder/LowestSellOrder son nil cuando el lado no tiene órdenes.
// BuyLevels va de mayor a menor precio; SellLevels de menor a mayor.
type PriceSnapshot struct {
	HighestBuyOrder *float64
	LowestSellOrder *float64
	BuyLevels       []BookLevel
	SellLevels      []BookLevel
}

// TotalBuyVolume devuelve el volumen total de órdenes de compra pendientes.
func (s PriceSnapshot) TotalBuyVolume() int {
	if len(s.BuyLevels) == 0 {
		return 0
	}
	return s.BuyLevels[len(s.BuyLevels)-1].CumulativeVolume
}

// TotalSellVolume devuelve el volumen total de órdenes de venta pendientes.
func (s PriceSnapshot) TotalSellVolume() int {
	if len(s.SellLevels) == 0 {
		return 0
	}
	return s.SellLevels[len(s.SellLevels)-1].CumulativeVolume
}

// PriceToAbsorb devuelve el precio del primer nivel del lado dado cuyo volumen
// acumulado alcanza backNum unidades. Si backNum supera el volumen total,
// devuelve el precio del último nivel.
func (s PriceSnapshot) PriceToAbsorb(side BookSide, backNum int) (float64, error) {
	if backNum < 0 {
		return 0, ErrBadFormulaArgument
	}
	levels := s.SellLevels
	if side == BuySide {
		levels = s.BuyLevels
	}
	if len(levels) == 0 {
		return 0, ErrInsufficientData
	}
	for _, lvl := range levels {
		if lvl.CumulativeVolume >= backNum {
			return lvl.Price, nil
		}
	}
	return levels[len(levels)-1].Price, nil
}
