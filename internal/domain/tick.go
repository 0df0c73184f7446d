package domain

import "time"

// maxWindowHours es el límite superior de la ventana de historia que acepta
// cualquier consulta. Valores mayores son un error de configuración.
const maxWindowHours = 999999

// PriceTick es una venta histórica del ledger público del market.
type PriceTick struct {
	Time   time.Time // UTC
	Price  float64   // precio de venta por unidad
	Volume int       // unidades vendidas en ese tick
}

// PriceHistory es la secuencia de ventas de un item, ordenada ascendente por
// tiempo. Las consultas escanean hacia atrás desde el tick más reciente.
//
// Todas las comparaciones de ventana truncan a horas enteras: se comparan
// buckets de hora desde epoch, no instantes exactos. El truncado hace el
// borde de la ventana determinista a granularidad de hora.
type PriceHistory []PriceTick

// hourBucket devuelve la hora entera desde epoch del instante dado.
func hourBucket(t time.Time) int64 {
	return t.Unix() / 3600
}

// SalesCount suma el volumen de los ticks dentro de las últimas hours horas.
// Corta el escaneo en el primer tick fuera de la ventana (la secuencia está
// ordenada por tiempo).
func (h PriceHistory) SalesCount(now time.Time, hours int) (int, error) {
	if hours < 0 || hours > maxWindowHours {
		return 0, ErrBadFormulaArgument
	}
	cutoff := hourBucket(now.Add(-time.Duration(hours) * time.Hour))
	total := 0
	for i := len(h) - 1; i >= 0; i-- {
		if hourBucket(h[i].Time) < cutoff {
			break
		}
		total += h[i].Volume
	}
	return total, nil
}

// AveragePrice devuelve la media del precio en la ventana. Con weighted pondera
// por volumen; sin weighted cada tick cuenta una vez.
//
// Escanea la secuencia completa sin cortar: mismo resultado que cortar, pero
// preserva el comportamiento original tal cual para mantener los bordes
// deterministas.
func (h PriceHistory) AveragePrice(now time.Time, hours int, weighted bool) (float64, error) {
	if hours < 0 || hours > maxWindowHours {
		return 0, ErrBadFormulaArgument
	}
	cutoff := hourBucket(now.Add(-time.Duration(hours) * time.Hour))
	var totalPrice float64
	var weight int
	for i := len(h) - 1; i >= 0; i-- {
		if hourBucket(h[i].Time) < cutoff {
			continue
		}
		if weighted {
			totalPrice += h[i].Price * float64(h[i].Volume)
			weight += h[i].Volume
		} else {
			totalPrice += h[i].Price
			weight++
		}
	}
	if weight == 0 {
		return 0, ErrInsufficientData
	}
	return totalPrice / float64(weight), nil
}

// HighestPrice devuelve el precio máximo dentro de la ventana, o 0 si la
// ventana está vacía. Retorna en cuanto encuentra un tick fuera de la ventana.
func (h PriceHistory) HighestPrice(now time.Time, hours int) (float64, error) {
	if hours < 0 || hours > maxWindowHours {
		return 0, ErrBadFormulaArgument
	}
	cutoff := hourBucket(now.Add(-time.Duration(hours) * time.Hour))
	highest := 0.0
	for i := len(h) - 1; i >= 0; i-- {
		if hourBucket(h[i].Time) < cutoff {
			return highest, nil
		}
		if h[i].Price > highest {
			highest = h[i].Price
		}
	}
	return highest, nil
}
