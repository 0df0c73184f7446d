package domain

import "math"

// solverMaxIterations acota la búsqueda iterativa de SolveFee. Tras agotar las
// iteraciones se devuelve el mejor desglose alcanzado, no un error.
const solverMaxIterations = 10

// FeeParameters son los parámetros de comisión de la cuenta, cargados una vez
// por sesión desde la info del wallet. Inmutables durante el run.
//
// Los importes van en la unidad mínima de la divisa (céntimos).
type FeeParameters struct {
	BaseFee                    int     // comisión fija del market
	FeePercent                 float64 // fracción en [0,1)
	MinimumFee                 int     // comisión mínima del market
	PublisherFeePercentDefault float64 // fracción en [0,1), usada si el item no trae la suya
	Currency                   int     // código de divisa del wallet
}

// FeeBreakdown es el desglose de comisiones para un net dado. Gross es lo que
// paga el comprador: Net + TotalFee.
type FeeBreakdown struct {
	MarketFee    int
	PublisherFee int
	TotalFee     int
	Net          int
	Gross        int
}

// FeeFor calcula el desglose de comisiones para un net en céntimos (función
// directa: de lo que recibe el vendedor a lo que paga el comprador).
//
// La comisión del publisher tiene un mínimo de 1 céntimo cuando su porcentaje
// es > 0, igual que hace el propio market.
func (p FeeParameters) FeeFor(net int, publisherPct float64) FeeBreakdown {
	marketFee := int(math.Floor(math.Max(float64(net)*p.FeePercent, float64(p.MinimumFee)) + float64(p.BaseFee)))
	publisherFee := 0
	if publisherPct > 0 {
		publisherFee = int(math.Floor(math.Max(float64(net)*publisherPct, 1.0)))
	}
	return FeeBreakdown{
		MarketFee:    marketFee,
		PublisherFee: publisherFee,
		TotalFee:     marketFee + publisherFee,
		Net:          net,
		Gross:        net + marketFee + publisherFee,
	}
}

// SolveFee invierte FeeFor: busca el net cuyo gross coincide con grossCents.
// Los floor de FeeFor crean mesetas y huecos, así que la igualdad exacta puede
// no existir; la búsqueda está acotada a solverMaxIterations pasos.
//
// Si tras un paso por debajo (gross < objetivo) la búsqueda se pasa por
// encima, retrocede al punto por debajo y absorbe el residuo completo en la
// comisión del market, cerrando el desglose en el gross pedido.
func (p FeeParameters) SolveFee(grossCents int, publisherPct float64) FeeBreakdown {
	est := int(float64(grossCents-p.BaseFee) / (p.FeePercent + publisherPct + 1))
	everUndershot := false

	fees := p.FeeFor(est, publisherPct)
	for i := 0; fees.Gross != grossCents && i < solverMaxIterations; i++ {
		if fees.Gross > grossCents {
			if everUndershot {
				fees = p.FeeFor(est-1, publisherPct)
				residual := grossCents - fees.Gross
				fees.MarketFee += residual
				fees.TotalFee += residual
				fees.Gross = grossCents
				break
			}
			est--
		} else {
			everUndershot = true
			est++
		}
		fees = p.FeeFor(est, publisherPct)
	}
	return fees
}

// PublisherPercentOrDefault devuelve pct si está presente, o el default de la
// cuenta si no.
func (p FeeParameters) PublisherPercentOrDefault(pct *float64) float64 {
	if pct != nil {
		return *pct
	}
	return p.PublisherFeePercentDefault
}
