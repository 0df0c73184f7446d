package domain

import "time"

// Outcome es el resultado terminal de la política de venta para un item.
type Outcome int

const (
	// OutcomeListable: el item pasó todas las puertas; Price trae el precio.
	OutcomeListable Outcome = iota
	// OutcomeBlockedByType: el tipo del item no está permitido por los filtros.
	OutcomeBlockedByType
	// OutcomeBlockedByLiquidity: el item no alcanza los mínimos de actividad.
	OutcomeBlockedByLiquidity
	// OutcomeBlockedByPrice: el precio calculado se sale de los límites.
	OutcomeBlockedByPrice
	// OutcomeNoData: faltan datos de mercado para calcular el precio.
	OutcomeNoData
)

func (o Outcome) String() string {
	switch o {
	case OutcomeListable:
		return "listable"
	case OutcomeBlockedByType:
		return "blocked_by_type"
	case OutcomeBlockedByLiquidity:
		return "blocked_by_liquidity"
	case OutcomeBlockedByPrice:
		return "blocked_by_price"
	case OutcomeNoData:
		return "no_data"
	default:
		return "unknown"
	}
}

// Decision es el veredicto de la política para un item. Price solo es válido
// con OutcomeListable; es el precio bruto de venta en unidades de divisa.
type Decision struct {
	Outcome Outcome
	Price   float64
}

// PricingContext agrega los datos de mercado de un item para un cálculo de
// precio. Se crea por item y se descarta tras la decisión; ningún estado se
// comparte entre items.
type PricingContext struct {
	History PriceHistory
	Book    PriceSnapshot
	Now     time.Time
}

// ListingResult es la respuesta del market al listar un item.
type ListingResult struct {
	Accepted     bool
	Confirmation Confirmation
	Message      string
}

// Confirmation indica qué confirmación adicional exige el market tras listar.
type Confirmation int

const (
	ConfirmationNone Confirmation = iota
	ConfirmationMobile
	ConfirmationEmail
)

func (c Confirmation) String() string {
	switch c {
	case ConfirmationMobile:
		return "mobile"
	case ConfirmationEmail:
		return "email"
	default:
		return "none"
	}
}

// ItemResult es el resultado final de procesar un item en un run. Failed
// marca fallos recuperables per-item (fetch de datos, listado rechazado);
// Reason lleva el detalle.
type ItemResult struct {
	Item         Item
	Decision     Decision
	FeeCents     int
	NetCents     int
	Listed       bool
	Failed       bool
	Confirmation Confirmation
	Reason       string
}

// RunSummary acumula los contadores de un run completo.
type RunSummary struct {
	ID        string
	StartedAt time.Time
	Finished  time.Time

	Total            int
	Listed           int
	SkippedType      int
	SkippedLiquidity int
	SkippedPrice     int
	SkippedData      int
	Failed           int
}
