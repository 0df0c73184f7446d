package pricing

import (
	"errors"
	"fmt"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// Bounds es un rango de precio opcionalmente acotado por los dos lados.
// Un límite nil deja ese lado abierto; los límites son inclusivos.
type Bounds struct {
	Lowest  *float64
	Highest *float64
}

// Allows devuelve true si el precio cae dentro del rango.
func (b Bounds) Allows(price float64) bool {
	if b.Lowest != nil && price < *b.Lowest {
		return false
	}
	if b.Highest != nil && price > *b.Highest {
		return false
	}
	return true
}

// ClassGate filtra por código de clase del item. Deshabilitada siempre pasa.
type ClassGate struct {
	Enabled bool
	Classes map[int]bool
}

// DetailGate filtra por el string de tipo detallado. Deshabilitada siempre pasa.
type DetailGate struct {
	Enabled bool
	Details map[string]bool
}

// TypeGates son las cuatro puertas independientes de tipo: allow/deny por
// clase y allow/deny por detalle. Todas deben pasar.
type TypeGates struct {
	AllowClasses ClassGate
	DenyClasses  ClassGate
	AllowDetails DetailGate
	DenyDetails  DetailGate
}

// Allows aplica las cuatro puertas sobre el item. Un item no marketable nunca
// pasa.
func (g TypeGates) Allows(item domain.Item) bool {
	if !item.Marketable {
		return false
	}
	if g.AllowClasses.Enabled && !g.AllowClasses.Classes[item.ClassCode] {
		return false
	}
	if g.DenyClasses.Enabled && g.DenyClasses.Classes[item.ClassCode] {
		return false
	}
	if g.AllowDetails.Enabled && !g.AllowDetails.Details[item.TypeDetail] {
		return false
	}
	if g.DenyDetails.Enabled && g.DenyDetails.Details[item.TypeDetail] {
		return false
	}
	return true
}

// LiquidityGates son los mínimos de actividad que un item debe cumplir antes
// de confiar en un precio automático.
type LiquidityGates struct {
	WindowHours   int // ventana de historia a mirar (least_sells_hours)
	MinSales      int // ventas mínimas dentro de la ventana (hours_least_sells)
	MinSellOrders int
	MinBuyOrders  int
}

// Config agrupa las puertas y límites de la política de venta. Se carga una
// vez y es de solo lectura durante el run.
type Config struct {
	Gates     TypeGates
	Liquidity LiquidityGates

	Global     Bounds
	NormalCard Bounds
	FoilCard   Bounds
	OtherItem  Bounds
}

// Policy decide si un item se puede listar y a qué precio. Sin estado mutable:
// segura para usar concurrentemente entre items.
type Policy struct {
	cfg  Config
	eval *Evaluator
}

// NewPolicy construye la política validando la fórmula configurada.
func NewPolicy(cfg Config, formula string) (*Policy, error) {
	eval, err := NewEvaluator(formula)
	if err != nil {
		return nil, err
	}
	return &Policy{cfg: cfg, eval: eval}, nil
}

// Decide recorre las puertas en orden: tipo → liquidez → fórmula → límites de
// precio. Un error no nil es de nivel de sesión (fórmula/config mal hecha) y
// debe abortar el run; los demás caminos terminan en una Decision.
func (p *Policy) Decide(item domain.Item, pctx domain.PricingContext) (domain.Decision, error) {
	if !p.cfg.Gates.Allows(item) {
		return domain.Decision{Outcome: domain.OutcomeBlockedByType}, nil
	}

	sales, err := pctx.History.SalesCount(pctx.Now, p.cfg.Liquidity.WindowHours)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("pricing.Decide: liquidity window: %w", err)
	}
	if sales < p.cfg.Liquidity.MinSales ||
		pctx.Book.TotalBuyVolume() < p.cfg.Liquidity.MinBuyOrders ||
		pctx.Book.TotalSellVolume() < p.cfg.Liquidity.MinSellOrders {
		return domain.Decision{Outcome: domain.OutcomeBlockedByLiquidity}, nil
	}

	price, err := p.eval.Evaluate(pctx)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			return domain.Decision{Outcome: domain.OutcomeNoData}, nil
		}
		return domain.Decision{}, err
	}

	if !p.cfg.Global.Allows(price) || !p.categoryBounds(item.Category).Allows(price) {
		return domain.Decision{Outcome: domain.OutcomeBlockedByPrice, Price: price}, nil
	}

	return domain.Decision{Outcome: domain.OutcomeListable, Price: price}, nil
}

func (p *Policy) categoryBounds(cat domain.Category) Bounds {
	switch cat {
	case domain.CategoryNormalCard:
		return p.cfg.NormalCard
	case domain.CategoryFoilCard:
		return p.cfg.FoilCard
	default:
		return p.cfg.OtherItem
	}
}
