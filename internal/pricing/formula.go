package pricing

// formula.go — evaluador restringido de la fórmula de precio.
//
// La fórmula es una expresión aritmética pura sobre un conjunto cerrado de
// funciones estadísticas ligadas al PricingContext del item. No hay acceso a
// nada fuera de ese conjunto: una fórmula de config no puede ejecutar código,
// solo combinar números.

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// Evaluator evalúa la fórmula de precio configurada contra los datos de
// mercado de un item. La sintaxis se valida una vez al construirlo; la
// evaluación liga las funciones al contexto de cada item, así que un Evaluator
// es seguro de usar desde varios workers a la vez.
type Evaluator struct {
	formula string
}

// NewEvaluator valida la sintaxis de la fórmula y devuelve el evaluador.
// Una fórmula que no parsea es un error de configuración fatal.
func NewEvaluator(formula string) (*Evaluator, error) {
	if formula == "" {
		return nil, fmt.Errorf("pricing.NewEvaluator: empty formula")
	}
	if _, err := govaluate.NewEvaluableExpressionWithFunctions(formula, boundFunctions(domain.PricingContext{})); err != nil {
		return nil, fmt.Errorf("pricing.NewEvaluator: parse formula: %w", err)
	}
	return &Evaluator{formula: formula}, nil
}

// Evaluate calcula el precio candidato de venta para el contexto dado.
//
// Los fallos dentro de una función ligada se propagan con su causa:
// domain.ErrInsufficientData marca items sin datos suficientes y
// domain.ErrBadFormulaArgument marca una fórmula mal configurada.
func (e *Evaluator) Evaluate(pctx domain.PricingContext) (float64, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(e.formula, boundFunctions(pctx))
	if err != nil {
		return 0, fmt.Errorf("pricing.Evaluate: parse formula: %w", err)
	}
	out, err := expr.Evaluate(nil)
	if err != nil {
		return 0, fmt.Errorf("pricing.Evaluate: %w", err)
	}
	price, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("pricing.Evaluate: formula result is not numeric: %w", domain.ErrBadFormulaArgument)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("pricing.Evaluate: formula result is not finite: %w", domain.ErrInsufficientData)
	}
	return price, nil
}

// boundFunctions construye el conjunto cerrado de funciones visibles desde la
// fórmula, ligadas al contexto del item.
func boundFunctions(pctx domain.PricingContext) map[string]govaluate.ExpressionFunction {
	return map[string]govaluate.ExpressionFunction{
		// salesCount(hours): volumen vendido en las últimas hours horas.
		"salesCount": func(args ...interface{}) (interface{}, error) {
			hours, err := intArg(args, 0, 1)
			if err != nil {
				return nil, err
			}
			n, err := pctx.History.SalesCount(pctx.Now, hours)
			if err != nil {
				return nil, err
			}
			return float64(n), nil
		},

		// averagePrice(hours, weighted): media del precio en la ventana.
		// weighted es opcional y por defecto true.
		"averagePrice": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 && len(args) != 2 {
				return nil, fmt.Errorf("averagePrice expects 1 or 2 arguments: %w", domain.ErrBadFormulaArgument)
			}
			hours, err := intArg(args, 0, len(args))
			if err != nil {
				return nil, err
			}
			weighted := true
			if len(args) == 2 {
				b, ok := args[1].(bool)
				if !ok {
					return nil, fmt.Errorf("averagePrice weighted must be a boolean: %w", domain.ErrBadFormulaArgument)
				}
				weighted = b
			}
			return pctx.History.AveragePrice(pctx.Now, hours, weighted)
		},

		// highestPrice(hours): precio máximo en la ventana.
		"highestPrice": func(args ...interface{}) (interface{}, error) {
			hours, err := intArg(args, 0, 1)
			if err != nil {
				return nil, err
			}
			return pctx.History.HighestPrice(pctx.Now, hours)
		},

		// priceToAbsorb(side, n) o priceToAbsorb(n): precio necesario para
		// absorber n unidades del lado dado ("buy"/"sell", default sell).
		"priceToAbsorb": func(args ...interface{}) (interface{}, error) {
			side := domain.SellSide
			idx := 0
			switch len(args) {
			case 1:
			case 2:
				name, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("priceToAbsorb side must be a string: %w", domain.ErrBadFormulaArgument)
				}
				switch name {
				case "buy":
					side = domain.BuySide
				case "sell":
					side = domain.SellSide
				default:
					return nil, fmt.Errorf("priceToAbsorb side %q: %w", name, domain.ErrBadFormulaArgument)
				}
				idx = 1
			default:
				return nil, fmt.Errorf("priceToAbsorb expects 1 or 2 arguments: %w", domain.ErrBadFormulaArgument)
			}
			backNum, err := intArg(args, idx, len(args))
			if err != nil {
				return nil, err
			}
			return pctx.Book.PriceToAbsorb(side, backNum)
		},

		// highestBuyOrder(): mejor orden de compra del book.
		"highestBuyOrder": func(args ...interface{}) (interface{}, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("highestBuyOrder takes no arguments: %w", domain.ErrBadFormulaArgument)
			}
			if pctx.Book.HighestBuyOrder == nil {
				return nil, fmt.Errorf("no buy orders: %w", domain.ErrInsufficientData)
			}
			return *pctx.Book.HighestBuyOrder, nil
		},

		// lowestSellOrder(): mejor orden de venta del book.
		"lowestSellOrder": func(args ...interface{}) (interface{}, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("lowestSellOrder takes no arguments: %w", domain.ErrBadFormulaArgument)
			}
			if pctx.Book.LowestSellOrder == nil {
				return nil, fmt.Errorf("no sell orders: %w", domain.ErrInsufficientData)
			}
			return *pctx.Book.LowestSellOrder, nil
		},

		// totalBuyOrders() / totalSellOrders(): volumen pendiente por lado.
		"totalBuyOrders": func(args ...interface{}) (interface{}, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("totalBuyOrders takes no arguments: %w", domain.ErrBadFormulaArgument)
			}
			return float64(pctx.Book.TotalBuyVolume()), nil
		},
		"totalSellOrders": func(args ...interface{}) (interface{}, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("totalSellOrders takes no arguments: %w", domain.ErrBadFormulaArgument)
			}
			return float64(pctx.Book.TotalSellVolume()), nil
		},
	}
}

// intArg extrae el argumento numérico i, truncando a entero como hace el
// resto del pipeline con horas y volúmenes.
func intArg(args []interface{}, i, want int) (int, error) {
	if len(args) != want {
		return 0, fmt.Errorf("expected %d arguments, got %d: %w", want, len(args), domain.ErrBadFormulaArgument)
	}
	f, ok := args[i].(float64)
	if !ok {
		return 0, fmt.Errorf("argument %d must be numeric: %w", i+1, domain.ErrBadFormulaArgument)
	}
	return int(f), nil
}
