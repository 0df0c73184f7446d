package domain

import "errors"

var (
	// ErrInsufficientData indica que no hay datos de mercado suficientes para
	// responder la consulta (ventana vacía, lado del book ausente).
	ErrInsufficientData = errors.New("insufficient market data")

	// ErrBadFormulaArgument indica un argumento fuera de rango en una función
	// de la fórmula. Es un error de configuración: aborta el run completo.
	ErrBadFormulaArgument = errors.New("formula argument out of range")

	// ErrUnknownCategory indica que los tags del item no encajan en ninguna
	// categoría conocida.
	ErrUnknownCategory = errors.New("unknown item category")

	// ErrSessionExpired indica que las credenciales de la sesión ya no valen.
	// Error de sesión: aborta el run completo.
	ErrSessionExpired = errors.New("session expired")
)
