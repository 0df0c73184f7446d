package steam

import (
	"errors"
	"fmt"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

var (
	// ErrCookieExpired: la cookie steamLoginSecure ya no es válida. Envuelve
	// domain.ErrSessionExpired para que el orquestador aborte el run.
	ErrCookieExpired = fmt.Errorf("steam login cookie expired: %w", domain.ErrSessionExpired)

	// ErrInventoryPrivate: el inventario del usuario es privado.
	ErrInventoryPrivate = errors.New("steam inventory is private")

	// ErrBadResponse: steam respondió con contenido inesperado o sin los
	// campos necesarios.
	ErrBadResponse = errors.New("unexpected steam response")
)
