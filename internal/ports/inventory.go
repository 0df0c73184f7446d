package ports

import (
	"context"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// InventoryProvider obtiene el inventario completo del usuario.
type InventoryProvider interface {
	// FetchInventory pagina el inventario hasta agotarlo y devuelve los items
	// con sus descripciones ya resueltas. Los items cuya descripción no se
	// puede clasificar se descartan con un log.
	FetchInventory(ctx context.Context) ([]domain.Item, error)
}
