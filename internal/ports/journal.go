package ports

import (
	"context"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// Journal persiste el resultado de cada run para inspección posterior. El
// engine de pricing no lo conoce; solo el orquestador escribe en él.
type Journal interface {
	SaveRun(ctx context.Context, summary domain.RunSummary, results []domain.ItemResult) error
	Close() error
}

// Notifier presenta el resultado de un run al usuario.
type Notifier interface {
	Notify(ctx context.Context, summary domain.RunSummary, results []domain.ItemResult) error
}
