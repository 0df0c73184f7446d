package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out    io.Writer
	table  bool
	dryRun bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table, dryRun bool) *Console {
	return &Console{out: os.Stdout, table: table, dryRun: dryRun}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table, dryRun bool) *Console {
	return &Console{out: w, table: table, dryRun: dryRun}
}

// Notify imprime el resultado del run en el modo configurado.
func (c *Console) Notify(_ context.Context, summary domain.RunSummary, results []domain.ItemResult) error {
	if summary.Total == 0 {
		fmt.Fprintf(c.out, "[%s] inventory empty, nothing to do\n",
			time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(summary, results)
	} else {
		c.printCompact(summary, results)
	}
	return nil
}

// printCompact imprime lo esencial en 1-2 líneas.
func (c *Console) printCompact(summary domain.RunSummary, results []domain.ItemResult) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]%s %d items → listed:%d type:%d liq:%d price:%d data:%d fail:%d",
		summary.Finished.Format("15:04:05"), c.modeTag(),
		summary.Total, summary.Listed,
		summary.SkippedType, summary.SkippedLiquidity,
		summary.SkippedPrice, summary.SkippedData, summary.Failed)

	shown := 0
	for _, r := range results {
		if shown >= 4 {
			break
		}
		if r.Failed || r.Decision.Outcome != domain.OutcomeListable {
			continue
		}
		fmt.Fprintf(&sb, " | %s %s net %s",
			compactName(r.Item.MarketName, 25),
			formatPrice(r.Decision.Price),
			formatCents(r.NetCents))
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime una fila por item más el resumen agregado.
func (c *Console) printFull(summary domain.RunSummary, results []domain.ItemResult) {
	fmt.Fprintf(c.out, "\n[%s]%s %d items processed in %s\n",
		summary.Finished.Format("15:04:05"), c.modeTag(),
		summary.Total, summary.Finished.Sub(summary.StartedAt).Round(time.Second))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Item", "Cat", "Outcome", "Price", "Fee", "Net", "Conf", "Reason")

	for i, r := range results {
		price, fee, net := "-", "-", "-"
		if r.Decision.Outcome == domain.OutcomeListable {
			price = formatPrice(r.Decision.Price)
			fee = formatCents(r.FeeCents)
			net = formatCents(r.NetCents)
		}

		conf := "-"
		if r.Listed {
			conf = r.Confirmation.String()
		}

		outcome := r.Decision.Outcome.String()
		if r.Failed {
			outcome = "failed"
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(r.Item.MarketName, 38),
			categoryLabel(r.Item.Category),
			outcome,
			price,
			fee,
			net,
			conf,
			truncate(r.Reason, 30),
		)
	}

	table.Render()
	c.printSummary(summary, results)
}

// printSummary imprime los totales del run.
func (c *Console) printSummary(summary domain.RunSummary, results []domain.ItemResult) {
	var grossCents, netCents int
	for _, r := range results {
		if !r.Listed {
			continue
		}
		grossCents += r.NetCents + r.FeeCents
		netCents += r.NetCents
	}

	fmt.Fprintf(c.out, "\n  listed %d/%d", summary.Listed, summary.Total)
	if summary.Listed > 0 {
		fmt.Fprintf(c.out, " — gross %s, net to wallet %s",
			formatCents(grossCents), formatCents(netCents))
	}
	fmt.Fprintln(c.out)

	if summary.Failed > 0 {
		fmt.Fprintf(c.out, "  %d items failed, see log for details\n", summary.Failed)
	}
	if c.dryRun {
		fmt.Fprintln(c.out, "  dry run: no sell orders were sent")
	}
	fmt.Fprintln(c.out)
}

func (c *Console) modeTag() string {
	if c.dryRun {
		return "[DRY]"
	}
	return ""
}

// --- helpers ---

func categoryLabel(cat domain.Category) string {
	switch cat {
	case domain.CategoryNormalCard:
		return "card"
	case domain.CategoryFoilCard:
		return "foil"
	default:
		return "other"
	}
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}

func formatCents(cents int) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
