package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime las oportunidades en el modo configurado.
func (c *Console) Notify(_ context.Context, opportunities []domain.Opportunity) error {
	if len(opportunities) == 0 {
		fmt.Fprintf(c.out, "[%s] no opportunities found\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printTable(opportunities)
	} else {
		c.printCompact(opportunities)
	}
	return nil
}

// printCompact imprime lo esencial en una línea por ciclo.
func (c *Console) printCompact(opps []domain.Opportunity) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d opportunities", now, len(opps))

	shown := 0
	for _, opp := range opps {
		if shown >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s %s @%.2f edge%+.3f stake%.2f",
			compactName(opp.BetName, 20), opp.Side, opp.Price,
			opp.Edge, opp.RecommendedStake)
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printTable imprime la tabla completa del ciclo.
func (c *Console) printTable(opps []domain.Opportunity) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d opportunities — shoe #%d (%s)\n",
		now, len(opps), opps[0].ShoeID, opps[0].ShoeMode)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Side bet", "Side", "Price", "Implied", "True prob", "Edge", "Stake", "Max profit")

	for i, opp := range opps {
		table.Append(
			fmt.Sprintf("%d", i+1),
			opp.BetName,
			string(opp.Side),
			fmt.Sprintf("%.2f", opp.Price),
			fmt.Sprintf("%.4f", opp.ImpliedProb()),
			fmt.Sprintf("%.4f", opp.TrueProb),
			fmt.Sprintf("%+.4f", opp.Edge),
			fmt.Sprintf("%.2f", opp.RecommendedStake),
			fmt.Sprintf("%.2f", opp.PotentialProfit()),
		)
	}

	table.Render()
}

// compactName recorta un nombre largo para el modo de una línea.
func compactName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	return name[:maxLen-1] + "…"
}
