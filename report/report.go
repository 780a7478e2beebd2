/*
Package report renders a calculator state as a summary document.

PURPOSE:
  Markdown() builds a human-readable summary of one evaluated state: the
  loan, one table row per bonus, and the combined offer. HTML() turns that
  Markdown into an HTML fragment with GFM tables.

All figures go through package format, so the report reads in es-ES.
*/
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/format"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the summary report. Rows of view are matched to bonuses by id.
func Markdown(params finance.LoanParameters, bonuses []finance.Bonus, view finance.View) string {
	var b strings.Builder

	b.WriteString("# Simulación de bonificaciones\n\n")

	b.WriteString("## Préstamo\n\n")
	fmt.Fprintf(&b, "- Capital: %s\n", format.EUR(params.Capital))
	fmt.Fprintf(&b, "- Plazo: %d años (%s)\n", params.TermYears, format.Months(view.Months))
	fmt.Fprintf(&b, "- Tipo base: %s\n", format.Pct(params.BaseAnnualRatePct))
	fmt.Fprintf(&b, "- Bonificación máxima combinada: %s\n", format.Pct(params.MaxComboDiscountPct))
	fmt.Fprintf(&b, "- Cuota base: %s\n\n", format.EUR(view.BasePayment))

	b.WriteString("## Bonificaciones\n\n")
	if len(bonuses) == 0 {
		b.WriteString("Sin bonificaciones.\n\n")
	} else {
		b.WriteString("| Bonificación | Activa | Descuento | Coste anual | Nuevo tipo | Nueva cuota | Ahorro mensual | Ahorro anual | Neto anual | Neto plazo |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, bonus := range bonuses {
			row, ok := view.Row(bonus.ID)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				cell(bonus.Name),
				yesNo(bonus.Enabled),
				format.Pct(bonus.DiscountPct),
				format.EUR(bonus.AnnualCost),
				format.Pct(row.NewRate),
				format.EUR(row.NewPayment),
				format.EUR(row.MonthlySaving),
				format.EUR(row.AnnualSaving),
				format.EUR(row.NetAnnual),
				format.EUR(row.NetOverTerm),
			)
		}
		b.WriteString("\n")
	}

	c := view.Combo
	b.WriteString("## Combinación de bonificaciones activas\n\n")
	fmt.Fprintf(&b, "- Activas: %d\n", c.EnabledCount)
	fmt.Fprintf(&b, "- Descuento sumado: %s\n", format.Pct(c.SumDiscount))
	if c.Capped {
		fmt.Fprintf(&b, "- Descuento aplicado: %s (limitado)\n", format.Pct(c.AppliedDiscount))
	} else {
		fmt.Fprintf(&b, "- Descuento aplicado: %s\n", format.Pct(c.AppliedDiscount))
	}
	fmt.Fprintf(&b, "- Tipo resultante: %s\n", format.Pct(c.ComboRate))
	fmt.Fprintf(&b, "- Cuota resultante: %s\n", format.EUR(c.ComboPayment))
	fmt.Fprintf(&b, "- Ahorro mensual: %s\n", format.EUR(c.MonthlySaving))
	fmt.Fprintf(&b, "- Ahorro anual: %s\n", format.EUR(c.AnnualSaving))
	fmt.Fprintf(&b, "- Coste anual: %s\n", format.EUR(c.AnnualCost))
	fmt.Fprintf(&b, "- Neto anual: %s\n", format.EUR(c.NetAnnual))
	fmt.Fprintf(&b, "- Neto en el plazo: %s\n", format.EUR(c.NetOverTerm))

	return b.String()
}

// HTML converts a Markdown report into an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// cell keeps user-entered names from breaking the table.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}
