// Command calc evaluates an offer from a config file and prints the report.
//
//	calc -config=offer.yaml            Markdown to stdout
//	calc -config=offer.yaml -html      HTML fragment
//	calc -capital=200000 -years=25     override the loan from the command line
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/warp/mortgage-bonus/config"
	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/ledger"
	"github.com/warp/mortgage-bonus/report"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (optional)")
	capital := flag.String("capital", "", "Loan capital, overrides the config")
	years := flag.String("years", "", "Term in years, overrides the config")
	rate := flag.String("rate", "", "Base annual rate in %, overrides the config")
	asHTML := flag.Bool("html", false, "Print HTML instead of Markdown")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := ledger.New(cfg.ToDefaults())
	patch := ledger.ParamsPatch{}
	if *capital != "" {
		v := finance.ParseNumber(*capital)
		patch.Capital = &v
	}
	if *years != "" {
		v := finance.ParseNumber(*years)
		patch.TermYears = &v
	}
	if *rate != "" {
		v := finance.ParseNumber(*rate)
		patch.BaseAnnualRatePct = &v
	}
	l.ApplyParams(patch)

	view, err := l.Evaluate()
	if err != nil {
		log.Fatalf("Failed to evaluate: %v", err)
	}
	out := report.Markdown(l.Params(), l.Bonuses(), view)

	if *asHTML {
		out, err = report.HTML(out)
		if err != nil {
			log.Fatalf("Failed to render: %v", err)
		}
	}
	fmt.Fprint(os.Stdout, out)
}
