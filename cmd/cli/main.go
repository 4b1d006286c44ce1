// Command cli runs the corridor simulation headless and writes the final
// snapshot as JSON to stdout.
//
//	cli -scenario heavy-fog -ticks 30
//	cli -auto-accept            # accept every recommendation each tick
//	cli -token-for controller-7 # mint a bearer token from CORRIDOR_JWT_SECRET
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"corridor_dispatch/internal/auth"
	"corridor_dispatch/internal/models"
	"corridor_dispatch/internal/sim"
)

// maxTicks bounds "run until finished"; halted trains never complete on
// their own.
const maxTicks = 1000

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	ticks := fs.Int("ticks", 0, "ticks to run; 0 runs until the section clears")
	scenario := fs.String("scenario", "", "scenario to apply before running")
	seed := fs.Int64("seed", 1, "seed for the throughput KPI")
	autoAccept := fs.Bool("auto-accept", false, "accept every recommendation after each tick")
	operator := fs.String("operator", "cli", "operator name recorded on accepted recommendations")
	tokenFor := fs.String("token-for", "", "print an HS256 token for this operator and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *tokenFor != "" {
		token, err := auth.Issue(os.Getenv("CORRIDOR_JWT_SECRET"), *tokenFor, []string{auth.DispatcherRole}, 12*time.Hour)
		if err != nil {
			fmt.Fprintf(stderr, "token error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, token)
		return 0
	}

	engine := sim.NewEngine(sim.Options{Rand: rand.New(rand.NewSource(*seed))})
	if *scenario != "" {
		if err := engine.ApplyScenario(models.ScenarioKind(*scenario)); err != nil {
			fmt.Fprintf(stderr, "scenario error: %v (known: %v)\n", err, sim.Scenarios())
			return 1
		}
	}

	limit := *ticks
	if limit <= 0 {
		limit = maxTicks
	}
	for i := 0; i < limit && engine.Mode() != models.ModeFinished; i++ {
		engine.Tick()
		if *autoAccept {
			acceptAll(engine, *operator)
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(engine.State()); err != nil {
		fmt.Fprintf(stderr, "encode error: %v\n", err)
		return 1
	}
	return 0
}

// acceptAll accepts the current batch once; recommendations regenerated by
// an acceptance wait for the next tick.
func acceptAll(engine *sim.Engine, operator string) {
	for _, rec := range engine.Recommendations() {
		_, _ = engine.AcceptRecommendation(rec.ID, operator)
	}
}
