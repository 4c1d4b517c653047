package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ardanlabs/ledgersim/foundation/gossip"
	"github.com/ardanlabs/ledgersim/foundation/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var (
	scenario string
	verbose  bool
	asJSON   bool
	simCfg   gossip.SimConfig
)

var gossipCmd = &cobra.Command{
	Use:   "gossip",
	Short: "Run a gossip simulation",
	Long: `Builds a random follow graph, seeds honest and adversarial nodes with
transactions and reports which honest nodes reached consensus. A YAML
scenario file may be provided; flags given on the command line override it.`,
	Run: gossipRun,
}

func init() {
	rootCmd.AddCommand(gossipCmd)

	f := gossipCmd.Flags()
	f.StringVarP(&scenario, "scenario", "s", "", "YAML scenario file.")
	f.BoolVar(&verbose, "verbose", false, "Log simulation events.")
	f.BoolVar(&asJSON, "json", false, "Print the result as JSON.")
	f.IntVar(&simCfg.NumNodes, "nodes", 100, "Number of nodes.")
	f.Float64Var(&simCfg.PGraph, "p-graph", 0.1, "Probability a node follows another node.")
	f.Float64Var(&simCfg.PMalicious, "p-malicious", 0.15, "Probability a node is adversarial.")
	f.Float64Var(&simCfg.PTxDistribution, "p-tx", 0.01, "Probability a node starts with a given transaction.")
	f.IntVar(&simCfg.NumRounds, "rounds", 10, "Number of rounds.")
	f.IntVar(&simCfg.NumTxs, "txs", 500, "Number of transactions.")
	f.StringVar(&simCfg.Adversary, "adversary", gossip.AdversarySilent, "Adversary kind: silent, forger, flaky or mixed.")
	f.Uint64Var(&simCfg.Seed, "seed", 0, "Seed for the random source, zero picks one.")
}

func gossipRun(cmd *cobra.Command, args []string) {
	cfg, err := loadScenario(cmd.Flags())
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	if verbose {
		l, err := logger.New("SIM")
		if err != nil {
			log.Fatal(err)
		}
		defer l.Sync()

		cfg.EvHandler = logger.EvHandler(l, fmt.Sprintf("seed-%d", cfg.Seed))
	}

	res, err := gossip.Simulate(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatal(err)
		}
		return
	}

	fmt.Printf("Seed:        %d\n", cfg.Seed)
	fmt.Printf("Honest:      %d\n", len(res.Nodes))
	fmt.Printf("Adversaries: %d (%s)\n", len(res.Adversaries), cfg.Adversary)
	fmt.Printf("Registered:  %d\n", res.Registered)
	fmt.Printf("Agreeing:    %d\n", res.Agreeing())
	for _, nr := range res.Nodes {
		fmt.Printf("  node %4d consensus %5d agrees %-5t distrusts %d\n", nr.ID, nr.Consensus, nr.Agrees, len(nr.Malicious))
	}
}

// loadScenario starts from the flag defaults, applies the scenario file and
// then re-applies any flag set on the command line.
func loadScenario(flags *pflag.FlagSet) (gossip.SimConfig, error) {
	if scenario == "" {
		return simCfg, nil
	}

	content, err := os.ReadFile(scenario)
	if err != nil {
		return gossip.SimConfig{}, fmt.Errorf("reading scenario: %w", err)
	}

	cfg := simCfg
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return gossip.SimConfig{}, fmt.Errorf("parsing scenario: %w", err)
	}

	overrides := map[string]func(){
		"nodes":       func() { cfg.NumNodes = simCfg.NumNodes },
		"p-graph":     func() { cfg.PGraph = simCfg.PGraph },
		"p-malicious": func() { cfg.PMalicious = simCfg.PMalicious },
		"p-tx":        func() { cfg.PTxDistribution = simCfg.PTxDistribution },
		"rounds":      func() { cfg.NumRounds = simCfg.NumRounds },
		"txs":         func() { cfg.NumTxs = simCfg.NumTxs },
		"adversary":   func() { cfg.Adversary = simCfg.Adversary },
		"seed":        func() { cfg.Seed = simCfg.Seed },
	}

	flags.Visit(func(f *pflag.Flag) {
		if fn, exists := overrides[f.Name]; exists {
			fn()
		}
	})

	return cfg, nil
}
