// Copyright 2024 The go-equa Authors
// Vote Trace Replay and Inspection Tool

// Command casper-inspect is a thin demonstrator, in the spirit of
// cmd/equa-beacon-engine: it replays a recorded trace of block-building
// votes against a validator/weight snapshot, renders the resulting
// frontier and equivocator set, and serves a read-only GraphQL + Prometheus
// surface over the result, including a safety-oracle query over the
// resulting block DAG. It is not part of the consensus core; no network/
// persistence is implied beyond the files it reads and the localhost
// endpoints it serves.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/equa/casper-core/casper"
	"github.com/equa/casper-core/log"
	"github.com/fatih/color"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

type validatorSnapshot struct {
	ID     uint32 `yaml:"id"`
	Weight uint64 `yaml:"weight"`
}

// voteRecord is one line of a recorded block-vote trace: sender casts a
// block built on parent (the empty string means genesis) carrying data.
type voteRecord struct {
	Sender uint32 `json:"sender"`
	Parent string `json:"parent"`
	Data   string `json:"data"`
}

func main() {
	app := &cli.App{
		Name:  "casper-inspect",
		Usage: "replay a recorded block-vote trace and inspect the resulting CBC Casper frontier",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "weights", Usage: "path to a validator/weight snapshot (YAML)", Required: true},
			&cli.StringFlag{Name: "votes", Usage: "path to a vote trace (JSON array)", Required: true},
			&cli.Uint64Flag{Name: "threshold", Usage: "fault-weight threshold", Value: 0},
			&cli.StringFlag{Name: "graphql-addr", Usage: "address to serve the read-only GraphQL endpoint on", Value: ""},
			&cli.StringFlag{Name: "metrics-addr", Usage: "address to serve Prometheus metrics on", Value: ""},
			&cli.IntFlag{Name: "verbosity", Usage: "log verbosity, 0 (crit) to 5 (trace)", Value: int(log.LvlInfo)},
			&cli.StringFlag{Name: "log-file", Usage: "rotate logs into this file instead of stderr", Value: ""},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Crit("casper-inspect failed", "error", err)
	}
}

// setupLogging wires the terminal or rotating file handler behind a
// verbosity gate, mirroring cmd/equa-beacon-engine/main.go's glogger setup.
func setupLogging(c *cli.Context) {
	base := log.NewTerminalHandler(os.Stderr, true)
	if path := c.String("log-file"); path != "" {
		base = log.NewFileHandler(path, 100, 5, 28)
	}
	glogger := log.NewGlogHandler(base)
	glogger.Verbosity(log.Lvl(c.Int("verbosity")))
	log.SetDefault(log.NewLogger(glogger))
}

func run(c *cli.Context) error {
	setupLogging(c)

	weights, err := loadWeights(c.String("weights"))
	if err != nil {
		return fmt.Errorf("loading weights: %w", err)
	}
	votes, err := loadVotes(c.String("votes"))
	if err != nil {
		return fmt.Errorf("loading votes: %w", err)
	}

	state := casper.NewValidatorState[*casper.Block](weights, casper.WeightZero(), nil, casper.WeightFromUint64(c.Uint64("threshold")), nil)
	blocks := make(map[string]*casper.Block)

	registry := prometheus.NewRegistry()
	metrics := casper.NewMetrics(registry)

	for i, v := range votes {
		var parent *casper.Block
		if v.Parent != "" {
			p, ok := blocks[v.Parent]
			if !ok {
				return fmt.Errorf("vote %d: unknown parent block %q", i, v.Parent)
			}
			parent = p
		}
		block := casper.NewBlock(parent, []byte(v.Data))
		blocks[block.ID().Hex()] = block

		honest := state.Honest()
		justification := honest.Justification()
		msg := casper.NewMessage[*casper.Block](casper.ValidatorID(v.Sender), justification, block)
		state.Update([]*casper.Message[*casper.Block]{msg})
	}

	equivocators := state.EquivocatorIDs()
	frontierSize := 0
	for _, vw := range weights.Iter() {
		if msgs, ok := state.LatestMessages(vw.Validator); ok {
			frontierSize += len(msgs)
		}
	}
	casper.ObserveFrontier(metrics, state, frontierSize)

	renderFrontier(state, weights, equivocators)

	head, err := casper.BlockEstimator{}.Estimate(state.Honest(), weights)
	if err != nil {
		log.Warn("fork-choice has no estimate yet", "error", err)
	} else {
		log.Info("fork-choice head", "block", head.ID().Hex())
	}

	log.Info("replay complete", "votes", len(votes), "faultWeight", state.FaultWeight().String(), "equivocators", len(equivocators))

	if addr := c.String("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		log.Info("serving prometheus metrics", "addr", addr)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	if addr := c.String("graphql-addr"); addr != "" {
		schema := graphql.MustParseSchema(graphqlSchema, &resolver{state: state, weights: weights, blocks: blocks, metrics: metrics})
		mux := http.NewServeMux()
		mux.Handle("/graphql", &relay.Handler{Schema: schema})
		log.Info("serving read-only graphql endpoint", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			return fmt.Errorf("graphql server: %w", err)
		}
	}
	return nil
}

func loadWeights(path string) (*casper.Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot []validatorSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	init := make(map[casper.ValidatorID]casper.Weight, len(snapshot))
	for _, v := range snapshot {
		init[casper.ValidatorID(v.ID)] = casper.WeightFromUint64(v.Weight)
	}
	return casper.NewWeights(init), nil
}

func loadVotes(path string) ([]voteRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var votes []voteRecord
	if err := json.Unmarshal(data, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

func renderFrontier(state *casper.ValidatorState[*casper.Block], weights *casper.Weights, equivocators []casper.ValidatorID) {
	isEquivocator := make(map[casper.ValidatorID]bool, len(equivocators))
	for _, v := range equivocators {
		isEquivocator[v] = true
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Validator", "Weight", "Frontier Size", "Status"})
	for _, vw := range weights.Iter() {
		msgs, _ := state.LatestMessages(vw.Validator)
		status := "honest"
		if isEquivocator[vw.Validator] {
			status = color.RedString("equivocator")
		}
		table.Append([]string{
			fmt.Sprintf("%d", vw.Validator),
			vw.Weight.String(),
			fmt.Sprintf("%d", len(msgs)),
			status,
		})
	}
	table.Render()
}

const graphqlSchema = `
	schema { query: Query }

	type Query {
		latestMessages: [FrontierEntry!]!
		equivocators: [Int!]!
		safetyOracle(block: String!, threshold: Float!): [Clique!]!
	}

	type FrontierEntry {
		validator: Int!
		frontierSize: Int!
	}

	type Clique {
		validators: [Int!]!
		weight: String!
	}
`

type resolver struct {
	state   *casper.ValidatorState[*casper.Block]
	weights *casper.Weights
	blocks  map[string]*casper.Block
	metrics *casper.Metrics
}

type frontierEntryResolver struct {
	validator    int32
	frontierSize int32
}

func (r *frontierEntryResolver) Validator() int32    { return r.validator }
func (r *frontierEntryResolver) FrontierSize() int32 { return r.frontierSize }

func (r *resolver) LatestMessages() []*frontierEntryResolver {
	out := make([]*frontierEntryResolver, 0)
	for _, vw := range r.weights.Iter() {
		msgs, _ := r.state.LatestMessages(vw.Validator)
		out = append(out, &frontierEntryResolver{validator: int32(vw.Validator), frontierSize: int32(len(msgs))})
	}
	return out
}

func (r *resolver) Equivocators() []int32 {
	out := make([]int32, 0)
	for _, v := range r.state.EquivocatorIDs() {
		out = append(out, int32(v))
	}
	return out
}

type cliqueResolver struct {
	clique casper.Clique
}

func (c *cliqueResolver) Validators() []int32 {
	out := make([]int32, 0, len(c.clique.Validators))
	for _, v := range c.clique.Validators {
		out = append(out, int32(v))
	}
	return out
}

func (c *cliqueResolver) Weight() string { return c.clique.Weight.String() }

// SafetyOracle resolves spec.md §4.8's clique query: given a candidate
// block (by hex id, as produced by replaying the vote trace) and a weight
// threshold, it returns every maximal mutual-agreement clique whose summed
// weight exceeds the threshold, recording the result on the shared metrics.
func (r *resolver) SafetyOracle(args struct {
	Block     string
	Threshold float64
}) ([]*cliqueResolver, error) {
	candidate, ok := r.blocks[args.Block]
	if !ok {
		return nil, fmt.Errorf("unknown block %q", args.Block)
	}

	cliques := casper.SafetyOracles(candidate, r.state.Honest(), r.weights, casper.WeightFromUint64(uint64(args.Threshold)))
	r.metrics.ObserveSafetyOracle(cliques)

	out := make([]*cliqueResolver, 0, len(cliques))
	for _, clq := range cliques {
		out = append(out, &cliqueResolver{clique: clq})
	}
	return out, nil
}
