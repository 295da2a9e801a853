package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"cedarstate"
	"cedarstate/patch"
)

// scenario is the YAML shape consumed by replay.
type scenario struct {
	States []scenarioState `yaml:"states"`
	Steps  []scenarioStep  `yaml:"steps"`
}

type scenarioState struct {
	Key   string        `yaml:"key"`
	Value any           `yaml:"value"`
	Diff  *scenarioDiff `yaml:"diff"`
}

type scenarioDiff struct {
	Mode         string `yaml:"mode"`
	HistoryLimit int    `yaml:"historyLimit"`
}

type scenarioStep struct {
	Op      string       `yaml:"op"`
	Key     string       `yaml:"key"`
	Value   any          `yaml:"value"`
	Patches []scenarioOp `yaml:"patches"`
}

type scenarioOp struct {
	Op    string `yaml:"op"`
	Path  string `yaml:"path"`
	Value any    `yaml:"value"`
	From  string `yaml:"from"`
}

func parseScenario(data []byte) (*scenario, error) {
	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario has no steps")
	}
	return &sc, nil
}

// runScenario builds a store from the scenario's declared states and
// replays every step, rendering each transition to w.
func runScenario(w io.Writer, sc *scenario) error {
	store := cedarstate.NewStore(cedarstate.WithLogger(logger))
	r := newRenderer(w, !noColor)

	for _, st := range sc.States {
		store.RegisterState(st.Key, st.Value, nil)
		if st.Diff != nil {
			store.RegisterDiffState(st.Key, st.Value, &cedarstate.DiffConfig{
				Mode:         cedarstate.DiffMode(st.Diff.Mode),
				HistoryLimit: st.Diff.HistoryLimit,
			})
		}
		r.registered(st.Key, st.Value, st.Diff != nil)
	}

	for i, step := range sc.Steps {
		if err := runStep(store, r, i, step); err != nil {
			return err
		}
	}
	return nil
}

func runStep(store *cedarstate.Store, r *renderer, i int, step scenarioStep) error {
	r.stepHeader(i, step.Op, step.Key)

	switch step.Op {
	case "set":
		store.SetCedarState(step.Key, step.Value)
	case "diff":
		store.SetDiffState(step.Key, step.Value, true)
	case "baseline":
		store.SetDiffState(step.Key, step.Value, false)
	case "patches":
		p := make(patch.Patch, len(step.Patches))
		for j, op := range step.Patches {
			p[j] = patch.Op{
				Kind:  patch.Kind(op.Op),
				Path:  op.Path,
				Value: op.Value,
				From:  op.From,
			}
		}
		if err := store.ApplyPatchesToDiffState(step.Key, p, true); err != nil {
			r.failed(err)
			return nil
		}
	case "accept":
		r.decision("accept", store.AcceptAllDiffs(step.Key))
	case "reject":
		r.decision("reject", store.RejectAllDiffs(step.Key))
	case "undo":
		r.decision("undo", store.Undo(step.Key))
	case "redo":
		r.decision("redo", store.Redo(step.Key))
	case "show":
		r.showState(step.Key, store.GetCleanState(step.Key), store.GetComputedState(step.Key))
		return nil
	default:
		return fmt.Errorf("step %d: unknown op %q", i, step.Op)
	}

	if d := store.GetDiffHistoryState(step.Key); d != nil {
		r.diffState(d)
	}
	return nil
}
