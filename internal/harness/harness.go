package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/boothsync/internal/device"
	"github.com/roach88/boothsync/internal/ident"
	"github.com/roach88/boothsync/internal/memstore"
	"github.com/roach88/boothsync/internal/merge"
	"github.com/roach88/boothsync/internal/responses"
	"github.com/roach88/boothsync/internal/settings"
	"github.com/roach88/boothsync/internal/survey"
	"github.com/roach88/boothsync/internal/transport"
)

// ClockStart is the first timestamp every simulated device issues.
var ClockStart = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

// sequence issues "<prefix>-r1", "<prefix>-r2", ...
type sequence struct {
	prefix string
	n      int
}

func (s *sequence) Generate() string {
	s.n++
	return fmt.Sprintf("%s-r%d", s.prefix, s.n)
}

// node is one simulated device.
type node struct {
	responses *responses.Store
	transport *transport.Service
}

func newNode(ctx context.Context, d Device, logger *slog.Logger) (*node, error) {
	be := memstore.New()

	cfg := settings.NewStore(be, settings.WithLogger(logger))
	if _, err := cfg.Update(ctx, func(c *survey.AppConfig) { c.SectorName = d.Sector }); err != nil {
		return nil, fmt.Errorf("device %s: %w", d.Name, err)
	}
	dev := device.NewProvider(be,
		device.WithGenerator(ident.NewFixedGenerator("dev-"+d.Name)),
		device.WithLogger(logger),
	)
	rs := responses.New(be, cfg, dev,
		responses.WithGenerator(&sequence{prefix: d.Name}),
		responses.WithClock(ident.NewStepClock(ClockStart, time.Minute)),
		responses.WithLogger(logger),
	)
	eng := merge.NewEngine(be, merge.WithLogger(logger))

	return &node{
		responses: rs,
		transport: transport.NewService(rs, eng, logger),
	}, nil
}

// Harness is the scenario execution engine.
type Harness struct {
	nodes     map[string]*node
	snapshots map[string][]byte
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs on fresh in-memory devices for isolation. Step and
// assertion mismatches are reported in the Result; the returned error is
// reserved for failures to set the scenario up.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	h := &Harness{
		nodes:     make(map[string]*node, len(scenario.Devices)),
		snapshots: make(map[string][]byte),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	for _, d := range scenario.Devices {
		n, err := newNode(ctx, d, h.logger)
		if err != nil {
			return nil, err
		}
		h.nodes[d.Name] = n
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	for _, d := range scenario.Devices {
		rs, err := h.nodes[d.Name].responses.Responses(ctx)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", d.Name, err)
		}
		ids := make([]string, len(rs))
		for i, r := range rs {
			ids[i] = r.ID
		}
		result.Final[d.Name] = ids
	}

	for i, a := range scenario.Assertions {
		if err := h.evaluate(ctx, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	n := h.nodes[step.Device]
	event := TraceEvent{Step: index, Device: step.Device}

	var err error
	switch {
	case step.Submit != nil:
		event.Op = OpSubmit
		var r survey.Response
		r, err = n.responses.SaveResponse(ctx, step.Submit.Draft())
		event.ID = r.ID

	case step.Export != "":
		event.Op = OpExport
		event.Snapshot = step.Export
		var exp transport.Export
		exp, err = n.transport.ExportSnapshot(ctx, func(data []byte) error {
			h.snapshots[step.Export] = data
			return nil
		})
		if err == nil {
			event.Records = intPtr(exp.Records)
		}

	case step.Import != "" || step.ImportRaw != "":
		event.Op = OpImport
		data := []byte(step.ImportRaw)
		if step.Import != "" {
			event.Snapshot = step.Import
			data = h.snapshots[step.Import]
		}
		var res merge.Result
		res, err = n.transport.Import(ctx, data)
		if err == nil {
			event.Added = intPtr(res.Added)
			event.Duplicates = intPtr(res.Duplicates)
		}

	case step.Clear:
		event.Op = OpClear
		err = n.responses.ClearAll(ctx)
	}

	if err != nil {
		event.Error = string(survey.CodeOf(err))
		if event.Error == "" {
			event.Error = err.Error()
		}
	}
	result.Trace = append(result.Trace, event)

	for _, msg := range checkExpect(step.Expect, event) {
		result.AddError(fmt.Sprintf("steps[%d] (%s on %s): %s", index, event.Op, step.Device, msg))
	}
}

// checkExpect compares a step outcome with its expectation.
func checkExpect(expect *Expect, event TraceEvent) []string {
	var errs []string
	wantErr := ""
	if expect != nil {
		wantErr = expect.Error
	}
	if event.Error != wantErr {
		if wantErr == "" {
			errs = append(errs, fmt.Sprintf("unexpected error %s", event.Error))
		} else {
			errs = append(errs, fmt.Sprintf("expected error %s, got %q", wantErr, event.Error))
		}
	}
	if expect == nil {
		return errs
	}
	if expect.Added != nil && (event.Added == nil || *event.Added != *expect.Added) {
		errs = append(errs, fmt.Sprintf("expected added=%d, got %s", *expect.Added, formatCount(event.Added)))
	}
	if expect.Duplicates != nil && (event.Duplicates == nil || *event.Duplicates != *expect.Duplicates) {
		errs = append(errs, fmt.Sprintf("expected duplicates=%d, got %s", *expect.Duplicates, formatCount(event.Duplicates)))
	}
	return errs
}

func formatCount(n *int) string {
	if n == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *n)
}
