package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/haskel/phasepower/internal/measure"
	"github.com/haskel/phasepower/internal/optimizer"
)

// DeadlineRow names the load-time constraint of every site program.
const DeadlineRow = "t"

var (
	ErrUnknownGovernor = errors.New("unknown governor")
	ErrNoSelection     = errors.New("no configuration selected")
)

// Config holds solver parameters.
type Config struct {
	// Deadline is the total load-time budget per site in ms.
	Deadline float64

	// Tolerance is the value above which a variable counts as selected.
	Tolerance float64

	Governor string

	// Workers solves sites concurrently; <= 1 is sequential.
	Workers int
}

// DefaultConfig returns default solver configuration.
func DefaultConfig() Config {
	return Config{
		Deadline:  3000,
		Tolerance: 0.99,
		Governor:  "ii",
		Workers:   1,
	}
}

// Solver builds and solves one program per site.
type Solver struct {
	opt optimizer.Optimizer
	cfg Config
	log *slog.Logger
}

// New creates a solver.
func New(opt optimizer.Optimizer, cfg Config, log *slog.Logger) *Solver {
	return &Solver{opt: opt, cfg: cfg, log: log}
}

// Model is a site program together with the variable of every
// (phase, configuration) cell; -1 marks cells without data.
type Model struct {
	Program *optimizer.Program
	Vars    [][]int
}

// BuildModel creates the selection program for one site: binary x[p][c],
// one configuration per phase, total time under the deadline, minimal
// total energy. Cells whose time or energy is NaN get no variable.
func BuildModel(name string, phases, configs []string, timeM, energyM [][]float64, deadline float64) *Model {
	p := optimizer.NewProgram(name)
	vars := make([][]int, len(phases))
	var timeRow []optimizer.Term

	for ph := range phases {
		vars[ph] = make([]int, len(configs))
		var phaseRow []optimizer.Term
		for c := range configs {
			vars[ph][c] = -1
			t, e := timeM[ph][c], energyM[ph][c]
			if math.IsNaN(t) || math.IsNaN(e) {
				continue
			}
			v := p.AddVar(phases[ph]+"/"+configs[c], e)
			vars[ph][c] = v
			phaseRow = append(phaseRow, optimizer.Term{Var: v, Coef: 1})
			timeRow = append(timeRow, optimizer.Term{Var: v, Coef: t})
		}
		p.AddConstraint(phases[ph], optimizer.Equal, 1, phaseRow...)
	}
	p.AddConstraint(DeadlineRow, optimizer.LessEqual, deadline, timeRow...)

	return &Model{Program: p, Vars: vars}
}

// Solve solves every site of the aggregate for the configured governor.
// Failures are per site; the returned slice is in domain site order.
func (s *Solver) Solve(ctx context.Context, agg *measure.Aggregate) ([]SiteSolution, error) {
	domain := agg.Domain()
	gov, ok := domain.GovernorIndex(s.cfg.Governor)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGovernor, s.cfg.Governor)
	}

	results := make([]SiteSolution, len(domain.Sites))
	workers := s.cfg.Workers
	if workers > len(results) {
		workers = len(results)
	}

	if workers <= 1 {
		for i := range results {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = s.SolveSite(ctx, agg, i, gov)
		}
		return results, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.SolveSite(ctx, agg, i, gov)
			}
		}()
	}

feed:
	for i := range results {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// SolveSite runs the optimal, relaxed, unsolved protocol for one site.
func (s *Solver) SolveSite(ctx context.Context, agg *measure.Aggregate, site, gov int) (sol SiteSolution) {
	domain := agg.Domain()
	sol = SiteSolution{
		Site:     domain.Sites[site],
		Governor: domain.Governors[gov],
		Status:   StatusUnsolved,
	}
	log := s.log.With("site", sol.Site, "governor", sol.Governor)

	timeM, err := agg.SiteMatrix(site, gov, measure.Loadtime)
	if err != nil {
		sol.Error = err.Error()
		return sol
	}
	energyM, err := agg.SiteMatrix(site, gov, measure.Energy)
	if err != nil {
		sol.Error = err.Error()
		return sol
	}

	if b, ok := domain.BaselineIndex(); ok {
		for p := range domain.Phases {
			sol.BaselineTime += timeM[p][b]
			sol.BaselineEnergy += energyM[p][b]
		}
	} else {
		sol.BaselineTime, sol.BaselineEnergy = math.NaN(), math.NaN()
	}

	// The optimizer recovers its own panics; this guards model extraction.
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic recovered", "error", r)
			sol.Status = StatusUnsolved
			sol.Choices = nil
			sol.Error = fmt.Sprint(r)
		}
	}()

	start := time.Now()
	model := BuildModel(sol.Site, domain.Phases, domain.Configurations, timeM, energyM, s.cfg.Deadline)
	sol.ConstructTime = time.Since(start)

	res, err := s.opt.Optimize(ctx, model.Program)
	if err != nil {
		return s.fail(log, sol, "optimize failed", err)
	}
	sol.SolveTime = res.Runtime
	sol.Nodes = res.Nodes

	switch res.Status {
	case optimizer.StatusOptimal:
		sol.Status = StatusOptimal

	case optimizer.StatusInfeasible:
		log.Info("deadline infeasible, relaxing", "deadline_ms", s.cfg.Deadline)
		res, err = s.opt.FeasRelax(ctx, model.Program, optimizer.RelaxOptions{
			Rows:             []string{DeadlineRow},
			Penalty:          optimizer.PenaltyQuadratic,
			MinimizeOriginal: true,
		})
		if err != nil {
			return s.fail(log, sol, "relaxation failed", err)
		}
		sol.SolveTime += res.Runtime
		sol.Nodes += res.Nodes
		if res.Status != optimizer.StatusOptimal {
			log.Warn("site unsolved", "relaxation_status", res.Status.String())
			sol.Error = "relaxation " + res.Status.String()
			return sol
		}
		sol.Status = StatusRelaxed
		sol.Violation = res.Violations[DeadlineRow]

	default:
		return s.fail(log, sol, "optimize stopped", fmt.Errorf("status %s", res.Status))
	}

	if err := s.extract(&sol, model, res, domain, timeM, energyM); err != nil {
		return s.fail(log, sol, "extraction failed", err)
	}

	log.Debug("site solved",
		"status", string(sol.Status),
		"time_ms", sol.Time,
		"energy_mj", sol.Energy,
		"nodes", sol.Nodes,
	)
	return sol
}

func (s *Solver) fail(log *slog.Logger, sol SiteSolution, msg string, err error) SiteSolution {
	var pe *optimizer.PanicError
	if errors.As(err, &pe) {
		log.Error(msg, "error", err, "stack", string(pe.Stack))
	} else {
		log.Error(msg, "error", err)
	}
	sol.Status = StatusUnsolved
	sol.Choices = nil
	sol.Error = err.Error()
	return sol
}

func (s *Solver) extract(sol *SiteSolution, model *Model, res *optimizer.Result, domain measure.Domain, timeM, energyM [][]float64) error {
	sol.Choices = make([]PhaseChoice, 0, len(domain.Phases))
	sol.Time, sol.Energy = 0, 0

	for p, phase := range domain.Phases {
		chosen := -1
		for c, v := range model.Vars[p] {
			if v < 0 || res.X[v] <= s.cfg.Tolerance {
				continue
			}
			if chosen >= 0 {
				return fmt.Errorf("phase %q: more than one configuration selected", phase)
			}
			chosen = c
		}
		if chosen < 0 {
			return fmt.Errorf("%w: phase %q", ErrNoSelection, phase)
		}

		choice := PhaseChoice{
			Phase:  phase,
			Config: domain.Configurations[chosen],
			Time:   timeM[p][chosen],
			Energy: energyM[p][chosen],
		}
		sol.Choices = append(sol.Choices, choice)
		sol.Time += choice.Time
		sol.Energy += choice.Energy
	}
	return nil
}
