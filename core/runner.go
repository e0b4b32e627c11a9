package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

var (
	ErrTooManyErrors = errors.New("too many errors")
	ErrNoController  = errors.New("no controller for role")
)

// TableOwner is implemented by controllers that persist to a file.
type TableOwner interface {
	TablePath() string
}

type experimentRunContext struct {
	run       int
	ctx       context.Context
	analyzers map[string]Analyzer

	writer io.Writer
	log    *logrus.Entry

	*RunConfig
}

type ExperimentResult struct {
	CompletedEpisodes int
	TotalEpisodes     int
	ErrorEpisodes     int
	TotalTimeSteps    int

	Error    error
	Datasets map[string]DataSet
}

func (r *ExperimentResult) IsError() bool {
	return r.Error != nil
}

func (e *Experiment) run(ctx *experimentRunContext) *ExperimentResult {
	result := &ExperimentResult{
		Datasets: make(map[string]DataSet),
	}
	world := e.World.NewWorld(ctx.run)
	controllers := make(map[string]Controller)

	consecutiveErrors := 0
EpisodeLoop:
	for episode := 0; episode < ctx.Episodes; episode++ {
		select {
		case <-ctx.ctx.Done():
			result.Error = ctx.ctx.Err()
			break EpisodeLoop
		default:
		}

		fmt.Fprintf(
			ctx.writer,
			"Experiment: %s, Run %d, Timesteps: %d, Episode %d/%d, Error: %d\n",
			e.Name, ctx.run, result.TotalTimeSteps, episode, ctx.Episodes, result.ErrorEpisodes,
		)
		eCtx := NewEpisodeContext(ctx.ctx)
		eCtx.Run = ctx.run
		eCtx.Episode = episode
		eCtx.Horizon = ctx.Horizon
		eCtx.Experiment = e.Name
		eCtx.StartTimeStep = result.TotalTimeSteps

		steps, err := e.runEpisode(ctx, world, controllers, eCtx)
		result.TotalEpisodes++
		if err != nil {
			eCtx.Trace.SetError(err)
			result.ErrorEpisodes++
			ctx.log.WithError(err).WithField("episode", episode).Warn("episode failed")
			if consecutiveErrors++; consecutiveErrors >= ctx.ThresholdConsecutiveErrors {
				result.Error = ErrTooManyErrors
			}
		} else {
			consecutiveErrors = 0
			result.TotalTimeSteps += steps
			result.CompletedEpisodes++
		}

		for _, a := range ctx.analyzers {
			a.Analyze(eCtx, eCtx.Trace)
		}
		if result.Error != nil {
			break
		}
	}
	if result.Error != nil {
		fmt.Fprintf(ctx.writer, "Experiment: %s, Run %d, Error: %v\n", e.Name, ctx.run, result.Error)
	}
	ctx.log.WithFields(logrus.Fields{
		"episodes":  result.TotalEpisodes,
		"completed": result.CompletedEpisodes,
		"errored":   result.ErrorEpisodes,
		"timesteps": result.TotalTimeSteps,
	}).Info("experiment finished")

	for name, a := range ctx.analyzers {
		result.Datasets[name] = a.DataSet()
	}
	return result
}

func (e *Experiment) runEpisode(ctx *experimentRunContext, world World, controllers map[string]Controller, eCtx *EpisodeContext) (int, error) {
	if err := world.Reset(); err != nil {
		return 0, fmt.Errorf("resetting world: %w", err)
	}
	spawns := world.Spawns()
	created := false
	for _, sp := range spawns {
		c, ok := controllers[sp.ID]
		if !ok {
			cons, ok := e.Controllers[sp.Role]
			if !ok {
				return 0, fmt.Errorf("%w %s", ErrNoController, sp.Role)
			}
			c = cons.NewController(sp.ID)
			controllers[sp.ID] = c
			created = true
		}
		err := c.Initialize(&InitContext{
			Context: eCtx.Context,
			Env:     world.Environment(sp.ID),
			Spawn:   sp,
		})
		if err != nil {
			return 0, fmt.Errorf("initializing %s: %w", sp.ID, err)
		}
	}
	if created {
		warnSharedTables(ctx.log, controllers)
	}

	steps := 0
	for step := 0; step < ctx.Horizon && !world.Done(); step++ {
		select {
		case <-eCtx.Context.Done():
			return steps, eCtx.Context.Err()
		default:
		}
		sCtx := &StepContext{Step: step, EpisodeContext: eCtx}
		for _, sp := range spawns {
			if _, err := controllers[sp.ID].Step(sCtx); err != nil {
				return steps, fmt.Errorf("agent %s: %w", sp.ID, err)
			}
		}
		if err := world.Advance(sCtx); err != nil {
			return steps, fmt.Errorf("advancing world: %w", err)
		}
		steps++
	}

	if ctx.SaveEveryEpisode {
		for _, sp := range spawns {
			if s, ok := controllers[sp.ID].(Saver); ok {
				if err := s.Save(); err != nil {
					return steps, fmt.Errorf("saving %s: %w", sp.ID, err)
				}
			}
		}
	}
	return steps, nil
}

// Two controllers writing the same table file race on save. This is a
// configuration hazard, so it is reported rather than prevented.
func warnSharedTables(log *logrus.Entry, controllers map[string]Controller) {
	owners := make(map[string][]string)
	for id, c := range controllers {
		if t, ok := c.(TableOwner); ok && t.TablePath() != "" {
			owners[t.TablePath()] = append(owners[t.TablePath()], id)
		}
	}
	for path, ids := range owners {
		if len(ids) > 1 {
			sort.Strings(ids)
			log.WithFields(logrus.Fields{"path": path, "agents": ids}).Warn("table path shared by several agents")
		}
	}
}

// Run executes every experiment runs times, then hands the analyzer datasets
// of each run to the comparators.
func (c *Comparison) Run(ctx context.Context, runs int, rConfig *RunConfig) {
	out := c.Output
	if out == nil {
		out = io.Discard
	}
	logger := c.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results := make(map[string]*ExperimentResult)
		experimentNames := make([]string, 0)

		for _, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return
			default:
			}
			rCtx := &experimentRunContext{
				run:       run,
				ctx:       ctx,
				analyzers: make(map[string]Analyzer),
				writer:    out,
				log:       logger.WithFields(logrus.Fields{"experiment": e.Name, "run": run}),
				RunConfig: rConfig,
			}
			for name, aC := range c.Analyzers {
				a := aC.NewAnalyzer(e.Name, run)
				a.Reset()
				rCtx.analyzers[name] = a
			}
			results[e.Name] = e.run(rCtx)
			experimentNames = append(experimentNames, e.Name)
		}

		// Gather datasets to run comparisons
		for name, cmpC := range c.Comparators {
			datasets := make([]DataSet, 0, len(experimentNames))
			for _, exp := range experimentNames {
				result := results[exp]
				if result.IsError() {
					datasets = append(datasets, nil)
				} else {
					datasets = append(datasets, result.Datasets[name])
				}
			}
			cmpC.NewComparator(run).Compare(experimentNames, datasets)
		}
	}
}
