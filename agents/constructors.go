package agents

import (
	"github.com/sirupsen/logrus"

	"github.com/zeu5/gridchase-rl/core"
)

type EvaderConstructor struct {
	config EvaderConfig
	logger *logrus.Logger
	count  uint64
}

var _ core.ControllerConstructor = &EvaderConstructor{}

func NewEvaderConstructor(config EvaderConfig, logger *logrus.Logger) *EvaderConstructor {
	return &EvaderConstructor{
		config: config,
		logger: logger,
	}
}

// NewController gives every agent its own generator. A fixed seed stays
// fixed per agent but differs between agents.
func (e *EvaderConstructor) NewController(id string) core.Controller {
	config := e.config
	config.Seed = offsetSeed(config.Seed, e.count)
	e.count++
	return NewEvader(id, config, e.logger)
}

type PursuerConstructor struct {
	config PursuerConfig
	logger *logrus.Logger
	count  uint64
}

var _ core.ControllerConstructor = &PursuerConstructor{}

func NewPursuerConstructor(config PursuerConfig, logger *logrus.Logger) *PursuerConstructor {
	return &PursuerConstructor{
		config: config,
		logger: logger,
	}
}

func (p *PursuerConstructor) NewController(id string) core.Controller {
	config := p.config
	config.Seed = offsetSeed(config.Seed, p.count)
	p.count++
	return NewPursuer(id, config, p.logger)
}

func offsetSeed(seed, n uint64) uint64 {
	if seed == 0 {
		return 0
	}
	return seed + n
}
