package agents

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/features"
)

var (
	testHome    = core.Position{X: 7, Y: 5}
	testScatter = core.Position{X: 1, Y: 1}
)

func greedyPursuerConfig() PursuerConfig {
	cfg := DefaultPursuerConfig()
	cfg.Epsilon = 0
	cfg.Seed = 1
	cfg.TablePath = ""
	cfg.SaveAtTick = NeverSave
	return cfg
}

func newTestPursuer(t *testing.T, cfg PursuerConfig, env *fakeEnv) *Pursuer {
	t.Helper()
	p := NewPursuer("pursuer-0", cfg, quietLogger())
	require.NoError(t, p.Initialize(&core.InitContext{
		Env: env,
		Spawn: core.Spawn{
			ID:       "pursuer-0",
			Role:     core.RolePursuer,
			Position: env.pos,
			Home:     testHome,
			Scatter:  testScatter,
		},
	}))
	return p
}

func chasingEnv() *fakeEnv {
	env := newFakeEnv(core.Position{X: 5, Y: 5})
	env.tick = 1
	env.mode = core.ModeChase
	env.rivals = []core.Position{{X: 5, Y: 7}}
	return env
}

func TestPursuerStepBeforeInitialize(t *testing.T) {
	p := NewPursuer("pursuer-0", greedyPursuerConfig(), quietLogger())
	_, err := p.Step(nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestPursuerPreRelease(t *testing.T) {
	cfg := greedyPursuerConfig()
	cfg.ReleaseTick = 2
	env := chasingEnv()
	p := newTestPursuer(t, cfg, env)

	for i := 1; i <= 3; i++ {
		action, err := p.Step(nil)
		require.NoError(t, err)
		assert.Equal(t, core.NoAction, action)
		assert.Equal(t, i, p.Memory().ReleaseTimer)
	}
	assert.Equal(t, 0, env.explores, "no perception before release")
	assert.Empty(t, env.moves)

	action, err := p.Step(nil)
	require.NoError(t, err)
	assert.Equal(t, core.Chase, action)
	assert.Equal(t, 4, env.explores)
	assert.Equal(t, 3, p.Memory().ReleaseTimer)
}

func TestPursuerDefaultReleaseGatesFirstStep(t *testing.T) {
	env := chasingEnv()
	p := newTestPursuer(t, greedyPursuerConfig(), env)

	action, err := p.Step(nil)
	require.NoError(t, err)
	assert.Equal(t, core.NoAction, action)

	action, err = p.Step(nil)
	require.NoError(t, err)
	assert.Equal(t, core.Chase, action)
}

// release steps the pursuer through its house timer.
func release(t *testing.T, p *Pursuer) {
	t.Helper()
	for p.Memory().ReleaseTimer <= p.Config().ReleaseTick {
		_, err := p.Step(nil)
		require.NoError(t, err)
	}
}

func TestPursuerLaggedUpdate(t *testing.T) {
	env := chasingEnv()
	p := newTestPursuer(t, greedyPursuerConfig(), env)
	release(t, p)
	first := features.PursuerState{Mode: core.ModeChase, SeesEvader: true, Distance: features.DistanceNear}

	action, err := p.Step(nil)
	require.NoError(t, err)
	assert.Equal(t, core.Chase, action)
	assert.Equal(t, 0, p.Table().Len(), "first decision has nothing to credit")
	require.NotNil(t, p.Memory().Pending)
	assert.Equal(t, Transition{State: first, Action: core.Chase}, *p.Memory().Pending)
	move, _ := env.lastMove()
	assert.Equal(t, env.rivals[0], move, "chase targets the evader")

	env.tick = 2
	_, err = p.Step(nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Table().Get(first, core.Chase), 1e-9)
	assert.Equal(t, 1, p.Memory().Updates)
	assert.InDelta(t, 10, p.Memory().Return, 1e-9)
}

func TestPursuerRewardFromStepStart(t *testing.T) {
	env := chasingEnv()
	p := newTestPursuer(t, greedyPursuerConfig(), env)
	release(t, p)
	first := features.PursuerState{Mode: core.ModeChase, SeesEvader: true, Distance: features.DistanceNear}

	_, err := p.Step(nil)
	require.NoError(t, err)

	env.tick = 3
	env.mode = core.ModeFrightened
	_, err = p.Step(nil)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, p.Table().Get(first, core.Chase), 1e-9)
	assert.Equal(t, core.ModeFrightened, p.Memory().Pending.State.(features.PursuerState).Mode)
}

func TestPursuerFrightenedStride(t *testing.T) {
	env := chasingEnv()
	env.mode = core.ModeFrightened
	p := newTestPursuer(t, greedyPursuerConfig(), env)
	release(t, p)
	explores := env.explores

	env.tick = 4
	action, err := p.Step(nil)
	require.NoError(t, err)
	assert.Equal(t, core.NoAction, action)
	assert.Equal(t, explores, env.explores)
	assert.Nil(t, p.Memory().Pending)

	env.tick = 5
	action, err = p.Step(nil)
	require.NoError(t, err)
	assert.NotEqual(t, core.NoAction, action)
	assert.Equal(t, explores+4, env.explores)
	assert.NotNil(t, p.Memory().Pending)
}

func TestPursuerFrightenedStrideZeroNeverSkips(t *testing.T) {
	cfg := greedyPursuerConfig()
	cfg.FrightenedStride = 0
	env := chasingEnv()
	env.mode = core.ModeFrightened
	p := newTestPursuer(t, cfg, env)
	release(t, p)

	env.tick = 4
	action, err := p.Step(nil)
	require.NoError(t, err)
	assert.NotEqual(t, core.NoAction, action)
}

func TestPursuerEaten(t *testing.T) {
	env := chasingEnv()
	p := newTestPursuer(t, greedyPursuerConfig(), env)
	release(t, p)

	_, err := p.Step(nil)
	require.NoError(t, err)
	pending := *p.Memory().Pending
	explores := env.explores

	env.tick = 2
	env.mode = core.ModeEaten
	action, err := p.Step(nil)
	require.NoError(t, err)
	assert.Equal(t, core.NoAction, action)
	move, _ := env.lastMove()
	assert.Equal(t, testHome, move)
	assert.Equal(t, explores, env.explores, "no perception while eaten")
	assert.Equal(t, 0, p.Table().Len())
	assert.Equal(t, pending, *p.Memory().Pending)
}

func TestPursuerResolveTarget(t *testing.T) {
	env := chasingEnv()
	p := newTestPursuer(t, greedyPursuerConfig(), env)
	perception := core.Perceive(env, 10)

	assert.Equal(t, env.rivals[0], p.resolveTarget(core.Chase, perception))
	assert.Equal(t, core.Position{X: 5, Y: 4}, p.resolveTarget(core.Flee, perception), "farthest tile, first on ties")
	assert.Equal(t, testScatter, p.resolveTarget(core.Scatter, perception))
	assert.Contains(t, env.occupiable, p.resolveTarget(core.Random, perception))

	perception.Rivals = nil
	assert.Contains(t, env.occupiable, p.resolveTarget(core.Chase, perception))
	assert.Contains(t, env.occupiable, p.resolveTarget(core.Flee, perception))

	perception.Occupiable = nil
	assert.Equal(t, perception.Position, p.resolveTarget(core.Random, perception))
}

func TestPursuerPicksLearnedIntent(t *testing.T) {
	env := chasingEnv()
	p := newTestPursuer(t, greedyPursuerConfig(), env)
	release(t, p)
	state := features.PursuerState{Mode: core.ModeChase, SeesEvader: true, Distance: features.DistanceNear}
	p.Table().Set(state, core.Scatter, 3)

	action, err := p.Step(nil)
	require.NoError(t, err)
	assert.Equal(t, core.Scatter, action)
	move, _ := env.lastMove()
	assert.Equal(t, testScatter, move)
}

func TestPursuerBlocked(t *testing.T) {
	env := chasingEnv()
	env.occupiable = nil
	p := newTestPursuer(t, greedyPursuerConfig(), env)
	release(t, p)

	action, err := p.Step(nil)
	require.NoError(t, err)
	assert.Equal(t, core.Stay, action)
	move, _ := env.lastMove()
	assert.Equal(t, env.pos, move)

	pending := p.Memory().Pending
	require.NotNil(t, pending)
	assert.Equal(t, core.Stay, pending.Action)
	_, err = p.Step(nil)
	require.NoError(t, err)
	_, ok := p.Table().Lookup(pending.State, core.Stay)
	assert.True(t, ok, "a blocked step is learned as Stay")
}

func TestPursuerSavesAtTick(t *testing.T) {
	cfg := greedyPursuerConfig()
	cfg.TablePath = filepath.Join(t.TempDir(), "ghost_{id}.csv")
	cfg.SaveAtTick = 180
	env := chasingEnv()
	env.tick = 180
	p := newTestPursuer(t, cfg, env)
	want := filepath.Join(filepath.Dir(cfg.TablePath), "ghost_pursuer-0.csv")
	assert.Equal(t, want, p.TablePath())

	_, err := p.Step(nil)
	require.NoError(t, err)
	assert.NoFileExists(t, want, "gated steps do not save")

	_, err = p.Step(nil)
	require.NoError(t, err)
	assert.FileExists(t, want)
}

func TestPursuerInitializeResetsMemory(t *testing.T) {
	env := chasingEnv()
	p := newTestPursuer(t, greedyPursuerConfig(), env)
	release(t, p)
	_, err := p.Step(nil)
	require.NoError(t, err)
	require.NotNil(t, p.Memory().Pending)

	require.NoError(t, p.Initialize(&core.InitContext{Env: env}))
	assert.Equal(t, PursuerMemory{}, p.Memory())
}

func TestPursuerConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultPursuerConfig().Validate())

	cfg := DefaultPursuerConfig()
	cfg.FrightenedStride = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultPursuerConfig()
	cfg.Encoder.NearBelow = 10
	assert.Error(t, cfg.Validate())

	cfg = DefaultPursuerConfig()
	cfg.VisualRange = 0
	assert.Error(t, cfg.Validate())
}

func TestConstructorsOffsetSeeds(t *testing.T) {
	cfg := greedyPursuerConfig()
	cfg.Seed = 5
	cfg.TablePath = "ghost_{id}.csv"
	c := NewPursuerConstructor(cfg, quietLogger())

	a := c.NewController("pursuer-0").(*Pursuer)
	b := c.NewController("pursuer-1").(*Pursuer)
	assert.Equal(t, uint64(5), a.Config().Seed)
	assert.Equal(t, uint64(6), b.Config().Seed)
	assert.Equal(t, "ghost_pursuer-1.csv", b.TablePath())

	ecfg := greedyEvaderConfig()
	ecfg.Seed = 0
	e := NewEvaderConstructor(ecfg, quietLogger()).NewController("evader").(*Evader)
	assert.Equal(t, uint64(0), e.Config().Seed, "clock seeding is kept")
}

func TestDefaultPursuerTablesArePerAgent(t *testing.T) {
	c := NewPursuerConstructor(DefaultPursuerConfig(), quietLogger())
	a := c.NewController("pursuer-0").(*Pursuer)
	b := c.NewController("pursuer-1").(*Pursuer)

	assert.Equal(t, "ghost_qtable_pursuer-0.csv", a.TablePath())
	assert.Equal(t, "ghost_qtable_pursuer-1.csv", b.TablePath())
}
