package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/zeu5/gridchase-rl/core"
)

type PrintDebugAnalyzer struct {
	// savePath is the path to save the trace
	savePath string
	exp      string
	// will save the trace to the file only after the episode number exceeds this threshold
	thresholdEpisode int
}

var _ core.Analyzer = &PrintDebugAnalyzer{}

func NewPrintDebugAnalyzer(savePath string, threshold int) *PrintDebugAnalyzer {
	// create a traces directory under save path if not exists
	if _, err := os.Stat(path.Join(savePath, "traces")); os.IsNotExist(err) {
		os.MkdirAll(path.Join(savePath, "traces"), 0755)
	}
	return &PrintDebugAnalyzer{
		savePath:         path.Join(savePath, "traces"),
		thresholdEpisode: threshold,
	}
}

func (a *PrintDebugAnalyzer) Analyze(ctx *core.EpisodeContext, trace *core.Trace) {
	if ctx.Episode < a.thresholdEpisode {
		return
	}
	fileName := fmt.Sprintf("%d_trace_%d.txt", ctx.Run, ctx.Episode)
	if a.exp != "" {
		fileName = fmt.Sprintf("%d_%s_trace_%d.txt", ctx.Run, a.exp, ctx.Episode)
	}
	os.WriteFile(path.Join(a.savePath, fileName), []byte(traceToString(trace)), 0644)
}

func traceToString(trace *core.Trace) string {
	buf := new(bytes.Buffer)
	for i := 0; i < trace.Len(); i++ {
		buf.WriteString(fmt.Sprintf("Step %d\n%s\n", i, stepToString(trace.Step(i))))
	}
	return buf.String()
}

func stepToString(step *core.Step) string {
	return fmt.Sprintf(
		"Tick: %d Agent: %s\nState: %s\nAction: %s\nReward: %v\nNext State: %s\n%s",
		step.Tick,
		step.Agent,
		stateToString(step.State),
		step.Action,
		step.Reward,
		stateToString(step.NextState),
		addInfoToString(step.Misc),
	)
}

func stateToString(state core.State) string {
	if state == nil {
		return "none"
	}
	return state.Hash()
}

// addInfoToString prints misc fields in key order.
func addInfoToString(addInfo map[string]interface{}) string {
	if len(addInfo) == 0 {
		return ""
	}
	keys := make([]string, 0, len(addInfo))
	for k := range addInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, addInfo[k])
	}
	return b.String()
}

func (a *PrintDebugAnalyzer) DataSet() core.DataSet {
	return nil
}

func (a *PrintDebugAnalyzer) Reset() {
	// do nothing
}

type PrintDebugAnalyzerConstructor struct {
	SavePath         string
	ThresholdEpisode int
}

var _ core.AnalyzerConstructor = &PrintDebugAnalyzerConstructor{}

func NewPrintDebugAnalyzerConstructor(savePath string, thresholdEpisode int) *PrintDebugAnalyzerConstructor {
	return &PrintDebugAnalyzerConstructor{
		SavePath:         savePath,
		ThresholdEpisode: thresholdEpisode,
	}
}

func (c *PrintDebugAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewPrintDebugAnalyzer(c.SavePath, c.ThresholdEpisode)
	a.exp = exp
	return a
}
