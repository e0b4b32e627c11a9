package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/zeu5/gridchase-rl/core"
)

// ErrorAnalyzer writes the trace of every failed episode, and counts
// failures by kind.
type ErrorAnalyzer struct {
	savePath string
	exp      string
	dataset  *errorDataset
}

type errorDataset struct {
	Episodes []int
	Messages []string
	// Cancelled counts episodes stopped by context cancellation.
	Cancelled int
}

var _ core.Analyzer = &ErrorAnalyzer{}

func NewErrorAnalyzer(savePath string) *ErrorAnalyzer {
	if _, err := os.Stat(path.Join(savePath, "errors")); os.IsNotExist(err) {
		os.MkdirAll(path.Join(savePath, "errors"), 0755)
	}
	a := &ErrorAnalyzer{
		savePath: path.Join(savePath, "errors"),
	}
	a.Reset()
	return a
}

func (a *ErrorAnalyzer) Analyze(ctx *core.EpisodeContext, trace *core.Trace) {
	err := trace.Error()
	if err == nil {
		return
	}
	a.dataset.Episodes = append(a.dataset.Episodes, ctx.Episode)
	a.dataset.Messages = append(a.dataset.Messages, err.Error())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		a.dataset.Cancelled++
	}

	buf := new(bytes.Buffer)
	buf.WriteString(fmt.Sprintf("Error: %s\n", err))
	buf.WriteString(traceToString(trace))

	fileName := fmt.Sprintf("%d_error_%d.txt", ctx.Run, ctx.Episode)
	if a.exp != "" {
		fileName = fmt.Sprintf("%d_%s_error_%d.txt", ctx.Run, a.exp, ctx.Episode)
	}
	os.WriteFile(path.Join(a.savePath, fileName), buf.Bytes(), 0644)
}

func (a *ErrorAnalyzer) DataSet() core.DataSet {
	return &errorDataset{
		Episodes:  append([]int{}, a.dataset.Episodes...),
		Messages:  append([]string{}, a.dataset.Messages...),
		Cancelled: a.dataset.Cancelled,
	}
}

func (a *ErrorAnalyzer) Reset() {
	a.dataset = &errorDataset{
		Episodes: make([]int, 0),
		Messages: make([]string, 0),
	}
}

type ErrorAnalyzerConstructor struct {
	SavePath string
}

var _ core.AnalyzerConstructor = &ErrorAnalyzerConstructor{}

func NewErrorAnalyzerConstructor(savePath string) *ErrorAnalyzerConstructor {
	return &ErrorAnalyzerConstructor{
		SavePath: savePath,
	}
}

func (e *ErrorAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewErrorAnalyzer(e.SavePath)
	a.exp = exp
	return a
}
