package processx

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Abraxas-365/userdesk/pkg/logx"
)

// Progress is the state announced after each element completes.
type Progress struct {
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// String renders the progress line. The percentage is rounded half up
// to one decimal, so 6.25 prints as 6.3.
func (p Progress) String() string {
	return fmt.Sprintf("Progress: %.1f%% (%d/%d)", roundHalfUp(p.Percent), p.Processed, p.Total)
}

func roundHalfUp(pct float64) float64 {
	return math.Floor(pct*10+0.5) / 10
}

// Reporter receives the notifications of a run, in order.
type Reporter interface {
	Processing(value float64)
	Progress(p Progress)
}

// FormatValue renders a number the way the processing line shows it:
// shortest representation, no exponent, no trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ProcessingLine is the text announced before an element's delay.
func ProcessingLine(v float64) string {
	return "Processing: " + FormatValue(v)
}

// Discard drops every notification.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Processing(float64) {}
func (discard) Progress(Progress)  {}

// WriterReporter writes each notification as one line to W.
type WriterReporter struct {
	W io.Writer
}

func (r WriterReporter) Processing(v float64) {
	fmt.Fprintln(r.W, ProcessingLine(v))
}

func (r WriterReporter) Progress(p Progress) {
	fmt.Fprintln(r.W, p.String())
}

// LogReporter logs notifications at info level. Fields, when set, are
// attached to every entry.
type LogReporter struct {
	Fields logx.Fields
}

func (r LogReporter) Processing(v float64) {
	logx.WithFields(r.Fields).Info(ProcessingLine(v))
}

func (r LogReporter) Progress(p Progress) {
	logx.WithFields(r.Fields).
		WithField("processed", p.Processed).
		WithField("total", p.Total).
		Info(p.String())
}

// ReporterFunc adapts a function receiving rendered lines into a Reporter.
type ReporterFunc func(line string)

func (f ReporterFunc) Processing(v float64) { f(ProcessingLine(v)) }
func (f ReporterFunc) Progress(p Progress)  { f(p.String()) }
