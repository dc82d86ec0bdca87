package processx

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/Abraxas-365/userdesk/pkg/asyncx"
)

// Processor walks a sequence of numbers one element at a time, pausing
// between elements and reporting progress as it goes.
//
// A run checks the token before each element. A cancellation that lands
// during the wait only shortens that wait: the element still counts as
// processed, and the run fails at the next element's check. When it
// lands during the last element's wait the run completes without error.
type Processor struct {
	cfg Config
}

// New returns a Processor with the given options applied over the
// defaults (one second delay, no token, logging reporter).
func New(opts ...Option) *Processor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Processor{cfg: cfg}
}

// Config returns the effective configuration.
func (p *Processor) Config() Config { return p.cfg }

// Process runs numbers through the processor. It fails with
// ErrInvalidElementKind if any element is NaN and with ErrCancelled if
// the token is cancelled before an element starts.
func Process(numbers []float64, opts ...Option) error {
	return New(opts...).Process(numbers)
}

// Process validates numbers and then processes them in order.
func (p *Processor) Process(numbers []float64) error {
	for _, n := range numbers {
		if math.IsNaN(n) {
			return ErrRegistry.New(ErrInvalidElementKind)
		}
	}
	return p.run(numbers)
}

// ProcessValues accepts loosely typed input such as a decoded JSON value.
// Anything that is not a slice or array fails with ErrInvalidInputKind;
// a slice holding anything but numbers fails with ErrInvalidElementKind.
// The whole input is checked before the first element is processed.
func (p *Processor) ProcessValues(input any) error {
	numbers, err := Numbers(input)
	if err != nil {
		return err
	}
	return p.run(numbers)
}

// Numbers converts a slice or array of numeric values into []float64.
func Numbers(input any) ([]float64, error) {
	if fs, ok := input.([]float64); ok {
		for _, n := range fs {
			if math.IsNaN(n) {
				return nil, ErrRegistry.New(ErrInvalidElementKind)
			}
		}
		return fs, nil
	}

	v := reflect.ValueOf(input)
	if !v.IsValid() {
		return nil, ErrRegistry.New(ErrInvalidInputKind)
	}
	if k := v.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, ErrRegistry.New(ErrInvalidInputKind).WithDetail("kind", k.String())
	}

	out := make([]float64, v.Len())
	for i := range v.Len() {
		n, ok := toFloat(v.Index(i))
		if !ok || math.IsNaN(n) {
			return nil, ErrRegistry.New(ErrInvalidElementKind).WithDetail("index", i)
		}
		out[i] = n
	}
	return out, nil
}

var jsonNumberType = reflect.TypeFor[json.Number]()

func toFloat(v reflect.Value) (float64, bool) {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}

	if v.Type() == jsonNumberType {
		f, err := json.Number(v.String()).Float64()
		return f, err == nil
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func (p *Processor) run(numbers []float64) error {
	total := len(numbers)
	rep := p.cfg.Reporter
	if rep == nil {
		rep = Discard
	}

	for i, n := range numbers {
		if asyncx.Cancelled(p.cfg.Token) {
			return ErrRegistry.New(ErrCancelled).
				WithDetail("processed", i).
				WithDetail("total", total)
		}

		rep.Processing(n)

		// An interrupted wait is not an error here; the next iteration
		// reports it.
		asyncx.Sleep(p.cfg.Delay, p.cfg.Token)

		processed := i + 1
		rep.Progress(Progress{
			Processed: processed,
			Total:     total,
			Percent:   float64(processed) / float64(total) * 100,
		})
	}
	return nil
}
