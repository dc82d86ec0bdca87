// Package processx runs a list of numbers through a sequential,
// cancellable, delayed loop.
//
// Each element is announced, followed by a pause, followed by a progress
// line:
//
//	Processing: 1
//	Progress: 25.0% (1/4)
//
// Runs are cancelled cooperatively through an [asyncx.Token]:
//
//	src := asyncx.NewSource()
//	time.AfterFunc(1500*time.Millisecond, src.Cancel)
//	err := processx.Process([]float64{1, 2, 3},
//	    processx.WithDelay(time.Second),
//	    processx.WithToken(src.Token()),
//	)
//	if errx.IsCode(err, processx.ErrCancelled) {
//	    // aborted
//	}
package processx
