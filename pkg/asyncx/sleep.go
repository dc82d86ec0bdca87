package asyncx

import (
	"sync"
	"time"
)

// Sleep blocks for d unless tok is cancelled first. It returns true if
// the full duration elapsed and false if the wait was cut short. A nil
// token makes Sleep an ordinary timer wait.
func Sleep(d time.Duration, tok Token) bool {
	if d <= 0 {
		return !Cancelled(tok)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	if tok == nil {
		<-timer.C
		return true
	}

	woke := make(chan struct{})
	var once sync.Once
	stop := tok.OnCancelled(func() { once.Do(func() { close(woke) }) })
	defer stop()

	select {
	case <-timer.C:
		return true
	case <-woke:
		return false
	}
}
