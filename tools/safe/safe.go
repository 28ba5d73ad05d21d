package safe

import "snapcap/logger"

// Go starts a goroutine that recovers from panics so a single bad handler
// cannot take the process down.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("panic recovered: %v", r)
			}
		}()
		f()
	}()
}
