package taskpool

import (
	"log"

	"github.com/joeycumines/logiface"
)

// poolLogger wraps the optional structured logger. With no logger
// configured, only task panics are reported, via the standard library's
// log.Printf.
type poolLogger struct {
	l *logiface.Logger[logiface.Event]
}

func (x poolLogger) taskPanic(r any) {
	if x.l != nil {
		x.l.Err().
			Any("panic", r).
			Log("task panicked")
		return
	}
	log.Printf("ERROR: taskpool: task panicked: %v", r)
}

func (x poolLogger) lifecycle(msg string, threads int) {
	if x.l == nil {
		return
	}
	x.l.Info().
		Int("threads", threads).
		Log(msg)
}

// logPromoted reports scanner promotions at debug level.
func (p *Pool) logPromoted(n int) {
	if p.logger.l == nil {
		return
	}
	p.logger.l.Debug().
		Int("promoted", n).
		Log("promoted waiting tasks")
}
