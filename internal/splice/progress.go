package splice

import (
	"github.com/sirupsen/logrus"
)

// Progress receives the completed fraction of a splice, from 0 to 1.
type Progress func(fraction float64)

// progressSteps is how many updates a listener gets over one operation,
// not counting the final 1.0.
const progressSteps = 10

// ProgressChannel adapts a channel to a Progress callback. Updates the
// receiver is not ready for are dropped so the splice never blocks on it.
func ProgressChannel(ch chan<- float64) Progress {
	return func(fraction float64) {
		select {
		case ch <- fraction:
		default:
		}
	}
}

// reporter throttles progress updates and shields the splice from a
// misbehaving callback.
type reporter struct {
	fn       Progress
	log      logrus.FieldLogger
	total    int64
	step     int64
	next     int64
	finished bool
}

func newReporter(fn Progress, log logrus.FieldLogger, total int64) *reporter {
	step := (total + progressSteps - 1) / progressSteps
	if step < 1 {
		step = 1
	}
	return &reporter{
		fn:    fn,
		log:   log,
		total: total,
		step:  step,
		next:  step,
	}
}

// update reports done bytes if a step boundary was crossed. The final update
// is always exactly 1.0 and is sent once.
func (r *reporter) update(done int64) {
	if r == nil || r.fn == nil || r.finished {
		return
	}
	if done < r.total && done < r.next {
		return
	}
	for r.next <= done {
		r.next += r.step
	}
	if done >= r.total {
		r.finished = true
		r.emit(1)
		return
	}
	r.emit(float64(done) / float64(r.total))
}

func (r *reporter) emit(fraction float64) {
	defer func() {
		if v := recover(); v != nil {
			r.log.WithFields(logrus.Fields{
				"panic":    v,
				"fraction": fraction,
			}).Warn("Progress callback panicked, ignoring.")
		}
	}()
	r.fn(fraction)
}
