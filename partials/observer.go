package partials

// Observer receives progress callbacks. Calls arrive from worker goroutines
// in no particular order, so implementations must be safe for concurrent use.
type Observer interface {
	// FrameDone is called once per frame after its peaks are stored
	FrameDone(index, total, peaks int)
	// PartialDone is called once per partial after its envelope is analyzed
	PartialDone(index, total int)
}

// NopObserver ignores all callbacks
type NopObserver struct{}

func (NopObserver) FrameDone(index, total, peaks int) {}
func (NopObserver) PartialDone(index, total int)      {}

// Option configures a Builder or an Analyzer
type Option func(*options)

type options struct {
	observer Observer
}

func defaultOptions() options {
	return options{observer: NopObserver{}}
}

// WithObserver attaches a progress observer. A nil observer is ignored.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}
