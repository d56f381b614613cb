package locations

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Watcher polls the backing venue table and rebuilds the index when its
// content changes. Detection is by checksum, so touch-without-change does
// not trigger a rebuild.
type Watcher struct {
	scheduler *gocron.Scheduler
}

// NewWatcher creates a watcher that checks the index's backing table every
// interval.
func NewWatcher(index *Index, interval time.Duration) (*Watcher, error) {
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(interval).Do(func() {
		changed, err := index.RebuildIfChanged()
		if err != nil {
			log.Printf("[LOCATIONS] rebuild check failed: %v", err)
			return
		}
		if changed {
			log.Printf("[LOCATIONS] venue table changed, index rebuilt")
		}
	})
	if err != nil {
		return nil, err
	}

	return &Watcher{scheduler: scheduler}, nil
}

// Start begins polling in the background.
func (w *Watcher) Start() {
	w.scheduler.StartAsync()
}

// Stop halts polling. Safe to call more than once.
func (w *Watcher) Stop() {
	w.scheduler.Stop()
}
