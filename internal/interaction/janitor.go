package interaction

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor runs the TTL sweep on a fixed schedule.
type Janitor struct {
	cron  *cron.Cron
	store *Store
}

func NewJanitor(store *Store, interval time.Duration) (*Janitor, error) {
	if interval <= 0 {
		interval = time.Minute
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		store.Sweep()
	}); err != nil {
		return nil, err
	}

	return &Janitor{cron: c, store: store}, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
}

func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
