package retention

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/zephyrlab/weatherhub/internal/models"
)

const pruneTimeout = time.Minute

// Deleter removes readings older than a cutoff, reporting rows per kind.
type Deleter interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (map[models.MetricKind]int64, error)
}

// Pruner periodically deletes readings past their retention age.
type Pruner struct {
	scheduler *gocron.Scheduler
	store     Deleter
	maxAge    time.Duration
	every     time.Duration
	log       *logrus.Entry
}

// New builds a pruner. MaxAge <= 0 disables it; Start becomes a no-op.
func New(store Deleter, maxAge, every time.Duration, log *logrus.Entry) *Pruner {
	return &Pruner{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		maxAge:    maxAge,
		every:     every,
		log:       log,
	}
}

// Start schedules the periodic prune job.
func (p *Pruner) Start() error {
	if p.maxAge <= 0 {
		p.log.Info("retention pruning disabled")
		return nil
	}

	if _, err := p.scheduler.Every(p.every).Do(p.prune); err != nil {
		return err
	}

	p.scheduler.StartAsync()
	p.log.Infof("pruning readings older than %s every %s", p.maxAge, p.every)
	return nil
}

// Stop cancels future prune runs. A prune already underway finishes.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

func (p *Pruner) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	cutoff := time.Now().Add(-p.maxAge)
	deleted, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.log.WithError(err).Error("prune failed")
		return
	}

	for _, kind := range models.Kinds() {
		if n := deleted[kind]; n > 0 {
			p.log.Infof("pruned %d %s readings", n, kind)
		}
	}
}
