package jobs

import (
	"context"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartExpirationSweep schedules a recurring job that forces EXPIRED on cards
// whose expiration date has passed. Returns the scheduler so the caller can
// stop it on shutdown.
func StartExpirationSweep(cards *service.CardService, schedule string, log *logrus.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := cards.SweepExpiredCards(ctx); err != nil {
			log.Errorf("Card expiration sweep failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Infof("Card expiration sweep scheduled: %q", schedule)
	return c, nil
}
