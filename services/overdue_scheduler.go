package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"munaucollege_go/services/finance"
)

// StartOverdueSweepScheduler runs the nightly fee status sweep at 02:00. Fees
// past their due date with money still owing are flipped to overdue so the
// morning reports are accurate without waiting for a payment to touch the row.
func StartOverdueSweepScheduler() *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 2 * * *", func() {
		svc := finance.NewService()
		updated, err := svc.SweepOverdue(time.Now())
		if err != nil {
			logrus.WithError(err).Error("overdue fee sweep failed")
			return
		}
		logrus.WithField("updated", updated).Info("overdue fee sweep completed")
	})
	if err != nil {
		logrus.WithError(err).Error("failed to register overdue fee sweep")
		return c
	}

	c.Start()
	logrus.Info("overdue fee sweep scheduler started")
	return c
}
