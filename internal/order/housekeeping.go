package order

import (
	"time"

	"topupin-be/internal/logger"
	"topupin-be/internal/metrics"

	"go.uber.org/zap"
)

// StartHousekeeping sweeps the store on interval, evicting orders whose
// payment window has closed without a buyer confirmation. Confirmed
// orders are never evicted: they wait for admin verification no matter
// how old they get. Returns a stop function.
func StartHousekeeping(store *Store, interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep(store)
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}

func sweep(store *Store) {
	log := logger.L()
	now := time.Now()

	evicted := 0
	for _, o := range store.ListAll() {
		if o.IsExpired(now) && !o.PaymentConfirmedByUser {
			if store.Remove(o.OrderCode) != nil {
				metrics.OrdersEvicted.Inc()
				evicted++
			}
		}
	}

	if evicted > 0 {
		log.Info("evicted expired pending orders",
			zap.Int("count", evicted),
			zap.Int("remaining", store.Len()))
	}
}
