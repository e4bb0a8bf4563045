package sync

import (
	"context"
)

// PullStats summarizes one cache refresh.
type PullStats struct {
	Assets   int
	Vehicles int
	Scholars int
}

// Pull refreshes the local cache from the remote API: registered
// assets, vehicles and the day scholar roster. Partial pulls are fine;
// each collection that did arrive is applied even if a later one
// fails.
func (c *Coordinator) Pull(ctx context.Context) (*PullStats, error) {
	stats := &PullStats{}

	assets, err := c.gw.Assets(ctx)
	if err != nil {
		return stats, err
	}
	for _, asset := range assets {
		if err := c.store.PutAsset(ctx, asset); err != nil {
			return stats, err
		}
		stats.Assets++
	}

	vehicles, err := c.gw.Vehicles(ctx)
	if err != nil {
		return stats, err
	}
	for _, vehicle := range vehicles {
		if err := c.store.PutVehicle(ctx, vehicle); err != nil {
			return stats, err
		}
		stats.Vehicles++
	}

	scholars, err := c.gw.DayScholars(ctx)
	if err != nil {
		return stats, err
	}
	for _, scholar := range scholars {
		c.cacheScholarStatus(ctx, scholar.UserID, scholar.Status)
		stats.Scholars++
	}

	c.logger.Info("Cache pull complete",
		"assets", stats.Assets, "vehicles", stats.Vehicles, "scholars", stats.Scholars)
	return stats, nil
}
