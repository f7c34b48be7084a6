package enrich

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mrhoney81/routethink/pkg/poi"
)

// Annotate resolves elevation and nearest settlement for each record in
// place. Lookups are independent per record and fan out across a bounded
// worker pool; a failed lookup is logged and leaves the field unset.
// Records are not reordered.
func Annotate(ctx context.Context, records []poi.Enriched, elev *ElevationClient, settlements *SettlementIndex, workers int) {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		sem <- struct{}{}
		go func(p *poi.Enriched) {
			defer wg.Done()
			defer func() { <-sem }()
			if elev != nil {
				ele, err := elev.Lookup(ctx, p.Lat, p.Lon)
				if err != nil {
					log.Warn().Str("id", p.ID).Err(err).Msg("Elevation lookup failed")
				} else {
					p.ElevationM = &ele
				}
			}
			p.NearestSettlement = settlements.Nearest(p.X, p.Y)
		}(&records[i])
	}
	wg.Wait()
}
