package youtube

import (
	"context"
	"log"
	"math"

	"songquiz-service/internal/domain"
)

// EnrichReport counts what an enrichment pass did.
type EnrichReport struct {
	Updated int
	Skipped int
	Failed  int
}

// Enricher fills in missing track durations from video metadata.
type Enricher struct {
	client MetadataClient
}

func NewEnricher(client MetadataClient) *Enricher {
	return &Enricher{client: client}
}

// Enrich returns a copy of the catalog where every track without a usable
// duration or midpoint has its duration looked up. Lookup failures are
// logged and leave the track as it was, so the fallback window still applies.
func (e *Enricher) Enrich(ctx context.Context, catalog domain.Catalog) (domain.Catalog, EnrichReport, error) {
	var report EnrichReport
	out := domain.Catalog{Artists: make([]domain.Artist, len(catalog.Artists))}
	for i, artist := range catalog.Artists {
		artist.Albums = append([]domain.Album(nil), artist.Albums...)
		for j, album := range artist.Albums {
			album.Tracks = append([]domain.Track(nil), album.Tracks...)
			for k, track := range album.Tracks {
				if err := ctx.Err(); err != nil {
					return domain.Catalog{}, report, err
				}
				if track.StartHint().Kind != domain.HintNone {
					report.Skipped++
					continue
				}
				id, err := VideoID(track.MediaURL)
				if err != nil {
					log.Printf("enrich %s: %v", track.ID, err)
					report.Failed++
					continue
				}
				d, err := e.client.Duration(ctx, id)
				if err != nil || d <= 0 {
					log.Printf("enrich %s: no duration (%v)", track.ID, err)
					report.Failed++
					continue
				}
				seconds := math.Round(d.Seconds())
				track.DurationSeconds = &seconds
				album.Tracks[k] = track
				report.Updated++
			}
			artist.Albums[j] = album
		}
		out.Artists[i] = artist
	}
	return out, report, nil
}
