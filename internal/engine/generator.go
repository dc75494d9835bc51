package engine

import (
	"fmt"

	"songquiz-service/internal/domain"
)

// DefaultQuestionCount is the length of a quiz when the caller does not ask for one.
const DefaultQuestionCount = 10

// Generator builds shuffled question sets from a catalog.
type Generator struct {
	rnd Random
}

func NewGenerator(rnd Random) *Generator {
	return &Generator{rnd: rnd}
}

// FromAll draws up to count questions from every track in the catalog.
func (g *Generator) FromAll(catalog domain.Catalog, count int) ([]domain.QuizQuestion, error) {
	sources := flatten(catalog, nil)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", domain.ErrNoTracksAvailable)
	}
	return g.build(sources, count), nil
}

// FromAlbums draws up to count questions from the albums whose id is in albumIDs.
func (g *Generator) FromAlbums(catalog domain.Catalog, albumIDs []string, count int) ([]domain.QuizQuestion, error) {
	selected := make(map[string]struct{}, len(albumIDs))
	for _, id := range albumIDs {
		selected[id] = struct{}{}
	}
	sources := flatten(catalog, selected)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no tracks found in selected albums", domain.ErrNoTracksAvailable)
	}
	return g.build(sources, count), nil
}

type questionSource struct {
	track  domain.Track
	album  domain.Album
	artist domain.Artist
}

type sourceKey struct {
	artistID, albumID, trackID string
}

// flatten collects (track, album, artist) triples, keeping the first occurrence of each id tuple.
// A nil filter admits every album.
func flatten(catalog domain.Catalog, albums map[string]struct{}) []questionSource {
	seen := make(map[sourceKey]struct{})
	var out []questionSource
	for _, artist := range catalog.Artists {
		for _, album := range artist.Albums {
			if albums != nil {
				if _, ok := albums[album.ID]; !ok {
					continue
				}
			}
			for _, track := range album.Tracks {
				key := sourceKey{artist.ID, album.ID, track.ID}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, questionSource{track: track, album: album, artist: artist})
			}
		}
	}
	return out
}

func (g *Generator) build(sources []questionSource, count int) []domain.QuizQuestion {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	n := min(count, len(sources))

	// Partial Fisher–Yates: only the first n slots need to be drawn.
	pool := append([]questionSource(nil), sources...)
	for i := 0; i < n; i++ {
		j := i + g.rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	questions := make([]domain.QuizQuestion, 0, n)
	for _, src := range pool[:n] {
		questions = append(questions, domain.QuizQuestion{
			Track:            src.track,
			Album:            src.album,
			Artist:           src.artist,
			StartTimeSeconds: SelectStartTime(src.track, g.rnd),
		})
	}
	return questions
}
