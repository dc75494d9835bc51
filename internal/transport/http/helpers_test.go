package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"songquiz-service/internal/app"
	"songquiz-service/internal/domain"
	"songquiz-service/internal/engine"
	"songquiz-service/internal/infra/memory"
)

// fixedClock never advances, so every answer lands in the fastest time tier.
type fixedClock struct{}

func (fixedClock) NowMillis() float64 { return 0 }

var titlesByURL = map[string]string{
	"https://youtu.be/aaaaaaaaaaa": "Morning Light",
	"https://youtu.be/bbbbbbbbbbb": "Ｎｉｇｈｔ Ｒｕｎ",
}

func sampleCatalog() domain.Catalog {
	duration := 240.0
	return domain.Catalog{Artists: []domain.Artist{{
		ID:   "ar1",
		Name: "The Examples",
		Albums: []domain.Album{{
			ID:       "al1",
			Name:     "Daybreak",
			CoverURL: "https://img.example.com/al1.jpg",
			Tracks: []domain.Track{
				{ID: "t1", Title: "Morning Light", MediaURL: "https://youtu.be/aaaaaaaaaaa", DurationSeconds: &duration},
				{ID: "t2", Title: "Ｎｉｇｈｔ Ｒｕｎ", MediaURL: "https://youtu.be/bbbbbbbbbbb"},
			},
		}},
	}}}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	catalogs := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(sampleCatalog()), time.Minute)
	rnd := engine.NewLockedRandom(engine.NewRandom(7))
	rankings := app.NewRankingService(memory.NewRankingRepository())
	challenges := app.NewChallengeService(catalogs, memory.NewSessionStore(5*time.Minute), rankings, app.ChallengeOptions{
		QuestionCount: 2,
		Random:        rnd,
		Clock:         fixedClock{},
	})
	server := httptest.NewServer(NewRouter(app.NewQuizService(catalogs, rnd), challenges, rankings))
	t.Cleanup(server.Close)
	return server
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, method, url string, body any, wantStatus int) response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()

	var out response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	if res.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d (%s)", method, url, wantStatus, res.StatusCode, out.Error)
	}
	return out
}

func decodeData(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

type stateView struct {
	SessionID  string `json:"sessionId"`
	TotalScore int    `json:"totalScore"`
	Revealed   bool   `json:"revealed"`
	Completed  bool   `json:"completed"`
	Question   *struct {
		Index    int    `json:"index"`
		Total    int    `json:"total"`
		MediaURL string `json:"mediaUrl"`
		VideoID  string `json:"videoId"`
	} `json:"question"`
}
