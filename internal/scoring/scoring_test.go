package scoring

import (
	"math"
	"testing"

	"seotrack/internal/models"
)

func pos(p int) *int { return &p }

func TestRawScore(t *testing.T) {
	tests := []struct {
		name     string
		position int
		want     float64
	}{
		{"first", 1, 95},
		{"tenth", 10, 50},
		{"nineteenth", 19, 5},
		{"twentieth", 20, 0},
		{"beyond twenty", 45, 0},
		{"zero", 0, 0},
		{"negative", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RawScore(tt.position); got != tt.want {
				t.Errorf("RawScore(%d) = %v, want %v", tt.position, got, tt.want)
			}
		})
	}
}

func TestWeights_For(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		platform string
		want     float64
	}{
		{"google", 1.0},
		{"Google", 1.0},
		{"bing", 0.8},
		{"youtube", 0.7},
		{"gemini", 0.9},
		{"chatgpt", 0.85},
		{"perplexity", 0.75},
		{"google_ai", DefaultPlatformWeight},
		{"", DefaultPlatformWeight},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			if got := w.For(tt.platform); got != tt.want {
				t.Errorf("For(%q) = %v, want %v", tt.platform, got, tt.want)
			}
		})
	}
}

func TestNewWeights_LowercasesKeys(t *testing.T) {
	w := NewWeights(map[string]float64{" Bing ": 0.6, "YouTube": 0.4}, 0.2)
	if got := w.For("bing"); got != 0.6 {
		t.Errorf("For(bing) = %v, want 0.6", got)
	}
	if got := w.For("youtube"); got != 0.4 {
		t.Errorf("For(youtube) = %v, want 0.4", got)
	}
	if got := w.For("other"); got != 0.2 {
		t.Errorf("For(other) = %v, want 0.2", got)
	}
	if names := w.Names(); len(names) != 2 || names[0] != "bing" || names[1] != "youtube" {
		t.Errorf("Names() = %v", names)
	}
}

func TestScore_SinglePrimaryPlatform(t *testing.T) {
	s := NewScorer(DefaultWeights())
	got := s.Score([]models.Observation{{Platform: "google", Position: pos(1)}})

	want := 95.0 / 6.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score() = %v, want %v", got, want)
	}
	if got < 15.8 || got > 15.9 {
		t.Errorf("Score() = %v, want ~15.8", got)
	}
}

func TestScore_EmptyIsZero(t *testing.T) {
	s := NewScorer(DefaultWeights())
	if got := s.Score(nil); got != 0 {
		t.Errorf("Score(nil) = %v, want 0", got)
	}
	if got := s.Score([]models.Observation{}); got != 0 {
		t.Errorf("Score([]) = %v, want 0", got)
	}
}

func TestScore_AllAbsentIsZero(t *testing.T) {
	s := NewScorer(DefaultWeights())
	obs := []models.Observation{
		{Platform: "google"},
		{Platform: "bing"},
		{Platform: "youtube"},
		{Platform: "unknown"},
		{Platform: "gemini", Position: pos(0)},
	}
	if got := s.Score(obs); got != 0 {
		t.Errorf("Score() = %v, want 0", got)
	}
}

func TestScore_AbsentStillCountsInDenominator(t *testing.T) {
	s := NewScorer(DefaultWeights())
	withAbsent := s.Score([]models.Observation{
		{Platform: "google", Position: pos(1)},
		{Platform: "bing"},
	})
	alone := s.Score([]models.Observation{{Platform: "google", Position: pos(1)}})
	if withAbsent != alone {
		t.Errorf("absent observation changed score: %v vs %v", withAbsent, alone)
	}
}

func TestScore_Bounds(t *testing.T) {
	s := NewScorer(NewWeights(map[string]float64{"google": 50}, 0.5))
	got := s.Score([]models.Observation{{Platform: "google", Position: pos(1)}})
	if got != 100 {
		t.Errorf("Score() = %v, want clipped to 100", got)
	}

	s = NewScorer(NewWeights(map[string]float64{"google": -3}, 0.5))
	got = s.Score([]models.Observation{{Platform: "google", Position: pos(1)}})
	if got != 0 {
		t.Errorf("Score() = %v, want clipped to 0", got)
	}

	s = NewScorer(DefaultWeights())
	for p := -2; p <= 30; p++ {
		var obs []models.Observation
		for _, name := range DefaultWeights().Names() {
			obs = append(obs, models.Observation{Platform: name, Position: pos(p)})
		}
		obs = append(obs, models.Observation{Platform: "extra", Position: pos(p)})
		if got := s.Score(obs); got < 0 || got > 100 {
			t.Errorf("Score() at position %d = %v, out of [0,100]", p, got)
		}
	}
}

func TestScore_MonotonicInPosition(t *testing.T) {
	s := NewScorer(DefaultWeights())
	base := []models.Observation{
		{Platform: "bing", Position: pos(4)},
		{Platform: "youtube"},
		{Platform: "chatgpt", Position: pos(12)},
	}

	for _, platform := range []string{"google", "bing", "perplexity", "unlisted"} {
		prev := -1.0
		for p := 25; p >= 1; p-- {
			obs := append([]models.Observation{{Platform: platform, Position: pos(p)}}, base...)
			got := s.Score(obs)
			if got < prev {
				t.Errorf("%s: improving to position %d decreased score %v -> %v", platform, p, prev, got)
			}
			prev = got
		}
	}
}

func TestScore_EmptyWeightTable(t *testing.T) {
	s := NewScorer(Weights{Default: 0.5})
	if got := s.Score([]models.Observation{{Platform: "google", Position: pos(1)}}); got != 0 {
		t.Errorf("Score() = %v, want 0", got)
	}
}

func TestContribution(t *testing.T) {
	s := NewScorer(DefaultWeights())
	if got := s.Contribution(models.Observation{Platform: "youtube", Position: pos(2)}); math.Abs(got-63) > 1e-9 {
		t.Errorf("Contribution() = %v, want 63", got)
	}
	if got := s.Contribution(models.Observation{Platform: "youtube"}); got != 0 {
		t.Errorf("Contribution() = %v, want 0", got)
	}
}
