package engine

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/vector"
)

// markerEncoder 把文本映射到一组固定标记词的出现向量。
// 片描述与查询语句共享演员名/导演名/类型名标记，共享越多余弦相似度越高，
// 结果可手工推演。
type markerEncoder struct{}

var markers = []string{
	"DiCaprio", "Winslet", "Pegg",
	"Cameron", "Wright", "Tarantino",
	"Action", "Drama", "Comedy",
}

func (markerEncoder) EncodeTexts(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, len(markers))
		for j, m := range markers {
			if strings.Contains(text, m) {
				vec[j] = 1
			}
		}
		out[i] = vec
	}
	return out, nil
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	actors := []core.Actor{
		{ID: 1, Name: "Leonardo DiCaprio"},
		{ID: 2, Name: "Kate Winslet"},
		{ID: 3, Name: "Simon Pegg"},
		{ID: 4, Name: "Uma Thurman"},
	}
	rows := []catalog.FilmRow{
		{Title: "Titanic", Genres: "Action, Drama", Director: "Cameron", Cast: "[1,2]"},
		{Title: "Hot Fuzz", Genres: "Comedy", Director: "Wright", Cast: "[3]"},
		{Title: "Django Unchained", Genres: "Action", Director: "Tarantino", Cast: "[1]"},
	}
	cat := catalog.Build(actors, rows)

	idx, err := vector.Build(context.Background(), cat, markerEncoder{})
	if err != nil {
		t.Fatalf("vector.Build() error = %v", err)
	}
	return New(cat, idx, markerEncoder{}, opts...)
}

func TestRecommendRanksLikedActorFilmsFirst(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.Recommend(context.Background(),
		[]string{"Leonardo DiCaprio"}, nil, core.DefaultWeights(), 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	// Titanic 与出演者、导演、类型全面重合且加分最高，Django 次之；
	// Hot Fuzz 与偏好无交集，不应进入前二
	if got[0].Title != "Titanic" {
		t.Errorf("got[0] = %q, want Titanic", got[0].Title)
	}
	if got[1].Title != "Django Unchained" {
		t.Errorf("got[1] = %q, want Django Unchained", got[1].Title)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %v, %v", got[0].Score, got[1].Score)
	}
}

func TestRecommendDislikePushesFilmDown(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.Recommend(context.Background(),
		nil, []string{"Simon Pegg"}, core.DefaultWeights(), 0)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	// 不喜欢 Pegg 时 Hot Fuzz 应被排到末位且得分为负
	last := got[len(got)-1]
	if last.Title != "Hot Fuzz" {
		t.Errorf("last = %q, want Hot Fuzz", last.Title)
	}
	if last.Score >= 0 {
		t.Errorf("Hot Fuzz score = %v, want negative", last.Score)
	}
}

func TestRecommendZeroWeightsKeepCatalogOrder(t *testing.T) {
	e := newTestEngine(t)

	// 全零权重合法：所有得分为零，稳定排序退化为片库加载顺序
	got, err := e.Recommend(context.Background(),
		[]string{"Leonardo DiCaprio"}, nil, core.Weights{}, 0)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	wantOrder := []string{"Titanic", "Hot Fuzz", "Django Unchained"}
	for i, title := range wantOrder {
		if got[i].Title != title {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Title, title)
		}
		if got[i].Score != 0 {
			t.Errorf("got[%d].Score = %v, want 0", i, got[i].Score)
		}
	}
}

func TestRecommendEmptyPreferencesNotAnError(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.Recommend(context.Background(), nil, nil, core.DefaultWeights(), 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestRecommendTopKClamping(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name string
		topK int
		want int
	}{
		{"exceeds catalog", 100, 3},
		{"zero means all", 0, 3},
		{"within catalog", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Recommend(ctx, []string{"Kate Winslet"}, nil, core.DefaultWeights(), tt.topK)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRandomActors(t *testing.T) {
	e := newTestEngine(t, WithRand(rand.New(rand.NewSource(7))))

	got := e.RandomActors(2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	known := map[string]bool{
		"Leonardo DiCaprio": true, "Kate Winslet": true,
		"Simon Pegg": true, "Uma Thurman": true,
	}
	seen := map[string]bool{}
	for _, name := range got {
		if !known[name] {
			t.Errorf("unknown actor %q", name)
		}
		if seen[name] {
			t.Errorf("duplicate actor %q", name)
		}
		seen[name] = true
	}

	if all := e.RandomActors(100); len(all) != 4 {
		t.Errorf("RandomActors(100) len = %d, want 4", len(all))
	}
	if none := e.RandomActors(0); len(none) != 0 {
		t.Errorf("RandomActors(0) len = %d, want 0", len(none))
	}
}

func TestActorAt(t *testing.T) {
	e := newTestEngine(t)

	name, err := e.ActorAt(0)
	if err != nil {
		t.Fatalf("ActorAt(0) error = %v", err)
	}
	if name != "Leonardo DiCaprio" {
		t.Errorf("ActorAt(0) = %q", name)
	}

	if _, err := e.ActorAt(99); !core.IsInvalidInput(err) {
		t.Errorf("ActorAt(99) error = %v, want invalid input", err)
	}
}
