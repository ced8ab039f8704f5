package pref

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
)

// scriptedEncoder 按预置表返回向量，并记录每次批量调用，用于断言语句合成与批量行为。
type scriptedEncoder struct {
	vectors map[string][]float64
	calls   [][]string
}

func (e *scriptedEncoder) EncodeTexts(_ context.Context, texts []string) ([][]float64, error) {
	e.calls = append(e.calls, texts)
	out := make([][]float64, len(texts))
	for i, text := range texts {
		v, ok := e.vectors[text]
		if !ok {
			return nil, fmt.Errorf("unexpected text: %q", text)
		}
		out[i] = v
	}
	return out, nil
}

func fixtureCatalog() *catalog.Catalog {
	actors := []core.Actor{
		{ID: 1, Name: "Leonardo DiCaprio"},
		{ID: 2, Name: "Kate Winslet"},
		{ID: 3, Name: "Simon Pegg"},
	}
	rows := []catalog.FilmRow{
		{Title: "Titanic", Genres: "Action, Drama", Director: "Cameron", Cast: "[1,2]"},
		{Title: "Hot Fuzz", Genres: "Comedy", Director: "Wright", Cast: "[3]"},
		{Title: "Django Unchained", Genres: "Action", Director: "Tarantino", Cast: "[1]"},
	}
	return catalog.Build(actors, rows)
}

func TestBuilderCombinesWeightedComponents(t *testing.T) {
	enc := &scriptedEncoder{vectors: map[string][]float64{
		"Movies featuring actors like Leonardo DiCaprio.": {1, 0, 0, 0},
		"Movies featuring actors like Simon Pegg.":        {0, 1, 0, 0},
		"Movies directed by Cameron, Tarantino.":          {0, 0, 1, 0},
		"Movies in genres like Action, Drama.":            {0, 0, 0, 1},
	}}
	b := &Builder{Catalog: fixtureCatalog(), Encoder: enc}

	w := core.Weights{
		LikedActors:        1.2,
		DislikedActors:     1.0,
		Genres:             0.8,
		Directors:          0.6,
		BonusGenreDirector: 0.5,
	}
	query, err := b.Build(context.Background(), []string{"Leonardo DiCaprio"}, []string{"Simon Pegg"}, w)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// 四条语句应合并为一次批量编码调用
	if len(enc.calls) != 1 {
		t.Fatalf("encoder calls = %d, want 1", len(enc.calls))
	}
	if len(enc.calls[0]) != 4 {
		t.Fatalf("batched texts = %d, want 4", len(enc.calls[0]))
	}

	// 组合向量 = 1.2·like − 1.0·dislike + 0.6·directors + 0.8·genres
	want := []float64{1.2, -1.0, 0.6, 0.8}
	for i := range want {
		if math.Abs(query.Vector[i]-want[i]) > 1e-9 {
			t.Fatalf("Vector = %v, want %v", query.Vector, want)
		}
	}

	wantDirectors := map[string]bool{"Cameron": true, "Tarantino": true}
	if !reflect.DeepEqual(query.BonusDirectors, wantDirectors) {
		t.Errorf("BonusDirectors = %v, want %v", query.BonusDirectors, wantDirectors)
	}

	// DiCaprio 的类型多重集 {Action, Drama, Action} → Action 2/3, Drama 1/3
	wantDist := map[string]float64{"Action": 2.0 / 3.0, "Drama": 1.0 / 3.0}
	for g, p := range wantDist {
		if math.Abs(query.GenreDistribution[g]-p) > 1e-9 {
			t.Errorf("GenreDistribution[%s] = %v, want %v", g, query.GenreDistribution[g], p)
		}
	}
	if query.Neutral {
		t.Error("Neutral should be false")
	}
}

func TestBuilderLikedOnlySkipsDislikeComponent(t *testing.T) {
	enc := &scriptedEncoder{vectors: map[string][]float64{
		"Movies featuring actors like Simon Pegg.": {1, 0},
		"Movies directed by Wright.":               {0, 1},
		"Movies in genres like Comedy.":            {1, 1},
	}}
	b := &Builder{Catalog: fixtureCatalog(), Encoder: enc}

	w := core.Weights{LikedActors: 1, DislikedActors: 1, Genres: 1, Directors: 1}
	query, err := b.Build(context.Background(), []string{"Simon Pegg"}, nil, w)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// like [1,0] + directors [0,1] + genres [1,1] = [2,2]
	want := []float64{2, 2}
	if !reflect.DeepEqual(query.Vector, want) {
		t.Errorf("Vector = %v, want %v", query.Vector, want)
	}
}

func TestBuilderUnknownActorYieldsEmptyBonuses(t *testing.T) {
	enc := &scriptedEncoder{vectors: map[string][]float64{
		"Movies featuring actors like Nobody.": {1, 0},
	}}
	b := &Builder{Catalog: fixtureCatalog(), Encoder: enc}

	query, err := b.Build(context.Background(), []string{"Nobody"}, nil, core.Weights{LikedActors: 1})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(query.BonusDirectors) != 0 {
		t.Errorf("BonusDirectors = %v, want empty", query.BonusDirectors)
	}
	// 总数为零时分布为空，不是错误
	if len(query.GenreDistribution) != 0 {
		t.Errorf("GenreDistribution = %v, want empty", query.GenreDistribution)
	}
}

func TestBuilderNeutralFallback(t *testing.T) {
	enc := &scriptedEncoder{vectors: map[string][]float64{
		NeutralQuery: {0.5, 0.5},
	}}
	b := &Builder{Catalog: fixtureCatalog(), Encoder: enc}

	query, err := b.Build(context.Background(), nil, nil, core.DefaultWeights())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !query.Neutral {
		t.Error("Neutral should be true for empty preferences")
	}
	if !reflect.DeepEqual(query.Vector, []float64{0.5, 0.5}) {
		t.Errorf("Vector = %v", query.Vector)
	}
	if len(enc.calls) != 1 || len(enc.calls[0]) != 1 || enc.calls[0][0] != NeutralQuery {
		t.Errorf("expected single neutral query call, got %v", enc.calls)
	}
}

func TestBuilderPropagatesEncoderFailure(t *testing.T) {
	enc := &scriptedEncoder{vectors: map[string][]float64{}} // 任何语句都会报错
	b := &Builder{Catalog: fixtureCatalog(), Encoder: enc}

	if _, err := b.Build(context.Background(), []string{"Simon Pegg"}, nil, core.DefaultWeights()); err == nil {
		t.Fatal("expected encoder failure to propagate")
	}
}
