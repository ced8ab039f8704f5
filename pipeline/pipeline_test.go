package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/cinerec/core"
)

type fakeNode struct {
	name string
	kind Kind
	fn   func([]*core.Item) ([]*core.Item, error)
}

func (n *fakeNode) Name() string { return n.name }
func (n *fakeNode) Kind() Kind   { return n.kind }
func (n *fakeNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return n.fn(items)
}

func TestPipelineRunChainsNodes(t *testing.T) {
	gen := &fakeNode{name: "gen", kind: KindRecall, fn: func(_ []*core.Item) ([]*core.Item, error) {
		return []*core.Item{core.NewItem(0), core.NewItem(1), core.NewItem(2)}, nil
	}}
	drop := &fakeNode{name: "drop", kind: KindFilter, fn: func(items []*core.Item) ([]*core.Item, error) {
		return items[1:], nil
	}}

	p := &Pipeline{Nodes: []Node{gen, drop}}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Index != 1 {
		t.Errorf("out[0].Index = %d, want 1", out[0].Index)
	}
}

func TestPipelineRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := &fakeNode{name: "fail", kind: KindRecall, fn: func(_ []*core.Item) ([]*core.Item, error) {
		return nil, boom
	}}
	never := &fakeNode{name: "never", kind: KindRank, fn: func(items []*core.Item) ([]*core.Item, error) {
		t.Fatal("node after failure must not run")
		return items, nil
	}}

	p := &Pipeline{Nodes: []Node{failing, never}}
	if _, err := p.Run(context.Background(), &core.RecommendContext{}, nil); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
}

func TestPipelineRunEmpty(t *testing.T) {
	p := &Pipeline{}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != nil {
		t.Errorf("out = %v, want nil passthrough", out)
	}
}
