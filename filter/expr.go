package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/cinerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建 CEL 环境，定义变量类型。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// ExprFilter 是使用 CEL (Common Expression Language) 表达式的过滤器。
// 表达式求值为 true 的影片会被过滤掉。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.score < 0.1
//   - 类型："Horror" in item.genres
//   - 标签：label.recall_source == "embedding"
//   - 逻辑：item.score < 0.1 && !("Drama" in item.genres)
//
// 表达式在构建时编译一次，之后可并发对多个影片求值。
type ExprFilter struct {
	expr string
	prg  cel.Program
}

// NewExprFilter 编译表达式并创建过滤器。表达式非法时返回错误。
func NewExprFilter(expr string) (*ExprFilter, error) {
	if expr == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"filter: empty expression")
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program expression %q: %w", expr, err)
	}

	return &ExprFilter{expr: expr, prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// ShouldFilter 对单个影片求值表达式；结果非布尔时视为不过滤。
func (f *ExprFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	labels := make(map[string]string, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	out, _, err := f.prg.Eval(map[string]any{
		"item": map[string]any{
			"index":  item.Index,
			"title":  item.Title,
			"genres": item.Genres,
			"score":  item.Score,
		},
		"label": labels,
	})
	if err != nil {
		return false, fmt.Errorf("eval expression %q: %w", f.expr, err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, nil
	}
	return b, nil
}

var _ Filter = (*ExprFilter)(nil)
