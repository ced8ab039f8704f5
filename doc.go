// Package cinerec 是一个基于内容的影片推荐引擎（Cinema Recommender）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - 片库只读: 影片、演员映射与 Embedding 索引在启动时构建一次，全程只读
// - 位置对齐: 影片与其向量成对存放于同一条目，评分依赖的下标对应关系由结构保证
// - Node 可扩展: 自定义 Node 即可插拔扩展（如 CEL 表达式过滤、多样性重排）
package cinerec

import "github.com/rushteam/cinerec/pipeline"

// 轻量 facade：便于用户直接 import "cinerec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
