// Package config 提供应用配置加载（YAML）与配置驱动的 Node 注册表。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
)

// Config 是服务的应用配置。
type Config struct {
	Data      DataConfig            `yaml:"data"`
	Encoder   EncoderConfig         `yaml:"encoder"`
	Store     StoreConfig           `yaml:"store"`
	Recommend RecommendConfig       `yaml:"recommend"`
	Server    ServerConfig          `yaml:"server"`
	Nodes     []pipeline.NodeConfig `yaml:"nodes"` // 追加的 Pipeline 节点（过滤/重排）
}

// DataConfig 是片库数据文件路径。
type DataConfig struct {
	FilmsCSV  string `yaml:"films_csv"`
	ActorsCSV string `yaml:"actors_csv"`
}

// EncoderConfig 是文本编码服务配置。
type EncoderConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	Timeout  int    `yaml:"timeout"` // 秒
	APIKey   string `yaml:"api_key"`
}

// StoreConfig 是 Embedding 缓存后端配置。
type StoreConfig struct {
	// Backend 可选 "memory" / "redis" / ""（空表示不启用缓存）
	Backend  string `yaml:"backend"`
	Addr     string `yaml:"addr"` // redis 地址
	DB       int    `yaml:"db"`
	CacheTTL int    `yaml:"cache_ttl"` // 秒，0 表示不过期
}

// RecommendConfig 是推荐行为配置。
type RecommendConfig struct {
	TopK           int          `yaml:"top_k"`
	DropFraction   float64      `yaml:"drop_fraction"`    // 偏差修正丢弃比例
	ActorsPerRound int          `yaml:"actors_per_round"` // 单轮征集偏好展示的演员数
	Weights        core.Weights `yaml:"weights"`
}

// ServerConfig 是 HTTP 服务配置。
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Default 返回带默认值的配置。
func Default() *Config {
	return &Config{
		Data: DataConfig{
			FilmsCSV:  "data/final_films.csv",
			ActorsCSV: "data/top_1000.csv",
		},
		Encoder: EncoderConfig{
			Endpoint: "http://localhost:8088",
			Model:    "all-MiniLM-L6-v2",
			Timeout:  30,
		},
		Recommend: RecommendConfig{
			TopK:           15,
			DropFraction:   0.2,
			ActorsPerRound: 30,
			Weights:        core.DefaultWeights(),
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
	}
}

// Load 从 YAML 文件加载配置，未指定的字段保持默认值。
// 权重整体缺省时回落到默认权重（显式写出的全零权重会被保留）。
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// 先探测权重是否显式出现，避免零值覆盖歧义
	var probe struct {
		Recommend struct {
			Weights *core.Weights `yaml:"weights"`
		} `yaml:"recommend"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if probe.Recommend.Weights == nil {
		cfg.Recommend.Weights = core.DefaultWeights()
	}

	return cfg, nil
}
