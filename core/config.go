package core

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopN 返回默认的近邻 / 推荐条数
	DefaultTopN() int

	// DefaultSimilarUsers 返回用户推荐时默认考虑的相似用户数
	DefaultSimilarUsers() int

	// DefaultPercentile 返回偏好抽取的默认分位点（0-1）
	DefaultPercentile() float64
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopN() int {
	return 10
}

func (c *DefaultRecommendConfig) DefaultSimilarUsers() int {
	return 10
}

func (c *DefaultRecommendConfig) DefaultPercentile() float64 {
	return 0.75
}

// Defaults 是包级默认配置，供未显式配置的组件使用。
var Defaults RecommendConfig = &DefaultRecommendConfig{}
