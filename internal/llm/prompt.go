package llm

import (
	"fmt"
	"strings"
)

type GenerateParams struct {
	Dataset      string
	Instrument   string
	Region       string
	Delay        int64
	StrategyType string
}

// BuildGeneratePrompt embeds the requested dataset/instrument/region/delay and
// strategy type into the alpha-generation prompt.
func BuildGeneratePrompt(p GenerateParams) string {
	return fmt.Sprintf(`You are an expert quantitative analyst specializing in WorldQuant BRAIN alpha creation.

Generate a creative and potentially profitable alpha expression using the following constraints:

Dataset: %s
Instrument: %s
Region: %s
Delay: %d
Strategy Type: %s

Requirements:
1. Use realistic data fields from the specified dataset (e.g., %s_field1, %s_field2)
2. Incorporate appropriate operators (ts_rank, group_rank, ts_std_dev, etc.)
3. The expression should implement a %s strategy
4. Keep complexity moderate (not too simple, not too complex)
5. Consider neutralization and data preprocessing

Output ONLY the alpha expression, nothing else. Example format:
rank(ts_decay_linear(close, 10) / ts_mean(volume, 20))

Your alpha expression:`,
		p.Dataset, p.Instrument, p.Region, p.Delay, p.StrategyType,
		p.Dataset, p.Dataset, p.StrategyType)
}

type OptimizeParams struct {
	Expression string
	Fitness    *float64
	Sharpe     *float64
	Turnover   *float64
	Returns    *float64
}

func metricOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}

// BuildOptimizePrompt describes the original expression, its performance, and
// the threshold-derived problems to address.
func BuildOptimizePrompt(p OptimizeParams) string {
	var problems []string
	if p.Sharpe != nil && *p.Sharpe < 1.5 {
		problems = append(problems, "- Low Sharpe ratio")
	}
	if p.Turnover != nil && *p.Turnover > 0.3 {
		problems = append(problems, "- High turnover")
	}
	if p.Fitness != nil && *p.Fitness < 1.5 {
		problems = append(problems, "- Low fitness")
	}

	return fmt.Sprintf(`You are an expert quantitative analyst. Analyze this alpha and suggest an optimized version.

Original Alpha: %s

Performance Metrics:
- Fitness: %s
- Sharpe: %s
- Turnover: %s
- Returns: %s

Problems identified:
%s

Suggest an optimized alpha expression that addresses these issues. Consider:
1. Adding decay to reduce turnover
2. Using different time windows
3. Adding rank/normalization
4. Using group operations for stability
5. Combining multiple signals

Output ONLY the optimized alpha expression, no explanation.

Optimized expression:`,
		p.Expression,
		metricOrNA(p.Fitness), metricOrNA(p.Sharpe), metricOrNA(p.Turnover), metricOrNA(p.Returns),
		strings.Join(problems, "\n"))
}
