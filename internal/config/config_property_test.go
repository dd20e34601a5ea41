package config

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestConfigRoundTripProperty は Serialize -> Parse で分割設定が保たれることを確認する
func TestConfigRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("split settings survive a YAML round trip", prop.ForAll(
		func(seed int64, train int, workers int) bool {
			cfg := NewDefaultConfig()
			cfg.Seed = seed
			cfg.TrainRatio = float64(train) / 100
			cfg.ValRatio = (1 - cfg.TrainRatio) / 2
			cfg.TestRatio = 1 - cfg.TrainRatio - cfg.ValRatio
			cfg.CopyWorkers = workers

			data, err := cfg.Serialize()
			if err != nil {
				return false
			}
			parsed, err := Parse(data)
			if err != nil {
				return false
			}
			return parsed.Seed == cfg.Seed &&
				parsed.TrainRatio == cfg.TrainRatio &&
				parsed.ValRatio == cfg.ValRatio &&
				parsed.TestRatio == cfg.TestRatio &&
				parsed.CopyWorkers == cfg.CopyWorkers &&
				len(parsed.Tasks) == len(cfg.Tasks)
		},
		gen.Int64(),
		gen.IntRange(0, 99),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}

// TestSplitSizesProperty は件数の合計が常に総数と一致することを確認する
func TestSplitSizesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("train+val+test == n", prop.ForAll(
		func(n int, train int, val int) bool {
			cfg := NewDefaultConfig()
			cfg.TrainRatio = float64(train) / 200
			cfg.ValRatio = float64(val) / 200
			cfg.TestRatio = 1 - cfg.TrainRatio - cfg.ValRatio

			nTrain, nVal, nTest := cfg.SplitSizes(n)
			return nTrain+nVal+nTest == n && nTrain >= 0 && nVal >= 0 && nTest >= 0
		},
		gen.IntRange(0, 10000),
		gen.IntRange(0, 100),
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t)
}
