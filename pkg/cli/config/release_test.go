package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/drover/pkg/cli/config"
)

func TestReleaseSharedOptions(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(key string) string { return vars[key] }
	}

	t.Run("flags pass through when env is empty", func(t *testing.T) {
		cfg := &config.Release{SourceBranch: "main", ReleaseEnv: "staging"}
		shared := cfg.SharedOptions(env(nil))
		gt.Value(t, shared.SourceBranch).Equal("main")
		gt.Value(t, shared.ReleaseEnv).Equal("staging")
	})

	t.Run("FE_RELEASE_BRANCH wins over FE_RELEASE_SOURCE_BRANCH", func(t *testing.T) {
		cfg := &config.Release{SourceBranch: "main"}
		shared := cfg.SharedOptions(env(map[string]string{
			"FE_RELEASE_BRANCH":        "release-train",
			"FE_RELEASE_SOURCE_BRANCH": "develop",
		}))
		gt.Value(t, shared.SourceBranch).Equal("release-train")
	})

	t.Run("FE_RELEASE_SOURCE_BRANCH applies when the primary is unset", func(t *testing.T) {
		cfg := &config.Release{SourceBranch: "main"}
		shared := cfg.SharedOptions(env(map[string]string{
			"FE_RELEASE_SOURCE_BRANCH": "develop",
		}))
		gt.Value(t, shared.SourceBranch).Equal("develop")
	})

	t.Run("FE_RELEASE_ENV wins over NODE_ENV", func(t *testing.T) {
		cfg := &config.Release{}
		shared := cfg.SharedOptions(env(map[string]string{
			"FE_RELEASE_ENV": "production",
			"NODE_ENV":       "test",
		}))
		gt.Value(t, shared.ReleaseEnv).Equal("production")
	})

	t.Run("NODE_ENV is the fallback", func(t *testing.T) {
		cfg := &config.Release{}
		shared := cfg.SharedOptions(env(map[string]string{
			"NODE_ENV": "production",
		}))
		gt.Value(t, shared.ReleaseEnv).Equal("production")
	})

	t.Run("label fields map onto the label", func(t *testing.T) {
		cfg := &config.Release{
			LabelName:        "release",
			LabelDescription: "Release pull request",
			LabelColor:       "0e8a16",
			AutoMerge:        true,
		}
		shared := cfg.SharedOptions(env(nil))
		gt.Value(t, shared.Label.Name).Equal("release")
		gt.Value(t, shared.Label.Color).Equal("0e8a16")
		gt.True(t, shared.AutoMergeReleasePR)
	})
}
