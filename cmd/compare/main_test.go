package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/wwtp-flow-predictor/internal/config"
	"github.com/your-org/wwtp-flow-predictor/internal/dataset"
)

func TestSplitList(t *testing.T) {
	t.Run("空白と空要素を除く", func(t *testing.T) {
		assert.Equal(t, []string{"Flow1_cfs", "PRCP_in"}, splitList(" Flow1_cfs, ,PRCP_in,"))
	})
	t.Run("空文字列", func(t *testing.T) {
		assert.Nil(t, splitList(""))
	})
}

func compareConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "OrganizedHighFlowData.csv")
	var b strings.Builder
	b.WriteString("Date,Flow1_cfs,PRCP_in,Plant_Influent\n")
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&b, "2020-01-%02d,%d,%.1f,%d\n", i, i, float64((i*7)%11)/10, 8+2*i)
	}
	require.NoError(t, os.WriteFile(src, []byte(b.String()), 0o644))

	cfg := config.Default()
	cfg.Pipeline.SourcePath = src
	cfg.Pipeline.ReportPath = filepath.Join(dir, "single_feature_model_results.csv")
	cfg.Plots.Save = false
	cfg.Plots.Dir = dir
	return cfg
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("ランキングを書き出す", func(t *testing.T) {
		cfg := compareConfig(t)
		cfg.Candidates = []string{"PRCP_in", "Flow1_cfs"}
		var out bytes.Buffer
		require.NoError(t, run(ctx, cfg, &out))
		_, err := os.Stat(cfg.Pipeline.ReportPath)
		assert.NoError(t, err)
	})
	t.Run("モデルが一つもなければ警告のみ", func(t *testing.T) {
		cfg := compareConfig(t)
		cfg.Candidates = []string{"SNOW_in", "SNWD_in"}
		var out bytes.Buffer
		assert.NoError(t, run(ctx, cfg, &out))
		_, err := os.Stat(cfg.Pipeline.ReportPath)
		assert.True(t, os.IsNotExist(err), "no report is written")
	})
	t.Run("元データがなければエラー", func(t *testing.T) {
		cfg := compareConfig(t)
		cfg.Pipeline.SourcePath = filepath.Join(t.TempDir(), "absent.csv")
		var out bytes.Buffer
		err := run(ctx, cfg, &out)
		assert.True(t, errors.Is(err, dataset.ErrMissingFile))
	})
}
