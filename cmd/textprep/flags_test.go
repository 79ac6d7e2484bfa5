package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/dataset"
)

func TestParseSplits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []dataset.Split
		wantErr  bool
	}{
		{
			name:  "defaults round trip",
			input: formatSplits(dataset.DefaultSplits()),
			expected: []dataset.Split{
				{Name: "train", Start: 35000, Size: 20000},
				{Name: "val", Start: 20000, Size: 15000},
				{Name: "test", Start: 10000, Size: 10000},
			},
		},
		{name: "empty means none", input: " ", expected: nil},
		{name: "spaces around parts", input: "a:0:1, b:1:1", expected: []dataset.Split{{Name: "a", Start: 0, Size: 1}, {Name: "b", Start: 1, Size: 1}}},
		{name: "missing size", input: "train:0", wantErr: true},
		{name: "bad number", input: "train:x:1", wantErr: true},
		{name: "negative", input: "train:-1:1", wantErr: true},
		{name: "duplicate names", input: "a:0:1,a:1:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSplits(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDatasetFlags_Config(t *testing.T) {
	f := datasetFlags{
		summaryColumn:  "headline",
		documentColumn: "body",
		crossRun:       true,
		splits:         "all:0:100",
		format:         "jsonl",
		shardSize:      50,
	}

	cfg, err := f.config()
	require.NoError(t, err)

	assert.Equal(t, "headline", cfg.SummaryColumn)
	assert.Equal(t, "body", cfg.DocumentColumn)
	assert.Nil(t, cfg.CleanColumns)
	assert.True(t, cfg.UnescapeEntities)
	assert.True(t, cfg.Dedup)
	assert.True(t, cfg.CrossRunDedup)
	assert.True(t, cfg.WriteShards)
	assert.Equal(t, 50, cfg.ShardSize)
	assert.Equal(t, []dataset.Split{{Name: "all", Start: 0, Size: 100}}, cfg.Splits)
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("one\ntwo\r\n\nthree"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "", "three"}, lines)
}
