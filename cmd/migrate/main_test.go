package main

import (
	"testing"

	"github.com/angelmondragon/mineralmarket-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		args    []string
		want    command
		wantErr bool
	}{
		{args: []string{"up"}, want: command{name: "up"}},
		{args: []string{"status"}, want: command{name: "status"}},
		{args: []string{"create", "add listing photos"}, want: command{name: "create", arg: "add listing photos"}},
		{args: []string{"to", "20260301090100"}, want: command{name: "to", arg: "20260301090100", version: 20260301090100}},
		{args: nil, wantErr: true},
		{args: []string{"to"}, wantErr: true},
		{args: []string{"to", "3"}, wantErr: true},
		{args: []string{"to", "2026030109010x"}, wantErr: true},
		{args: []string{"create"}, wantErr: true},
		{args: []string{"up", "extra"}, wantErr: true},
		{args: []string{"version"}, wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseCommand(tc.args)
		if tc.wantErr {
			assert.Error(t, err, "args %v", tc.args)
			continue
		}
		require.NoError(t, err, "args %v", tc.args)
		assert.Equal(t, tc.want, got)
	}
}

func TestOnlyCreateAndValidateSkipTheDatabase(t *testing.T) {
	assert.False(t, command{name: "create"}.needsDB())
	assert.False(t, command{name: "validate"}.needsDB())
	assert.True(t, command{name: "up"}.needsDB())
	assert.True(t, command{name: "to"}.needsDB())
}

func TestCheckEnvBlocksProdRollbacks(t *testing.T) {
	prod := config.AppConfig{Env: "prod"}
	dev := config.AppConfig{Env: "dev"}

	assert.Error(t, checkEnv(prod, command{name: "down"}, false))
	assert.Error(t, checkEnv(prod, command{name: "to"}, false))
	assert.NoError(t, checkEnv(prod, command{name: "up"}, false))
	assert.NoError(t, checkEnv(prod, command{name: "down"}, true))
	assert.NoError(t, checkEnv(dev, command{name: "down"}, false))
}
