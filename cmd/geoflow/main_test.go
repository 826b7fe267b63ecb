package main

import (
	"flag"
	"testing"

	"github.com/poiesic/geoflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		input   string
		want    core.Domain
		wantErr bool
	}{
		{"trade", core.DomainTrade, false},
		{"macroeconomic", core.DomainMacroeconomic, false},
		{"environmental", core.DomainEnvironmental, false},
		{" Trade ", core.DomainTrade, false},
		{"weather", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDomain(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, core.ErrUnknownDomain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestContext(t *testing.T, flagName, value string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String(flagName, "", "")
	require.NoError(t, set.Set(flagName, value))
	return cli.NewContext(nil, set, nil)
}

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		t.Run(level, func(t *testing.T) {
			err := setupLogger(newTestContext(t, "log-level", level))
			assert.NoError(t, err)
		})
	}

	t.Run("invalid level", func(t *testing.T) {
		err := setupLogger(newTestContext(t, "log-level", "verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestRunCommandRequiresCountry(t *testing.T) {
	app := &cli.App{
		Name: "geoflow",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Action: func(c *cli.Context) error { return nil },
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "country", Required: true},
				},
			},
		},
	}

	err := app.Run([]string{"geoflow", "run"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "country")
}
