package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/repository/memory"
)

func TestParseTickTime(t *testing.T) {
	fallback := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "empty uses fallback", raw: "", want: fallback},
		{name: "utc", raw: "2025-03-10T14:00:00Z", want: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)},
		{name: "offset", raw: "2025-03-10T08:00:00-06:00", want: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)},
		{name: "date only", raw: "2025-03-10", wantErr: true},
		{name: "garbage", raw: "tomorrow", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseTickTime(tc.raw, fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "parsing --at")
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s", got)
		})
	}
}

func TestOpenStoresSelectsDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "memory"}}
	st, err := openStores(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &memory.UserRepository{}, st.users)
	assert.IsType(t, &memory.AppointmentRepository{}, st.appointments)
	assert.NoError(t, st.close())

	cfg.Store.Driver = "sqlite"
	_, err = openStores(cfg, zap.NewNop())
	assert.ErrorContains(t, err, `unknown store driver "sqlite"`)
}

func runTick(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("LOG_OUTPUT", filepath.Join(t.TempDir(), "tick.log"))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(append([]string{"tick"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTickCommandPrintsSummary(t *testing.T) {
	out, err := runTick(t, "--at", "2025-03-10T08:00:00-05:00")
	require.NoError(t, err)

	assert.Contains(t, out, "24h=candidates:0 created:0 suppressed:0 failed:0")
	// 08:00 in the default zone opens the morning scan.
	assert.Contains(t, out, "day_of=candidates:0")
}

func TestTickCommandRejectsBadTime(t *testing.T) {
	out, err := runTick(t, "--at", "noon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing --at")
	assert.Empty(t, out)
}
