package towercheck

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigPrecedence asserts that the config file overrides defaults
// and that command line options override the config file.
func TestLoadConfigPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	conf := `
chainbackend=esplora

[Bitcoin]
bitcoin.signet=true

[esplora]
esplora.url=https://mempool.space/signet/api
esplora.ratelimit=2

[verify]
verify.fetchtimeout=5s
`
	err := os.WriteFile(
		filepath.Join(dir, DefaultConfigFilename), []byte(conf), 0600,
	)
	require.NoError(t, err)

	cfg, fileErr, err := loadConfig([]string{
		"--towercheckdir=" + dir,
		"--verify.maxconcurrency=3",
		"--verify.fetchtimeout=7s",
	})
	require.NoError(t, err)
	require.NoError(t, fileErr)

	require.Equal(t, EsploraBackendName, cfg.ChainBackend)
	require.True(t, cfg.Bitcoin.SigNet)
	require.Equal(t, "https://mempool.space/signet/api", cfg.Esplora.URL)
	require.EqualValues(t, 2, cfg.Esplora.RateLimit)
	require.Equal(t, 3, cfg.Verify.MaxConcurrency)
	require.Equal(t, 7*time.Second, cfg.Verify.FetchTimeout)

	cleanCfg, err := ValidateConfig(*cfg, "")
	require.NoError(t, err)
	require.Equal(t, &chaincfg.SigNetParams, cleanCfg.NetParams())
	require.Equal(t,
		filepath.Join(dir, defaultLogDirname, "bitcoin", "signet"),
		cleanCfg.LogDir,
	)
}

// TestLoadConfigMissingFile asserts that a missing config file is reported
// but not fatal.
func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, fileErr, err := loadConfig([]string{
		"--towercheckdir=" + t.TempDir(),
		"--bitcoind.rpcuser=user",
		"--bitcoind.rpcpass=pass",
	})
	require.NoError(t, err)
	require.Error(t, fileErr)

	cleanCfg, err := ValidateConfig(*cfg, "")
	require.NoError(t, err)
	require.Equal(t, &chaincfg.MainNetParams, cleanCfg.NetParams())
}

// TestValidateConfig asserts that invalid combinations of options are
// rejected.
func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		expErr  bool
		network string
	}{
		{
			name: "bitcoind with credentials",
			mutate: func(cfg *Config) {
				cfg.Bitcoind.RPCUser = "user"
				cfg.Bitcoind.RPCPass = "pass"
				cfg.Bitcoin.TestNet3 = true
			},
			network: "testnet",
		},
		{
			name:   "bitcoind without credentials",
			mutate: func(cfg *Config) {},
			expErr: true,
		},
		{
			name: "esplora without url",
			mutate: func(cfg *Config) {
				cfg.ChainBackend = EsploraBackendName
			},
			expErr: true,
		},
		{
			name: "two networks",
			mutate: func(cfg *Config) {
				cfg.ChainBackend = EsploraBackendName
				cfg.Esplora.URL = "http://localhost:3002"
				cfg.Bitcoin.RegTest = true
				cfg.Bitcoin.SimNet = true
			},
			expErr: true,
		},
		{
			name: "unknown log compressor",
			mutate: func(cfg *Config) {
				cfg.ChainBackend = EsploraBackendName
				cfg.Esplora.URL = "http://localhost:3002"
				cfg.LogConfig.File.Compressor = "lz4"
			},
			expErr: true,
		},
		{
			name: "fetch timeout too short",
			mutate: func(cfg *Config) {
				cfg.ChainBackend = EsploraBackendName
				cfg.Esplora.URL = "http://localhost:3002"
				cfg.Verify.FetchTimeout = time.Millisecond
			},
			expErr: true,
		},
		{
			name: "regtest esplora",
			mutate: func(cfg *Config) {
				cfg.ChainBackend = EsploraBackendName
				cfg.Esplora.URL = "http://localhost:3002"
				cfg.Bitcoin.RegTest = true
			},
			network: "regtest",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.TowercheckDir = t.TempDir()
			test.mutate(&cfg)

			cleanCfg, err := ValidateConfig(cfg, "")
			if test.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.network,
				normalizeNetwork(cleanCfg.NetParams().Name))
			require.Equal(t, test.network,
				filepath.Base(cleanCfg.LogDir))
		})
	}
}
