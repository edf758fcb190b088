package towercheck

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	flags "github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/towercheck/build"
	"github.com/lightningnetwork/towercheck/chainreg"
	"github.com/lightningnetwork/towercheck/signal"
	"github.com/lightningnetwork/towercheck/tccfg"
)

const (
	// DefaultConfigFilename is the default configuration file name the
	// daemon tries to load.
	DefaultConfigFilename = "towercheck.conf"

	defaultLogLevel    = "info"
	defaultLogDirname  = "logs"
	defaultLogFilename = "towercheck.log"

	// BitcoindBackendName is the name of the bitcoind chain backend.
	BitcoindBackendName = chainreg.BitcoindBackendName

	// EsploraBackendName is the name of the Esplora chain backend.
	EsploraBackendName = chainreg.EsploraBackendName
)

var (
	// DefaultTowercheckDir is the default directory where the daemon
	// tries to find its configuration file and store its logs.
	DefaultTowercheckDir = btcutil.AppDataDir("towercheck", false)

	// DefaultConfigFile is the default full path of the daemon's
	// configuration file.
	DefaultConfigFile = filepath.Join(
		DefaultTowercheckDir, DefaultConfigFilename,
	)

	defaultLogDir = filepath.Join(DefaultTowercheckDir, defaultLogDirname)
)

// Config defines the configuration options for the daemon.
//
// See LoadConfig for further details regarding the configuration
// loading+parsing process.
//
//nolint:lll
type Config struct {
	ShowVersion bool `short:"V" long:"version" description:"Display version information and exit"`

	TowercheckDir string `long:"towercheckdir" description:"The base directory that contains the configuration file and logs."`
	ConfigFile    string `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir        string `long:"logdir" description:"Directory to log output."`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <global-level>,<subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	ChainBackend string `long:"chainbackend" description:"The backend used to look up broadcast transactions." choice:"bitcoind" choice:"esplora"`

	Bitcoin  *tccfg.Chain    `group:"Bitcoin" namespace:"bitcoin"`
	Bitcoind *tccfg.Bitcoind `group:"bitcoind" namespace:"bitcoind"`
	Esplora  *tccfg.Esplora  `group:"esplora" namespace:"esplora"`

	RPC *tccfg.RPC `group:"rpc" namespace:"rpc"`

	Verify *tccfg.Verify `group:"verify" namespace:"verify"`

	HealthChecks *tccfg.HealthCheckConfig `group:"healthcheck" namespace:"healthcheck"`

	LogConfig *build.LogConfig `group:"logging" namespace:"logging"`

	// netParams is the network selected through the Bitcoin group.
	netParams *chaincfg.Params

	// logMgr creates and tracks the subsystem loggers.
	logMgr *build.SubLoggerManager

	// logFile is the rotating log file, nil while it is disabled. It is
	// closed by Main.
	logFile *build.FileLog
}

// DefaultConfig returns all default values for the Config struct.
func DefaultConfig() Config {
	return Config{
		TowercheckDir: DefaultTowercheckDir,
		ConfigFile:    DefaultConfigFile,
		LogDir:        defaultLogDir,
		DebugLevel:    defaultLogLevel,
		ChainBackend:  BitcoindBackendName,
		Bitcoin:       &tccfg.Chain{},
		Bitcoind:      tccfg.DefaultBitcoind(),
		Esplora:       tccfg.DefaultEsploraConfig(),
		RPC:           tccfg.DefaultRPC(),
		Verify:        tccfg.DefaultVerify(),
		HealthChecks:  tccfg.DefaultHealthCheckConfig(),
		LogConfig:     build.DefaultLogConfig(),
	}
}

// NetParams returns the parameters of the selected network.
func (c *Config) NetParams() *chaincfg.Params {
	return c.netParams
}

// LoadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified
//     options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig(interceptor signal.Interceptor) (*Config, error) {
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)

	cfg, configFileError, err := loadConfig(os.Args[1:])
	if err != nil {
		return nil, err
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		fmt.Println(appName, "version", build.Version(),
			"commit="+build.Commit)
		os.Exit(0)
	}

	// Make sure everything we just loaded makes sense.
	cleanCfg, err := ValidateConfig(*cfg, usageMessage)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		_, _ = fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	if err := setupLogging(cleanCfg, interceptor); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		_, _ = fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	// Warn about missing config file only after all other configuration is
	// done. This prevents the warning on help messages and invalid
	// options. Note this should go directly before the return.
	if configFileError != nil {
		tchkLog.Warnf("%v", configFileError)
	}

	return cleanCfg, nil
}

// loadConfig parses args on top of the config file on top of the defaults.
// An unreadable config file is not fatal and returned separately.
func loadConfig(args []string) (*Config, error, error) {
	// Pre-parse the command line options to pick up an alternative config
	// file.
	preCfg := DefaultConfig()
	if _, err := flags.ParseArgs(&preCfg, args); err != nil {
		return nil, nil, err
	}

	// If the config file path has not been modified by the user, then
	// we'll use the default config file path. However, if the user has
	// modified their towercheckdir, then we should assume they intend to
	// use the config file within it.
	configFileDir := CleanAndExpandPath(preCfg.TowercheckDir)
	configFilePath := CleanAndExpandPath(preCfg.ConfigFile)
	if configFileDir != DefaultTowercheckDir {
		if configFilePath == DefaultConfigFile {
			configFilePath = filepath.Join(
				configFileDir, DefaultConfigFilename,
			)
		}
	}

	// Next, load any additional configuration options from the file.
	var configFileError error
	cfg := preCfg
	if err := flags.IniParse(configFilePath, &cfg); err != nil {
		// If it's a parsing related error, then we'll return
		// immediately, otherwise we can proceed as possibly the config
		// file doesn't exist which is OK.
		var iniErr *flags.IniError
		if errors.As(err, &iniErr) {
			return nil, nil, err
		}

		configFileError = err
	}

	// Finally, parse the remaining command line options again to ensure
	// they take precedence.
	if _, err := flags.ParseArgs(&cfg, args); err != nil {
		return nil, nil, err
	}

	return &cfg, configFileError, nil
}

// ValidateConfig check the given configuration to be sane. This makes sure no
// illegal values or combination of values are set. All file system paths are
// normalized. The cleaned up config is returned on success.
func ValidateConfig(cfg Config, usageMessage string) (*Config, error) {
	// If the provided towercheck directory is not the default, we'll
	// modify the path to all of the files and directories that will live
	// within it.
	towercheckDir := CleanAndExpandPath(cfg.TowercheckDir)
	if towercheckDir != DefaultTowercheckDir {
		cfg.LogDir = filepath.Join(towercheckDir, defaultLogDirname)
	}
	cfg.TowercheckDir = towercheckDir
	cfg.LogDir = CleanAndExpandPath(cfg.LogDir)

	if err := cfg.Bitcoin.Validate(); err != nil {
		return nil, err
	}
	cfg.netParams = activeNetParams(cfg.Bitcoin)

	// Append the network type to the log directory so it is "namespaced"
	// per network.
	cfg.LogDir = filepath.Join(
		cfg.LogDir, "bitcoin", normalizeNetwork(cfg.netParams.Name),
	)

	switch cfg.ChainBackend {
	case BitcoindBackendName:
		if cfg.Bitcoind.RPCUser == "" || cfg.Bitcoind.RPCPass == "" {
			return nil, errors.New("bitcoind.rpcuser and " +
				"bitcoind.rpcpass must be set to use the " +
				"bitcoind backend")
		}

	case EsploraBackendName:
		if err := cfg.Esplora.Validate(); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown chain backend %q, %s",
			cfg.ChainBackend, usageMessage)
	}

	if err := cfg.RPC.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Verify.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.HealthChecks.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.LogConfig.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setupLogging creates the subsystem loggers, opens the log file and applies
// the requested debug levels.
func setupLogging(cfg *Config, interceptor signal.Interceptor) error {
	logWriter := &build.LogWriter{}
	cfg.logMgr = build.NewSubLoggerManager(logWriter)

	// Initialize logging at the default logging level.
	SetupLoggers(cfg.logMgr, interceptor)

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems",
			cfg.logMgr.SupportedSubsystems())
		os.Exit(0)
	}

	if !cfg.LogConfig.File.Disable {
		logFile, err := build.OpenFileLog(
			cfg.LogConfig.File,
			filepath.Join(cfg.LogDir, defaultLogFilename),
		)
		if err != nil {
			return fmt.Errorf("log rotation setup failed: %w", err)
		}
		cfg.logFile = logFile
		logWriter.File = logFile
	}

	// Parse, validate, and set debug log level(s).
	return build.ParseAndSetDebugLevels(cfg.DebugLevel, cfg.logMgr)
}

// CleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
// This function is taken from https://github.com/btcsuite/btcd
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
