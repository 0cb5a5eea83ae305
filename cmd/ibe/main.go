// Command ibe runs an identity-based encryption private key generator.
//
// Usage:
//
//	ibe [global flags] <command> [flags] [args]
//
// Commands:
//
//	setup     generate a master key and store it in the keystore
//	extract   issue user keys for identities
//	encrypt   encrypt a 256-bit message to an identity
//	decrypt   decrypt a ciphertext with a user key
//	seal      encrypt bytes to an identity
//	open      decrypt sealed bytes
//	bench     time pairings, plain and with a shared precomputed table
//	keys      list or delete issued user keys
//	curves    list curve identifiers and their encodings
//
// Global flags:
//
//	--config      YAML configuration file
//	--curve       pairing curve for setup (default: BN254)
//	--datadir     data directory (default: ~/.ibe)
//	--verbosity   log level 0-5 (default: 3)
//	--log.level   log level by name, overrides --verbosity
//	--log.file    rotating JSON log file
//	--passphrase  keystore passphrase (or $IBE_PASSPHRASE)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/eth2030/pairing/log"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string, stdout, stderr io.Writer) int {
	e := &env{stdout: stdout, stderr: stderr}
	app := e.newApp()
	if err := app.Run(append([]string{"ibe"}, args...)); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// env carries the resolved configuration into command actions.
type env struct {
	cfg    Config
	stdout io.Writer
	stderr io.Writer
	logs   io.Closer
}

func (e *env) newApp() *cli.App {
	return &cli.App{
		Name:            "ibe",
		Usage:           "identity-based encryption key generator",
		Version:         fmt.Sprintf("%s (commit %s)", version, commit),
		Writer:          e.stdout,
		ErrWriter:       e.stderr,
		HideHelpCommand: true,
		// Errors are reported by run; never exit from inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "curve", Usage: "pairing curve for setup"},
			&cli.StringFlag{Name: "datadir", Usage: "data directory"},
			&cli.IntFlag{Name: "verbosity", Usage: "log level 0-5 (0=silent, 5=trace)"},
			&cli.StringFlag{Name: "log.level", Usage: "log level name (trace, debug, info, warn, error, crit)"},
			&cli.StringFlag{Name: "log.file", Usage: "write JSON logs to a rotating file"},
			&cli.IntFlag{Name: "scrypt.n", Usage: "scrypt cost for sealing keystore records"},
			&cli.StringFlag{Name: "passphrase", Usage: "keystore passphrase", EnvVars: []string{"IBE_PASSPHRASE"}},
		},
		Before: e.before,
		After: func(*cli.Context) error {
			if e.logs != nil {
				return e.logs.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			setupCommand(e),
			extractCommand(e),
			encryptCommand(e),
			decryptCommand(e),
			sealCommand(e),
			openCommand(e),
			benchCommand(e),
			keysCommand(e),
			curvesCommand(e),
		},
	}
}

// before resolves the configuration: defaults, then the config file, then
// explicitly set flags.
func (e *env) before(cCtx *cli.Context) error {
	cfg := DefaultConfig()
	if path := cCtx.String("config"); path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return err
		}
	}
	if cCtx.IsSet("curve") {
		cfg.Curve = cCtx.String("curve")
	}
	if cCtx.IsSet("datadir") {
		cfg.DataDir = cCtx.String("datadir")
	}
	if cCtx.IsSet("verbosity") {
		cfg.Verbosity = cCtx.Int("verbosity")
	}
	if cCtx.IsSet("log.level") {
		cfg.LogLevel = cCtx.String("log.level")
	}
	if cCtx.IsSet("log.file") {
		cfg.LogFile = cCtx.String("log.file")
	}
	if cCtx.IsSet("scrypt.n") {
		cfg.ScryptN = cCtx.Int("scrypt.n")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.logs = setupLogging(e.stderr, cfg.Level(), cfg.LogFile)
	log.Info("Starting ibe",
		"version", version,
		"curve", cfg.Curve,
		"datadir", cfg.DataDir,
		"level", cfg.Level().String(),
	)
	return nil
}
