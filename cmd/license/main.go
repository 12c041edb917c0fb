package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/xakep666/license/cmd/license/app"

	"github.com/urfave/cli/v2"
)

// Version is set at build time
var Version = "dev"

var (
	configFileFlag = cli.PathFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file",
	}
)

var errLicenseArg = errors.New("exactly one license identifier required")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes command line and returns process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := newCLI(stdout, stderr).RunContext(ctx, args); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	return 0
}

func newCLI(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "license",
		Usage:     "Add a license text to your project",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&configFileFlag,
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() > 0 {
				return fmt.Errorf("unknown command %q", ctx.Args().First())
			}

			return cli.ShowAppHelp(ctx)
		},
		// errors are reported by run
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:      "apply",
				Usage:     "Write license text to " + app.DestinationFile + " in current directory",
				ArgsUsage: "<LICENSE>",
				Action: withLicense(func(ctx *cli.Context, a *app.App, id string) error {
					wd, err := os.Getwd()
					if err != nil {
						return fmt.Errorf("get working directory failed: %w", err)
					}

					return a.Apply(ctx.Context, id, wd)
				}),
			},
			{
				Name:      "read",
				Usage:     "Print license text to stdout",
				ArgsUsage: "<LICENSE>",
				Action: withLicense(func(ctx *cli.Context, a *app.App, id string) error {
					return a.Read(ctx.Context, id, ctx.App.Writer)
				}),
			},
			{
				Name:  "list",
				Usage: "List already downloaded licenses",
				Action: withApp(func(ctx *cli.Context, a *app.App) error {
					return a.List(ctx.App.Writer)
				}),
			},
			ConfigSampleCommand(),
		},
	}
}

// withLicense acts like withApp but also passes a single license identifier argument
func withLicense(action func(ctx *cli.Context, a *app.App, id string) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errLicenseArg
		}

		return withApp(func(ctx *cli.Context, a *app.App) error {
			return action(ctx, a, ctx.Args().First())
		})(ctx)
	}
}

// withApp loads config and builds app for action
func withApp(action func(ctx *cli.Context, a *app.App) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		a, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("init failed: %w", err)
		}

		defer a.Close()

		return action(ctx, a)
	}
}

func loadConfig(ctx *cli.Context) (app.Config, error) {
	if path := ctx.Path(configFileFlag.Name); path != "" {
		return app.ConfigFromFile(path)
	}

	return app.ConfigFromFileIfExists(app.DefaultConfigPath())
}
