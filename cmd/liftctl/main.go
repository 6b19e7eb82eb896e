// Command liftctl imports, exports and summarizes a workout program from the
// command line. It reads the same configuration as the server and works
// directly against the configured store.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/liftlog/internal/application"
	"github.com/JonMunkholm/liftlog/internal/config"
	"github.com/JonMunkholm/liftlog/internal/core"
	"github.com/JonMunkholm/liftlog/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{}
	defer c.close()

	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return core.ExitOK
	}
	printError(stderr, err)
	return core.ExitCode(err)
}

func printError(w io.Writer, err error) {
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, "error:", core.FormatUserError(err))
	}
	fmt.Fprintln(w, "error:", err)
	for _, p := range core.ProblemsOf(err) {
		fmt.Fprintln(w, "  -", p.String())
	}
}

// cli holds state shared by the subcommands of one invocation.
type cli struct {
	envFile string
	cfg     *config.Config
	app     *application.App
}

func (c *cli) service() *core.Service {
	return c.app.Service
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "liftctl",
		Short: "Manage a workout program from the command line",
		Long: `liftctl imports, exports and summarizes a workout program.

It uses the same environment configuration as the server (STORE_BACKEND,
DATABASE_URL, BACKUP_* and so on). Documents go to stdout, logs to stderr.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load if present")

	root.AddCommand(
		newExportCmd(c),
		newImportCmd(c),
		newDetectCmd(c),
		newSummaryCmd(c),
		newBackupCmd(c),
		newRestoreCmd(c),
	)
	return root
}

// open loads configuration and connects the store.
func (c *cli) open(cmd *cobra.Command) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return core.Wrap(core.KindValidation, "config", err)
	}
	c.cfg = cfg

	logger := logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	cmd.SetContext(core.WithCaller(cmd.Context(), core.Caller{Channel: core.ChannelCLI}))

	app, err := application.Open(cmd.Context(), cfg, application.Options{Logger: logger})
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

// openInput opens a file argument, where "-" means stdin.
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.Errorf(core.KindNotFound, "open", "file %s not found", name)
		}
		return nil, err
	}
	return f, nil
}
