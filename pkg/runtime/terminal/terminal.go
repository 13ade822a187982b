package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seo-tools/keyword-gap/pkg/runtime/terminal/commands"
	"github.com/seo-tools/keyword-gap/pkg/runtime/terminal/export"
	"github.com/seo-tools/keyword-gap/pkg/services/gap"
	"github.com/seo-tools/keyword-gap/pkg/services/keywords"
)

// CLI represents the command-line interface
type CLI struct {
	fetcher    keywords.Fetcher
	classifier *gap.Classifier
	reporter   *export.Reporter
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Fetcher    keywords.Fetcher
	Classifier *gap.Classifier
	Output     io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		fetcher:    opts.Fetcher,
		classifier: opts.Classifier,
		reporter:   export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyword-gap",
		Short: "Competitor keyword gap analysis",
	}

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.fetcher, cli.classifier, cli.reporter))

	return cmd
}
