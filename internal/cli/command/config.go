package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/webserve/internal/cli/output"
	"github.com/yndnr/webserve/internal/server/config"
)

// ConfigCommand returns the config subcommand.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Verify the effective configuration and print it",
		Flags: append(configFlags(), &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: yaml, json",
			Value:   string(output.FormatYAML),
		}),
		Action: runConfig,
	}
}

func runConfig(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	if format == output.FormatText {
		return fmt.Errorf("config supports yaml or json output, not %s", format)
	}

	cfg, err := sourceFromFlags(c).load()
	if err != nil {
		return err
	}

	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := output.NewFormatter(format).Format(c.App.Writer, cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
