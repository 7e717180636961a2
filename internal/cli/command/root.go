package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/webserve/internal/cli/output"
	"github.com/yndnr/webserve/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "webserve",
		Usage:   "Serve a directory over HTTPS",
		Version: buildinfo.String(),
		Flags:   serveFlags(),
		Action:  runServe,
		Commands: []*cli.Command{
			ServeCommand(),
			GenCertCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
	}
}

// VersionCommand returns the version subcommand.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: text, json, yaml",
				Value:   string(output.FormatText),
			},
		},
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}

			info := buildinfo.Get()
			var data any = info
			if format == output.FormatText {
				data = output.Fields{
					{Label: "webserve", Value: info.Version},
					{Label: "commit", Value: info.Commit},
					{Label: "built", Value: info.BuildTime},
					{Label: "go version", Value: info.GoVersion},
				}
			}
			return output.NewFormatter(format).Format(c.App.Writer, data)
		},
	}
}
