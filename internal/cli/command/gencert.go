package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/webserve/internal/infra/tlscert"
	"github.com/yndnr/webserve/internal/server/config"
	"github.com/yndnr/webserve/internal/server/httpserver"
)

// GenCertCommand returns the gencert subcommand.
func GenCertCommand() *cli.Command {
	return &cli.Command{
		Name:  "gencert",
		Usage: "Write a self-signed certificate and key into one PEM bundle",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Bundle file to write",
				Value:   config.DefaultCertFile,
			},
			&cli.StringSliceFlag{
				Name:  "host",
				Usage: "DNS name or IP address the certificate is valid for (repeatable; default localhost, 127.0.0.1 and LAN addresses)",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Validity in days",
				Value: int(tlscert.DefaultValidity / (24 * time.Hour)),
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing bundle",
			},
		},
		Action: runGenCert,
	}
}

func runGenCert(c *cli.Context) error {
	days := c.Int("days")
	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}

	hosts := c.StringSlice("host")
	if len(hosts) == 0 {
		hosts = defaultCertHosts()
	}

	bundle, err := tlscert.GenerateSelfSigned(tlscert.GenerateOptions{
		Hosts:    hosts,
		Validity: time.Duration(days) * 24 * time.Hour,
	})
	if err != nil {
		return err
	}

	out := c.String("out")
	if err := tlscert.WriteBundle(out, bundle, c.Bool("force")); err != nil {
		if errors.Is(err, tlscert.ErrBundleExists) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", out)
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "Wrote %s, valid %d days for %s\n", out, days, strings.Join(hosts, ", "))
	return nil
}

func defaultCertHosts() []string {
	hosts := append([]string{}, tlscert.DefaultHosts...)
	for _, ip := range httpserver.LANAddresses() {
		hosts = append(hosts, ip.String())
	}
	return hosts
}
