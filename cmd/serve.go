package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/evdash/internal/dashboard"
	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	serveAddr       string
	servePublicURL  string
	serveSampleSize int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the EV comparison dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if serveAddr != "" {
			c.ListenAddr = serveAddr
		}
		if servePublicURL != "" {
			c.PublicURL = servePublicURL
		}
		if serveSampleSize > 0 {
			c.SampleSize = serveSampleSize
		}

		src := dataSource(c)
		srv, err := dashboard.New(dataset.NewCache(nil), src, dashboard.Options{
			SampleSize:  c.SampleSize,
			PublicURL:   c.PublicURL,
			ChartWidth:  c.ChartWidth,
			ChartHeight: c.ChartHeight,
			Version:     Version,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Refuse to start on an unreadable source.
		ds, err := srv.Warm(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", src.Name(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded %s (%d rows)\n", ds.Name, ds.Len())
		if debug {
			for col, n := range ds.Missing {
				fmt.Fprintf(os.Stderr, "[debug] %s: %d missing\n", col, n)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard at %s\n", c.PublicURL)

		return srv.Run(ctx, c.ListenAddr,
			time.Duration(c.ReadTimeoutSec)*time.Second,
			time.Duration(c.WriteTimeoutSec)*time.Second)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
	serveCmd.Flags().StringVar(&servePublicURL, "public-url", "", "base URL used in share links and QR codes")
	serveCmd.Flags().IntVar(&serveSampleSize, "sample-size", 0, "how many brands and models the default selection picks")
}
