package cmd

import (
	"github.com/spf13/cobra"

	"ctxcopy/pkg/config"
	"ctxcopy/pkg/service"
)

func init() {
	var (
		host string
		port int
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the aggregation pipeline as an HTTP JSON service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagBasePath, logger)
			if err != nil {
				return err
			}
			srv := service.NewServer(host, port, cfg, logger)
			return srv.ListenAndServe()
		},
	}

	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().IntVar(&port, "port", 8000, "Port to bind to")
	RootCmd.AddCommand(serveCmd)
}
