package cli

import (
	"github.com/spf13/cobra"

	"github.com/sanskruthi/fest-service/internal/config"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the document store schema",
		Long: `Apply the SQL migrations for the configured store.

For postgres the files in POSTGRES_MIGRATIONS_DIR are applied in name
order. For sqlite the embedded schema is applied when the file is opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, rootOpts)
		},
	}
}

func runMigrate(cmd *cobra.Command, opts *RootOptions) error {
	rt, err := openRuntime(cmd.Context(), opts, func(cfg *config.Config) {
		cfg.Postgres.RunMigrations = true
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	out := newPrinter(opts, cmd.OutOrStdout())
	return out.emit(map[string]string{"store": rt.cfg.Store.Driver, "status": "ready"},
		"%s store is up to date", rt.cfg.Store.Driver)
}
