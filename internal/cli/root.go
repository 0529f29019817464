package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dairyDispatch/internal/config"
)

// NewRootCmd builds the dairyctl command tree over the given streams.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	app := &App{v: config.New(), In: in, Out: out, Err: errOut}

	root := &cobra.Command{
		Use:           "dairyctl",
		Short:         "Dispatch and delivery client for the dairy distribution backend",
		Long:          `dairyctl lets dispatchers assign pending orders to drivers and lets drivers follow their active route, confirm deliveries and report incidents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutput(app.output); err != nil {
				return err
			}
			return app.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&app.cfgFile, "config", "", "config file (default is $HOME/.dairyctl.yaml)")
	pf.StringVarP(&app.output, "output", "o", outputTable, "output format: table, json or yaml")
	pf.String("api-url", "", "backend API base URL")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	cobra.CheckErr(app.v.BindPFlag("api.base_url", pf.Lookup("api-url")))
	cobra.CheckErr(app.v.BindPFlag("log.level", pf.Lookup("log-level")))

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newNavCmd(app),
		newOrdersCmd(app),
		newDriversCmd(app),
		newProductsCmd(app),
		newAssignCmd(app),
		newBoardCmd(app),
		newReportsCmd(app),
		newRouteCmd(app),
		newDeliverCmd(app),
		newIncidentCmd(app),
		newHistoryCmd(app),
		newMonitorCmd(app),
	)
	return root
}

// Execute runs dairyctl with the process streams and exits non-zero on error.
func Execute() {
	root := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
