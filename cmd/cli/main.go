package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/JorgeHRP/renato-bi/pkg/config"
	"github.com/JorgeHRP/renato-bi/pkg/ingest"
	"github.com/JorgeHRP/renato-bi/pkg/models"
	"github.com/JorgeHRP/renato-bi/pkg/server"
	"github.com/JorgeHRP/renato-bi/pkg/service"
)

var (
	cliFilters filters
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "renato-bi",
	Short: "Financial dashboards from spreadsheet uploads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
	SilenceUsage: true,
}

// open loads the configuration (config file + env + flag overrides) and
// opens the store.
func open(cmd *cobra.Command) (*service.Service, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return service.New(cmd.Context(), cfg, cfg.NewLogger("renato-bi"))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := open(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		srv := server.New(svc.Config, svc.Logger, svc.Ingester, svc.Records, svc.Companies)
		svc.Logger.Info("starting server", "addr", svc.Config.Addr, "store", svc.Config.Store.Backend)
		return srv.Start(svc.Config.Addr)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <company_id> <file>",
	Short: "Ingest a spreadsheet for a company, replacing its data",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := open(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		companyID, path := args[0], args[1]
		filename := ingest.SanitizeFilename(filepath.Base(path))
		if !ingest.Allowed(filename) {
			return fmt.Errorf("only .xls and .xlsx files are accepted: %s", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if _, err := svc.Companies.Get(cmd.Context(), companyID); err != nil {
			return fmt.Errorf("company %s: %w", companyID, err)
		}
		if _, err := ingest.SaveUpload(svc.Config.UploadDir, companyID, filename, data); err != nil {
			return err
		}

		res, err := svc.Ingester.Ingest(cmd.Context(), ingest.Upload{CompanyID: companyID, Filename: filename, Data: data})
		if err != nil {
			return err
		}
		if res.Record.Error != "" {
			return fmt.Errorf("spreadsheet could not be processed: %s", res.Record.Error)
		}
		fmt.Printf("%d transações importadas\n", res.Imported)
		return nil
	},
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [upload_dir]",
	Short: "Re-ingest every stored upload (<company_id>_<name>.xls[x])",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := open(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		dir := svc.Config.UploadDir
		if len(args) == 1 {
			dir = args[0]
		}
		n, err := svc.Ingester.IngestDirectory(cmd.Context(), dir)
		if err != nil {
			return err
		}
		fmt.Printf("%d uploads reprocessed\n", n)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the record a spreadsheet would produce, without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		l, err := cfg.LoadLayout()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		ingester := ingest.New(cfg.NewLogger("renato-bi"), l, nil, nil)
		rec := ingester.Extract(data, filepath.Base(args[0]))
		_, err = pp.Println(rec)
		return err
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the extraction layout in effect",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		l, err := cfg.LoadLayout()
		if err != nil {
			return err
		}
		l.Print(cmd.OutOrStdout())
		return nil
	},
}

var showCSV bool

var showCmd = &cobra.Command{
	Use:   "show <company_id>",
	Short: "Show the stored dashboard of a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := open(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		rec, err := svc.Records.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("no data for company %s: %w", args[0], err)
		}
		if showCSV {
			return printCSV(rec.Transactions, cliFilters.toFilterFunc())
		}
		printRecord(rec, cliFilters.toFilterFunc())
		return nil
	},
}

var (
	companyName    string
	companyCNPJ    string
	companySegment string
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage companies",
}

var companyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a company",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := open(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		c := models.NewCompany(companyName, companyCNPJ, companySegment, nowUTC())
		if c.Name == "" {
			return fmt.Errorf("--name is required")
		}
		if err := svc.Companies.Put(cmd.Context(), c); err != nil {
			return err
		}
		fmt.Println(c.ID)
		return nil
	},
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := open(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		companies, err := svc.Companies.List(cmd.Context())
		if err != nil {
			return err
		}
		printCompanies(companies)
		return nil
	},
}

var companyDeleteCmd = &cobra.Command{
	Use:   "delete <company_id>",
	Short: "Delete a company and its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := open(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		if _, err := svc.Companies.Get(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("company %s: %w", args[0], err)
		}
		if err := svc.Records.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		return svc.Companies.Delete(cmd.Context(), args[0])
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is ./config.yaml)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	// Filter flags for show
	showCmd.Flags().StringVar(&cliFilters.startDate, "start", "", "Start date (YYYY-MM-DD)")
	showCmd.Flags().StringVar(&cliFilters.endDate, "end", "", "End date (YYYY-MM-DD)")
	showCmd.Flags().Float64Var(&cliFilters.minAmount, "min", 0, "Minimum amount")
	showCmd.Flags().Float64Var(&cliFilters.maxAmount, "max", 0, "Maximum amount")
	showCmd.Flags().StringVar(&cliFilters.description, "desc", "", "Filter by description (case insensitive)")
	showCmd.Flags().BoolVar(&showCSV, "csv", false, "Print transactions as CSV")

	companyCreateCmd.Flags().StringVar(&companyName, "name", "", "Company name")
	companyCreateCmd.Flags().StringVar(&companyCNPJ, "cnpj", "", "CNPJ")
	companyCreateCmd.Flags().StringVar(&companySegment, "segment", "", "Business segment")

	companyCmd.AddCommand(companyCreateCmd, companyListCmd, companyDeleteCmd)
	rootCmd.AddCommand(serveCmd, ingestCmd, reprocessCmd, inspectCmd, layoutCmd, showCmd, companyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
