package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gmauleon.org/snowdissect/pkg/dissect"
	"gmauleon.org/snowdissect/pkg/render"
	"gmauleon.org/snowdissect/pkg/scheme"
	"gmauleon.org/snowdissect/pkg/timestamp"
	"go.uber.org/zap"
)

const (
	environmentVariablePrefix = "SNOWDISSECT"
	configName                = ".snowdissect"
	stdinArgument             = "-"
)

var outputFormats = []string{"text", "json"}

var (
	schemeName   string
	tsBits       int
	epochOffset  int64
	totalBits    int
	encodingHint string
	outputFormat string
	workers      int
	consoleWidth int
	verbose      bool

	configPath string
	config     *viper.Viper
	registry   *scheme.Registry
	logger     *zap.Logger
)

var errIdentifiersFailed = errors.New("some identifiers could not be dissected")

var rootCmd = &cobra.Command{
	Use:   "snowdissect [flags] <id>...",
	Short: "Snowdissect extracts and decodes the timestamp embedded in snowflake identifiers",
	Long: `Snowdissect takes snowflake identifiers (decimal or url-safe base64), isolates the
timestamp bits of the selected scheme and decodes them, guessing the timestamp encoding
from its numeric range unless --encoding is given. Use "-" to read identifiers from stdin.`,
	Args:              cobra.MinimumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return launch(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	statusCode := 0
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		statusCode = 1
	}
	stop()

	_ = logger.Sync()
	os.Exit(statusCode)
}

func init() {
	logger = zap.Must(zap.NewProduction(zap.IncreaseLevel(zap.ErrorLevel)))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is ./"+configName+".yaml or $HOME/"+configName+".yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&schemeName, "type", "t", "", "Snowflake scheme ("+strings.Join(scheme.BuiltinNames(), ", ")+", manual or a scheme from the config file)")
	rootCmd.Flags().IntVar(&tsBits, "ts-bits", 0, "Number of bits that compose the timestamp (manual scheme only)")
	rootCmd.Flags().Int64Var(&epochOffset, "offset", 0, "Offset from the Unix epoch added to the extracted timestamp (manual scheme only)")
	rootCmd.Flags().IntVar(&totalBits, "total-bits", 0, "Total identifier width, overrides the width inferred from the input")
	rootCmd.Flags().StringVarP(&encodingHint, "encoding", "e", "", "Timestamp encoding to use instead of guessing it")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format ("+strings.Join(outputFormats, ", ")+")")
	rootCmd.Flags().IntVar(&workers, "workers", 4, "Number of identifiers dissected in parallel")
	rootCmd.Flags().IntVar(&consoleWidth, "width", render.DefaultWidth, "Console width used to center the text output")

	// --ts_bits and --total_bits keep working
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// setup loads the config file and environment on top of the flags, then builds the scheme registry.
func setup(cmd *cobra.Command, args []string) error {
	config = viper.New()

	if configPath != "" {
		config.SetConfigFile(configPath)
	} else {
		config.SetConfigName(configName)
		config.SetConfigType("yaml")
		config.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			config.AddConfigPath(home)
		}
	}

	config.SetEnvPrefix(environmentVariablePrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()

	if err := config.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if config.GetBool("verbose") {
		logger = zap.Must(zap.NewDevelopment())
	}
	if used := config.ConfigFileUsed(); used != "" {
		logger.Debug("loaded config", zap.String("path", used))
	}

	var custom []scheme.Profile
	if err := config.UnmarshalKey("schemes", &custom); err != nil {
		return fmt.Errorf("failed to decode schemes: %w", err)
	}

	var err error
	registry, err = scheme.NewRegistry(custom...)
	if err != nil {
		return fmt.Errorf("failed to load schemes: %w", err)
	}

	return nil
}

func launch(ctx context.Context, in io.Reader, out io.Writer, args []string) error {
	if err := verifyFlags(); err != nil {
		return err
	}

	profile, err := selectProfile()
	if err != nil {
		return err
	}

	inputs, err := collectInputs(in, args)
	if err != nil {
		return err
	}

	requests := make([]dissect.Request, 0, len(inputs))
	for _, input := range inputs {
		requests = append(requests, dissect.Request{
			Input:     input,
			Profile:   profile,
			Hint:      timestamp.Encoding(encodingHint),
			TotalBits: totalBits,
		})
	}

	d := dissect.New(logger, dissect.WithWorkers(workers))
	reports, batchErr := d.DissectAll(ctx, requests)

	switch outputFormat {
	case "json":
		if err := render.JSON(out, reports); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
	default:
		console := render.NewConsole(out, consoleWidth)
		for _, r := range reports {
			if err := console.Render(r); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
		}
	}

	if batchErr != nil {
		logger.Error("dissection finished with failures", zap.Error(batchErr))
		return errIdentifiersFailed
	}

	return nil
}

func verifyFlags() error {
	var flagErrors error

	schemeName = strings.ToLower(config.GetString("type"))
	tsBits = config.GetInt("ts-bits")
	epochOffset = config.GetInt64("offset")
	totalBits = config.GetInt("total-bits")
	encodingHint = config.GetString("encoding")
	outputFormat = config.GetString("output")
	workers = config.GetInt("workers")
	consoleWidth = config.GetInt("width")

	if schemeName == "" {
		flagErrors = multierror.Append(flagErrors, errors.New("type is required"))
	}

	if schemeName == scheme.Manual && tsBits <= 0 {
		flagErrors = multierror.Append(flagErrors, errors.New("ts-bits is required in manual mode"))
	}

	if totalBits < 0 {
		flagErrors = multierror.Append(flagErrors, errors.New("total-bits must be positive"))
	}

	if encodingHint != "" {
		if _, err := timestamp.ParseEncoding(encodingHint); err != nil {
			flagErrors = multierror.Append(flagErrors, err)
		}
	}

	if !slices.Contains(outputFormats, outputFormat) {
		flagErrors = multierror.Append(flagErrors, fmt.Errorf("output must be one of %s", strings.Join(outputFormats, ", ")))
	}

	if workers <= 0 {
		flagErrors = multierror.Append(flagErrors, errors.New("workers must be positive"))
	}

	return flagErrors
}

func selectProfile() (scheme.Profile, error) {
	if schemeName == scheme.Manual {
		return registry.Manual(tsBits, epochOffset)
	}

	profile, err := registry.Lookup(schemeName)
	if err != nil {
		return scheme.Profile{}, err
	}

	if tsBits != 0 || epochOffset != 0 {
		logger.Warn("ts-bits and offset are ignored outside manual mode", zap.String("scheme", profile.Name))
	}

	return profile, nil
}

// collectInputs expands "-" into the non-empty lines read from in.
func collectInputs(in io.Reader, args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		if arg != stdinArgument {
			inputs = append(inputs, arg)
			continue
		}

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				inputs = append(inputs, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	return inputs, nil
}
