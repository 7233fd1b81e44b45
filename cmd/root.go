package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/snailcrypt/snailcrypt-go/pkg/config"
	"github.com/snailcrypt/snailcrypt-go/pkg/logs"
	"github.com/snailcrypt/snailcrypt-go/pkg/pathutils"
)

const envPrefix = "SNAILCRYPT_"

var (
	// configPath is the optional YAML configuration file
	configPath string
	// envFile is an optional dotenv file providing SNAILCRYPT_* variables
	envFile string
	// apiURL, shareURL and requestTimeout override the configuration file when set
	apiURL         string
	shareURL       string
	requestTimeout time.Duration

	// cfg is the effective configuration, loaded before any subcommand runs
	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snailcrypt",
	Short: "Time-lock encryption client 🐌",
	Long: `snailcrypt encrypts messages that can only be decrypted once a lockdate
has passed.

Every lockdate has its own RSA key pair held by the snailcrypt key-release
service. The public key is available at any time; the private key is only
released after the lockdate.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setFlagsFromEnv(envPrefix, cmd.Flags())
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return errors.Wrapf(err, "failed to load env file %s", envFile)
			}
			setFlagsFromEnv(envPrefix, cmd.Flags())
		}

		if err := logs.Initialize(); err != nil {
			return err
		}

		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"Configuration file location. Defaults to snailcrypt/config.yaml in the user config directory, if present.",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		"",
		"Load "+envPrefix+"* variables from this dotenv file before reading flags from the environment.",
	)
	rootCmd.PersistentFlags().StringVar(
		&apiURL,
		"api-url",
		"",
		"Override the key-release service URL from the configuration file.",
	)
	rootCmd.PersistentFlags().StringVar(
		&shareURL,
		"share-url",
		"",
		"Override the web app URL used for share links.",
	)
	rootCmd.PersistentFlags().DurationVar(
		&requestTimeout,
		"timeout",
		0,
		"Override the timeout of requests to the key-release service (given as XhYmZs).",
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	logs.AddFlags(rootCmd.PersistentFlags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config, or the file in the user config directory if it exists,
// and applies flag overrides.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = pathutils.DefaultConfigPath()
	}

	loaded := config.Default()
	if path != "" {
		var err error
		if loaded, err = config.LoadFile(pathutils.ExpandHome(path)); err != nil {
			return loaded, err
		}
	}

	if apiURL != "" {
		loaded.APIURL = apiURL
	}
	if shareURL != "" {
		loaded.ShareURL = shareURL
	}
	if requestTimeout != 0 {
		loaded.Timeout = requestTimeout
	}

	if err := loaded.Validate(); err != nil {
		return loaded, errors.Wrap(err, "invalid configuration")
	}

	return loaded, nil
}

func setFlagsFromEnv(prefix string, fs *pflag.FlagSet) {
	set := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) {
		set[f.Name] = true
	})
	fs.VisitAll(func(f *pflag.Flag) {
		// ignore flags set from the commandline
		if set[f.Name] {
			return
		}
		// remove trailing _ to reduce common errors with the prefix, i.e. people setting it to MY_PROG_
		cleanPrefix := strings.TrimSuffix(prefix, "_")
		name := fmt.Sprintf("%s_%s", cleanPrefix, strings.Replace(strings.ToUpper(f.Name), "-", "_", -1))
		if e, ok := os.LookupEnv(name); ok {
			_ = f.Value.Set(e)
		}
	})
}
