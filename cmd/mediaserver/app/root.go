package app

import (
	"flag"
	"io"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"k8s.io/klog/v2"

	"mediaserver/pkg/settings"
)

var (
	cfgFile   string
	klogFlags = flag.NewFlagSet("klog", flag.ExitOnError)
)

func init() {
	cobra.OnInitialize(initConfig)
	cobra.MousetrapHelpText = ""

	rootCmd.SetVersionTemplate("Media Server version {{printf \"%s\" .Version}}\n")

	flags := rootCmd.Flags()
	persistent := rootCmd.PersistentFlags()

	persistent.StringVarP(&cfgFile, "config", "c", "", "config file path")

	klog.InitFlags(klogFlags)
	persistent.AddGoFlagSet(klogFlags)

	addServerFlags(flags)
}

func addServerFlags(flags *pflag.FlagSet) {
	defaults := settings.NewDefaultServer()

	flags.StringP("address", "a", defaults.Address, "address to listen on")
	flags.StringP("log", "l", defaults.Log, "log output: stdout, stderr, a file path, or empty to discard")
	flags.StringP("port", "p", defaults.Port, "port to listen on")
	flags.StringP("root", "r", defaults.Root, "media directory to serve (also MEDIA_DIR)")
	flags.StringP("baseurl", "b", defaults.BaseURL, "base url")
	flags.Int("chunk-size", defaults.ChunkSize, "bytes read from disk per streamed chunk")
	flags.StringSlice("extensions", defaults.Extensions, "media file extensions shown in listings")
	flags.Bool("zstd", defaults.EnableZstd, "compress listing pages with zstd when clients accept it")
}

var rootCmd = &cobra.Command{
	Use:   "mediaserver",
	Short: "Browse and stream a media directory over HTTP",
	Long: `mediaserver serves the media files below one directory: it renders
directory listings, a player page, whole-file downloads and byte-range streams
that browser video players can seek in.

If you don't set "config", it will look for a configuration file called
.mediaserver.{json, toml, yaml, yml} in the following directories:

- ./
- $HOME/
- /etc/mediaserver/

The precedence of the configuration values are as follows:

- flags
- environment variables
- configuration file
- defaults

The environment variables are prefixed by "MS_" followed by the option
name in caps. So to set "root" via an env variable, you should
set MS_ROOT. MEDIA_DIR is accepted for the root as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := getRunParams(cmd.Flags())
		setupLog(server.Log)

		klog.Infoln(cfgFile)
		klog.Infof("root: %s, listen: %s, base url: %q, chunk size: %d, extensions: %v",
			server.Root, server.ListenAddr(), server.BaseURL, server.ChunkSize, server.Extensions)

		return serve(cmd.Context(), server)
	},
}

func getRunParams(flags *pflag.FlagSet) *settings.Server {
	server := settings.NewDefaultServer()

	if val, set := getParamB(flags, "root"); set {
		server.Root = val
	}

	if val, set := getParamB(flags, "baseurl"); set {
		server.BaseURL = val
	}

	if val, set := getParamB(flags, "log"); set {
		server.Log = val
	}

	if val, set := getParamB(flags, "address"); set {
		server.Address = val
	}

	if val, set := getParamB(flags, "port"); set {
		server.Port = val
	}

	if flags.Changed("chunk-size") {
		server.ChunkSize, _ = flags.GetInt("chunk-size")
	} else if v.IsSet("chunk-size") {
		server.ChunkSize = v.GetInt("chunk-size")
	}

	if flags.Changed("extensions") {
		server.Extensions, _ = flags.GetStringSlice("extensions")
	} else if v.IsSet("extensions") {
		server.Extensions = v.GetStringSlice("extensions")
	}

	if flags.Changed("zstd") {
		server.EnableZstd, _ = flags.GetBool("zstd")
	} else if v.IsSet("zstd") {
		server.EnableZstd = v.GetBool("zstd")
	}

	server.Clean()
	return server
}

// getParamB returns a parameter as a string and a boolean to tell if it is different from the default
//
// NOTE: we could simply bind the flags to viper and use IsSet.
// Although there is a bug on Viper that always returns true on IsSet
// if a flag is binded. Our alternative way is to manually check
// the flag and then the value from env/config/gotten by viper.
// https://github.com/spf13/viper/pull/331
func getParamB(flags *pflag.FlagSet, key string) (string, bool) {
	value, _ := flags.GetString(key)

	// If set on Flags, use it.
	if flags.Changed(key) {
		return value, true
	}

	// If set through viper (env, config), return it.
	if v.IsSet(key) {
		return v.GetString(key), true
	}

	// Otherwise use default value on flags.
	return value, false
}

func setupLog(logMethod string) {
	if logMethod != "stderr" {
		checkErr(klogFlags.Set("logtostderr", "false"))
	}

	switch logMethod {
	case "stdout":
		klog.SetOutput(io.Writer(os.Stdout))
	case "stderr":
		klog.SetOutput(io.Writer(os.Stderr))
	case "":
		klog.SetOutput(io.Discard)
	default:
		klog.SetOutput(&lumberjack.Logger{
			Filename:   logMethod,
			MaxSize:    100,
			MaxAge:     14,
			MaxBackups: 10,
		})
	}

	klog.Infof("Klog set to %s", logMethod)
}

func initConfig() {
	if cfgFile == "" {
		home, err := homedir.Dir()
		checkErr(err)
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath("/etc/mediaserver/")
		v.SetConfigName(".mediaserver")
	} else {
		v.SetConfigFile(cfgFile)
	}

	v.SetEnvPrefix("MS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	checkErr(v.BindEnv("root", "MS_ROOT", "MEDIA_DIR"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigParseError); ok {
			panic(err)
		}
		cfgFile = "No config file used"
	} else {
		cfgFile = "Using config file: " + v.ConfigFileUsed()
	}
}
