package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"bandscope/internal/build"
	"bandscope/internal/config"
)

// Options is the result of CLI parsing: the merged configuration plus the
// selected mode of operation.
type Options struct {
	Config   *config.Config
	Command  string // one-off command ("list"), empty to run the scope
	Run      bool   // false when cobra handled --help/--version
	Headless bool   // skip the terminal view
}

// ParseArgs builds the configuration from defaults, an optional YAML file,
// environment overrides, and command line flags (highest precedence).
func ParseArgs() (*Options, error) {
	info := build.GetInfo()
	opts := &Options{}

	var (
		configPath string
		port       string
		baud       int
		headless   bool
		verbose    bool
		wsAddr     string
		udpTarget  string
		mqttBroker string
	)

	rootCmd := &cobra.Command{
		Use:           info.Name,
		Short:         "Real-time serial EEG band analyzer",
		Version:       info.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags win over file and environment.
			if cmd.Flags().Changed("port") {
				cfg.Source.Port = port
			}
			if cmd.Flags().Changed("baud") {
				cfg.Source.BaudRate = baud
			}
			if verbose {
				cfg.Debug = true
				cfg.LogLevel = "debug"
			}
			if cmd.Flags().Changed("ws") {
				cfg.Transport.WebSocketEnabled = true
				cfg.Transport.WebSocketAddr = wsAddr
			}
			if cmd.Flags().Changed("udp") {
				cfg.Transport.UDPEnabled = true
				cfg.Transport.UDPTargetAddress = udpTarget
			}
			if cmd.Flags().Changed("mqtt") {
				cfg.Transport.MQTTEnabled = true
				cfg.Transport.MQTTBroker = mqttBroker
			}
			opts.Config = cfg
			opts.Run = true
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available serial ports",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", config.DefaultPort,
		"Serial port device, e.g. /dev/ttyUSB0. Use 'list' to see available ports.")
	rootCmd.PersistentFlags().IntVarP(&baud, "baud", "b", config.DefaultBaudRate,
		"Serial baud rate")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false,
		"Run without the terminal view (telemetry sinks only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVar(&wsAddr, "ws", ":8080",
		"Serve JSON frames to websocket clients on this address")
	rootCmd.PersistentFlags().StringVar(&udpTarget, "udp", "127.0.0.1:9090",
		"Send binary band-power packets to this UDP address")
	rootCmd.PersistentFlags().StringVar(&mqttBroker, "mqtt", "tcp://127.0.0.1:1883",
		"Publish band powers to this MQTT broker")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	opts.Headless = headless
	return opts, nil
}
