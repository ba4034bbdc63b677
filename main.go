package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dbw-service/controller"

	"github.com/spf13/cobra"
)

const (
	ProjectName    = "dbw-service"
	ProjectVersion = "1.0.0"
)

var (
	logLevel    int
	redisServer string
	redisPort   int
	canDevice   string
	configPath  string
	generation  string
	period      time.Duration
)

var rootCmd = &cobra.Command{
	Use:     ProjectName,
	Short:   "Drive-by-wire actuation command service",
	Version: ProjectVersion,
	Long: `dbw-service turns planner intents into rate-limited steering,
acceleration and cruise button commands on the vehicle CAN bus, once per
control cycle, alongside the stock cruise controller.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&logLevel, "log", 3, "Log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	flags.StringVar(&redisServer, "redis-server", "127.0.0.1", "Redis server address")
	flags.IntVar(&redisPort, "redis-port", 6379, "Redis server port")
	flags.StringVar(&canDevice, "can-device", "can0", "CAN device name")
	flags.StringVar(&configPath, "config", "/etc/dbw-service/vehicle.yaml", "Vehicle configuration file")
	flags.StringVar(&generation, "generation", "", "Vehicle generation override (gen1 or gen2)")
	flags.DurationVar(&period, "period", 0, "Control period override")
}

func run(cmd *cobra.Command, args []string) error {
	if logLevel < 0 || logLevel > 4 {
		return fmt.Errorf("invalid log level %d", logLevel)
	}

	vehicle, err := LoadVehicleConfig(configPath)
	if err != nil {
		return err
	}

	opts := &Options{
		LogLevel:        LogLevel(logLevel),
		RedisServerAddr: redisServer,
		RedisServerPort: uint16(redisPort),
		CANDevice:       canDevice,
		ConfigPath:      configPath,
		Period:          period,
	}

	if generation != "" {
		gen, err := controller.ParseGeneration(generation)
		if err != nil {
			return err
		}
		opts.Generation = &gen
	}

	app, err := NewControllerApp(opts, vehicle)
	if err != nil {
		return fmt.Errorf("failed to create controller app: %w", err)
	}
	defer app.Destroy()

	// Handle SIGINT and SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Run until signal received
	<-sigChan
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
