package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labodj/lsh-core/internal/config"
	"github.com/labodj/lsh-core/internal/gpio"
)

var printStateCmd = &cobra.Command{
	Use:   "print-state",
	Short: "Sample the configured button lines once and print their state",
	RunE:  runPrintState,
}

func init() {
	rootCmd.AddCommand(printStateCmd)
}

func runPrintState(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	reader, err := gpio.NewRealReader(cfg.GPIO.Chip, cfg.ButtonPins())
	if err != nil {
		return fmt.Errorf("init button inputs: %w", err)
	}
	defer reader.Close()

	states := make([]bool, len(cfg.Buttons))
	if err := reader.ReadAll(states); err != nil {
		return fmt.Errorf("read buttons: %w", err)
	}

	for i, b := range cfg.Buttons {
		state := "released"
		if states[i] {
			state = "pressed"
		}
		fmt.Printf("button %d (pin %d): %s\n", b.ID, b.Pin, state)
	}
	return nil
}
