package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nesforge/gones/internal/cartridge"
)

func newRomInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rom-info <rom-file>",
		Short: "Print iNES header information for a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading ROM: %w", err)
			}

			cart, err := cartridge.Load(romBytes)
			if err != nil {
				return fmt.Errorf("loading ROM: %w", err)
			}

			fmt.Printf("Mapper:      %d\n", cart.MapperID())
			fmt.Printf("Mirroring:   %s\n", cart.Mirroring())
			fmt.Printf("PRG-ROM:     %d KiB\n", len(cart.PRGROM())/1024)
			fmt.Printf("CHR:         %d KiB (%s)\n", cart.CHRSize()/1024, chrKind(cart))
			fmt.Printf("Battery RAM: %t\n", cart.HasBattery())
			return nil
		},
	}
}

func chrKind(cart *cartridge.Cartridge) string {
	if cart.CHRIsRAM() {
		return "RAM"
	}
	return "ROM"
}
