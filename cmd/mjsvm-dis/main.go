// Command mjsvm-dis disassembles a compiled module's bytecode, reading it
// out of a Runtime's on-disk module cache the way cmd/mjsvm-inspect reads a
// running Runtime's heap snapshot over HTTP, structured as a cobra.Command
// tree in the style of arx-os-arxos/cmd/arx.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voskan/mjsvm/module"
)

var version = "dev"

var (
	cacheDir string
	path     string
)

var rootCmd = &cobra.Command{
	Use:   "mjsvm-dis",
	Short: "Disassemble a compiled mjsvm module",
	Long: `mjsvm-dis reads a compiled ModuleDef out of a module disk cache
(created with runtime.WithModuleCacheDir) and prints its bytecode, one
instruction per line, with jump targets resolved to absolute offsets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDisassemble,
}

func init() {
	rootCmd.Flags().StringVar(&cacheDir, "cache", "", "path to the module disk cache directory (required)")
	rootCmd.Flags().StringVar(&path, "path", "", "resolved module path to disassemble (required)")
	rootCmd.MarkFlagRequired("cache")
	rootCmd.MarkFlagRequired("path")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the mjsvm-dis version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})
}

func runDisassemble(cmd *cobra.Command, args []string) error {
	disk, err := module.OpenDiskCache(cacheDir, zap.NewNop())
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer disk.Close()

	def, ok := disk.Load(path)
	if !ok {
		return fmt.Errorf("no cached module at path %q", path)
	}

	fmt.Printf("module %s (%d exports, %d imports)\n", def.Path, len(def.ExportVarDefTable), len(def.ImportedPaths))
	fmt.Print(def.BytecodeTable.Disassemble())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mjsvm-dis:", err)
		os.Exit(1)
	}
}
