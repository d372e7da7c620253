// Package main - точка входа консольного менеджера студенческих записей.
//
// Порядок запуска: конфигурация -> логгер -> хранилище (gateway) ->
// загрузка записей -> интерактивное меню -> сохранение при выходе.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alem-hub/student-records/config"
	"github.com/alem-hub/student-records/internal/infrastructure/persistence/jsonfile"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	configPath := config.FileName
	if dir, err := jsonfile.ExecutableDir(); err == nil {
		configPath = filepath.Join(dir, config.FileName)
	}

	if err := newRootCommand(configPath).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand собирает корневую команду. Аргументов и флагов нет.
func newRootCommand(configPath string) *cobra.Command {
	return &cobra.Command{
		Use:           "records",
		Short:         "Console manager for student records",
		Long:          "records keeps a list of student records in a JSON file next to the program and edits it through a text menu.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
