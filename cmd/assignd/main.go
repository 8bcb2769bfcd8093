package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/assignd/internal/advisor"
	"github.com/sandeepkv93/assignd/internal/config"
	"github.com/sandeepkv93/assignd/internal/model"
	"github.com/sandeepkv93/assignd/internal/share"
	"github.com/sandeepkv93/assignd/internal/storage"
	"github.com/sandeepkv93/assignd/internal/store"
	"github.com/sandeepkv93/assignd/internal/syncer"
	"github.com/sandeepkv93/assignd/internal/update"
)

var rootCmd = &cobra.Command{
	Use:   "assignd",
	Short: "Assignment tracker with automatic daily planning",
	Long: `Assignd keeps a list of assignments and splits the remaining work
into a per-day plan. Check off today's share, let the deadline math
reschedule the rest, and optionally ask an AI for effort estimates
and a suggested working order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		backend, cleanup, err := openBackend(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		st := store.New()
		sync := syncer.New(st, backend, cfg.Debounce())
		sync.Start()
		defer sync.Stop()

		userID := resolveUserID(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err = sync.SetIdentity(ctx, userID)
		cancel()
		if err != nil {
			return fmt.Errorf("loading saved assignments: %w", err)
		}

		adv := advisor.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		m := update.NewModelWithRuntime(st, adv, sync, userID)
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("assignd failed: %w", err)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the assignment list as JSON to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, cleanup, err := loadSnapshot()
		if err != nil {
			return err
		}
		defer cleanup()

		data, err := share.Export(snap.Assignments)
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if len(args) == 0 {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(args[0], data, 0o644)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the assignment list with the JSON in a file",
	Long: `Import replaces the whole list with the assignments in the given
JSON file. The file must be an array where every element carries at
least an id and a title; a single bad element rejects the file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		assignments, err := share.Import(data)
		if err != nil {
			return err
		}
		n, err := replaceSaved(assignments)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d assignments\n", n)
		return nil
	},
}

var shareDecode bool

var shareCmd = &cobra.Command{
	Use:   "share [payload]",
	Short: "Encode the assignment list as a shareable token",
	Long: `Share prints the current list as a URL-safe token another assignd
user can import with --decode. With --decode and a payload argument
the decoded assignments replace the local list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if shareDecode {
			if len(args) == 0 {
				return fmt.Errorf("--decode needs a payload argument")
			}
			assignments, err := share.DecodePayload(args[0])
			if err != nil {
				return err
			}
			n, err := replaceSaved(assignments)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d shared assignments\n", n)
			return nil
		}

		snap, cleanup, err := loadSnapshot()
		if err != nil {
			return err
		}
		defer cleanup()

		payload, err := share.EncodePayload(snap.Assignments)
		if err != nil {
			return err
		}
		fmt.Println(payload)
		return nil
	},
}

func openBackend(cfg *config.Config) (storage.Backend, func(), error) {
	if err := config.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("preparing data directory: %w", err)
	}

	if cfg.OfflineMode {
		dir, err := config.LocalDataPath()
		if err != nil {
			return nil, nil, err
		}
		backend, err := storage.NewLocalBackend(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening local storage: %w", err)
		}
		return backend, func() {}, nil
	}

	path, err := config.DatabasePath()
	if err != nil {
		return nil, nil, err
	}
	backend, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return backend, func() { backend.Close() }, nil
}

// resolveUserID falls back to a fixed local identity so the app
// persists between runs even before any account is configured.
func resolveUserID(cfg *config.Config) string {
	if cfg.UserID != "" {
		return cfg.UserID
	}
	return "local"
}

func loadSnapshot() (storage.Snapshot, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return storage.Snapshot{}, nil, err
	}
	backend, cleanup, err := openBackend(cfg)
	if err != nil {
		return storage.Snapshot{}, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	snap, err := backend.Load(ctx, resolveUserID(cfg))
	if errors.Is(err, storage.ErrNoData) {
		return storage.Snapshot{}, cleanup, nil
	}
	if err != nil {
		cleanup()
		return storage.Snapshot{}, nil, err
	}
	return snap, cleanup, nil
}

// replaceSaved swaps the stored list wholesale and recomputes the
// daily plan before writing it back.
func replaceSaved(assignments []model.Assignment) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, err
	}
	backend, cleanup, err := openBackend(cfg)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	st := store.New()
	st.Replace(assignments)
	list, allocations := st.Snapshot()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = backend.Save(ctx, resolveUserID(cfg), storage.Snapshot{
		Assignments: list,
		Allocations: allocations,
		SavedAt:     time.Now().UTC(),
	})
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func init() {
	shareCmd.Flags().BoolVar(&shareDecode, "decode", false, "decode a payload and import it")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(shareCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
