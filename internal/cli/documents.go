// Document-level commands: init, new, list, show, rm, export, import.
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tiledoc/internal/document"
	"github.com/mesh-intelligence/tiledoc/internal/paths"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the document store",
		Long:  "Create the configuration directory with a default config.yaml, then create the data directory and its document store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			// data_dir is only pinned when given explicitly; otherwise it
			// follows the working directory.
			cf := configFile{
				LogLevel:         a.cfg.LogLevel,
				UniqueTitles:     a.cfg.UniqueTitles,
				DefaultRowHeight: a.cfg.DefaultRowHeight,
			}
			if a.dataDirFlag != "" {
				cf.DataDir = a.cfg.DataDir
			}
			configPath := paths.ConfigFile(a.configDir)
			written, err := writeConfigIfMissing(configPath, cf)
			if err != nil {
				return err
			}
			if _, err := a.openStore(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if written {
				fmt.Fprintf(out, "wrote %s\n", configPath)
			}
			fmt.Fprintf(out, "tiledoc initialized in %s\n", a.cfg.DataDir)
			return nil
		},
	}
}

func (a *app) newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new NAME",
		Short: "Create an empty document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if _, err := store.FindDocument(name); err == nil {
				return fmt.Errorf("%w: %s", errDocumentExists, name)
			} else if !errors.Is(err, types.ErrDocumentNotFound) {
				return err
			}
			stored, err := a.saveDocument(name, document.New(a.reg, a.docOptions()...))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stored.DocumentID)
			return nil
		},
	}
}

type listEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tiles     int       `json:"tiles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			docs, err := store.ListDocuments()
			if err != nil {
				return err
			}

			entries := make([]listEntry, 0, len(docs))
			for _, d := range docs {
				e := listEntry{ID: d.DocumentID, Name: d.Name, Tiles: -1, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
				if doc, err := document.Load(a.reg, d.Snapshot, a.docOptions()...); err == nil {
					e.Tiles = doc.TileCount()
				}
				entries = append(entries, e)
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTILES\tUPDATED")
			for _, e := range entries {
				tiles := fmt.Sprint(e.Tiles)
				if e.Tiles < 0 {
					tiles = "?"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, tiles, e.UpdatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show DOC",
		Short: "Describe a document's rows and tiles",
		Long:  "Print each row with its tiles. With --json, print the stored snapshot.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.jsonMode {
				data, err := doc.SnapshotJSON()
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := json.Indent(&buf, data, "", "  "); err != nil {
					return err
				}
				buf.WriteByte('\n')
				_, err = buf.WriteTo(out)
				return err
			}

			fmt.Fprintf(out, "%s (%s)\n", stored.Name, stored.DocumentID)
			fmt.Fprint(out, doc.DebugDescribe())
			for _, e := range doc.SharedModelEntries() {
				fmt.Fprintf(out, "shared model %s [%s #%d] tiles=%v provider=%s\n",
					e.Model.ID, e.Model.Type, e.IndexOfType, e.Tiles, providerID(e))
			}
			for _, an := range doc.Annotations() {
				fmt.Fprintf(out, "annotation %s tiles=%v\n", an.ID, an.TileIDs)
			}
			return nil
		},
	}
}

func providerID(e *types.SharedModelEntry) string {
	if e.Provider == "" {
		return "-"
	}
	return e.Provider
}

func (a *app) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm DOC",
		Short: "Remove a document from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := a.findStored(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteDocument(stored.DocumentID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", stored.Name)
			return nil
		},
	}
}

func (a *app) newExportCmd() *cobra.Command {
	var (
		withIDs bool
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export DOC",
		Short: "Export a document in authoring format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			data, err := doc.ExportJSON(types.ExportOptions{IncludeTileIDs: withIDs})
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			data = append(data, '\n')
			if outPath == "" || outPath == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(outPath, data, 0o644)
		},
	}
	cmd.Flags().BoolVar(&withIDs, "ids", false, "include tile ids")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import NAME FILE",
		Short: "Create a document from an authored JSON file",
		Long:  "Read FILE (\"-\" for stdin) in authoring format. Tiles without ids are named\n{section}_{type}_{N}, or document_{type}_{N} outside sections.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, file := args[0], args[1]
			data, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			doc, err := document.Import(a.reg, data, a.docOptions()...)
			if err != nil {
				return fmt.Errorf("import %s: %w", file, err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			if _, err := store.FindDocument(name); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to replace)", errDocumentExists, name)
			}
			stored, err := a.saveDocument(name, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d tiles\n", stored.DocumentID, doc.TileCount())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing document with the same name")
	return cmd
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}
