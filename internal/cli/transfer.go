// Transfer commands: copy between documents and the clipboard file.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/internal/clipboard"
	"github.com/mesh-intelligence/tiledoc/internal/document"
	"github.com/mesh-intelligence/tiledoc/internal/paths"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// buildPackage serializes the selected tiles of doc.
func buildPackage(doc *document.Content, ids []string, linked bool) (*types.TransferPackage, error) {
	if err := requireTiles(doc, ids); err != nil {
		return nil, err
	}
	pkg := doc.BuildTransferPackage(selection(doc, ids, linked))
	if len(pkg.Tiles) == 0 {
		return nil, fmt.Errorf("%w: no tiles to transfer", errOperationRefused)
	}
	return pkg, nil
}

// receive drops pkg into the document stored as name and saves it.
func (a *app) receive(cmd *cobra.Command, name string, doc *document.Content, pkg *types.TransferPackage, row int) error {
	placed := doc.HandleDragCopyTiles(pkg, types.InsertAt(row))
	if len(placed) == 0 {
		return fmt.Errorf("%w: no tiles could be placed", errOperationRefused)
	}
	if _, err := a.saveDocument(name, doc); err != nil {
		return err
	}
	return a.printPlacements(cmd.OutOrStdout(), placed)
}

func (a *app) newCopyCmd() *cobra.Command {
	var (
		row    int
		linked bool
	)
	cmd := &cobra.Command{
		Use:   "copy SRC DST TILE...",
		Short: "Copy tiles from one document into another",
		Long: "Copy tiles with their shared models and annotations. Copied tiles get\n" +
			"fresh ids; data sets are duplicated and shared variables relinked.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, src, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			pkg, err := buildPackage(src, args[2:], linked)
			if err != nil {
				return err
			}
			dstStored, dst, err := a.openDocument(args[1])
			if err != nil {
				return err
			}
			return a.receive(cmd, dstStored.Name, dst, pkg, row)
		},
	}
	cmd.Flags().IntVar(&row, "row", -1, "insert the copied rows at this index (default: after the last visible content row)")
	cmd.Flags().BoolVar(&linked, "linked", false, "include tiles linked through shared models and annotations")
	return cmd
}

func (a *app) newClipboardCmd() *cobra.Command {
	var (
		outPath string
		format  string
		linked  bool
	)
	cmd := &cobra.Command{
		Use:   "clipboard DOC TILE...",
		Short: "Write selected tiles to the clipboard file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := clipboard.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			_, doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			pkg, err := buildPackage(doc, args[1:], linked)
			if err != nil {
				return err
			}

			path, err := paths.ClipboardFile(outPath, a.cfg.DataDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create clipboard directory: %w", err)
			}
			if err := clipboard.WriteFile(path, pkg, f); err != nil {
				return err
			}
			a.log.Debug("clipboard written", zap.String("path", path), zap.Int("tiles", len(pkg.Tiles)))
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d tiles\n", path, len(pkg.Tiles))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "clipboard file (default: clipboard.cbor in the data directory)")
	cmd.Flags().StringVar(&format, "format", string(clipboard.FormatCBOR), "cbor or json")
	cmd.Flags().BoolVar(&linked, "linked", false, "include tiles linked through shared models and annotations")
	return cmd
}

func (a *app) newPasteCmd() *cobra.Command {
	var row int
	cmd := &cobra.Command{
		Use:   "paste DOC [FILE]",
		Short: "Paste the clipboard file into a document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flag string
			if len(args) == 2 {
				flag = args[1]
			}
			path, err := paths.ClipboardFile(flag, a.cfg.DataDir)
			if err != nil {
				return err
			}
			pkg, err := clipboard.ReadFile(path)
			if err != nil {
				return err
			}
			stored, doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			return a.receive(cmd, stored.Name, doc, pkg, row)
		},
	}
	cmd.Flags().IntVar(&row, "row", -1, "insert the pasted rows at this index")
	return cmd
}
