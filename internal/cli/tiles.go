// Tile commands: add, move, delete, duplicate.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tiledoc/internal/document"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

func (a *app) newAddCmd() *cobra.Command {
	var (
		title string
		row   int
		after string
		into  string
	)
	cmd := &cobra.Command{
		Use:   "add DOC TYPE",
		Short: "Add a tile in a new row",
		Long: "Add a tile of TYPE. Without --row or --after the tile goes into a new\n" +
			"row at the end of the document (or of the container given by --into).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := args[1]
			if _, ok := a.reg.ContentInfo(typ); !ok {
				return fmt.Errorf("%w: %s (known: %s)", types.ErrUnknownContentType, typ, strings.Join(a.reg.Types(), ", "))
			}
			stored, doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}

			opts := document.AddTileOptions{Title: title, RowListID: into}
			var res *types.NewRowTile
			if after != "" {
				if err := requireTiles(doc, []string{after}); err != nil {
					return err
				}
				res = doc.AddTileAfter(typ, after, nil, opts)
			} else {
				if cmd.Flags().Changed("row") {
					info := types.InsertAt(row)
					info.RowListID = into
					opts.InsertRowInfo = &info
				}
				res = doc.AddTile(typ, opts)
			}
			if res == nil {
				return fmt.Errorf("%w: add %s to %s", errOperationRefused, typ, stored.Name)
			}
			if _, err := a.saveDocument(stored.Name, doc); err != nil {
				return err
			}
			return a.printPlacements(cmd.OutOrStdout(), []types.NewRowTile{*res})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "tile title")
	cmd.Flags().IntVar(&row, "row", -1, "insert the new row at this index")
	cmd.Flags().StringVar(&after, "after", "", "insert in a new row after this tile's row")
	cmd.Flags().StringVar(&into, "into", "", "container tile whose rows receive the tile")
	return cmd
}

// dropInfo builds a drop target from CLI flags. left and right land in the
// row at rowIndex (or rowID); top, bottom and "" create a new row before or
// after it.
func dropInfo(rowIndex int, rowID, location string) (types.DropRowInfo, error) {
	loc := types.DropLocation(location)
	switch loc {
	case types.DropLeft, types.DropRight:
		if rowID != "" {
			return types.DropInto(rowID, loc), nil
		}
		if rowIndex < 0 {
			return types.DropRowInfo{}, fmt.Errorf("%w: --location %s needs --row-index or --row-id", errUsage, loc)
		}
		return types.DropRowInfo{RowInsertIndex: -1, RowDropIndex: rowIndex, RowDropLocation: loc}, nil
	case types.DropTop, types.DropNone:
		return types.InsertAt(rowIndex), nil
	case types.DropBottom:
		if rowIndex < 0 {
			return types.InsertAt(-1), nil
		}
		return types.InsertAt(rowIndex + 1), nil
	}
	return types.DropRowInfo{}, fmt.Errorf("%w: unknown location %q", errUsage, location)
}

func (a *app) newMoveCmd() *cobra.Command {
	var (
		rowIndex  int
		rowID     string
		location  string
		tileIndex int
		into      string
	)
	cmd := &cobra.Command{
		Use:   "move DOC TILE",
		Short: "Move a tile to another row or position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := dropInfo(rowIndex, rowID, location)
			if err != nil {
				return err
			}
			info.RowListID = into

			stored, doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			if err := requireTiles(doc, args[1:]); err != nil {
				return err
			}
			if !doc.MoveTile(args[1], info, tileIndex) {
				return fmt.Errorf("%w: move %s", errOperationRefused, args[1])
			}
			_, err = a.saveDocument(stored.Name, doc)
			return err
		},
	}
	cmd.Flags().IntVar(&rowIndex, "row-index", -1, "target row index")
	cmd.Flags().StringVar(&rowID, "row-id", "", "target row id for left/right drops")
	cmd.Flags().StringVar(&location, "location", "", "left, right, top or bottom")
	cmd.Flags().IntVar(&tileIndex, "tile-index", 0, "position inside the row for left drops")
	cmd.Flags().StringVar(&into, "into", "", "container tile whose rows receive the tile")
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete DOC TILE...",
		Short: "Delete tiles",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			ids := args[1:]
			err = doc.Transact("deleteTiles", func() error {
				for _, id := range ids {
					// Deleting a container removes its embedded tiles too.
					if doc.Tile(id) == nil {
						return fmt.Errorf("%w: %s", types.ErrTileNotFound, id)
					}
					doc.DeleteTile(id)
				}
				return nil
			})
			if err != nil {
				return err
			}
			_, err = a.saveDocument(stored.Name, doc)
			return err
		},
	}
}

func (a *app) newDuplicateCmd() *cobra.Command {
	var linked bool
	cmd := &cobra.Command{
		Use:   "duplicate DOC TILE...",
		Short: "Copy tiles into a new row after the last selected row",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			if err := requireTiles(doc, args[1:]); err != nil {
				return err
			}
			placed := doc.DuplicateTiles(selection(doc, args[1:], linked))
			if len(placed) == 0 {
				return fmt.Errorf("%w: nothing to duplicate", errOperationRefused)
			}
			if _, err := a.saveDocument(stored.Name, doc); err != nil {
				return err
			}
			return a.printPlacements(cmd.OutOrStdout(), placed)
		},
	}
	cmd.Flags().BoolVar(&linked, "linked", false, "include tiles linked through shared models and annotations")
	return cmd
}
