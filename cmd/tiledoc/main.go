// Command tiledoc edits tile documents kept in a local document store.
package main

import "github.com/mesh-intelligence/tiledoc/internal/cli"

func main() {
	cli.Execute()
}
