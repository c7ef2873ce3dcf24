// cmd/recall/main.go
package main

import (
	cmd "github.com/mwiater/recall/internal/cli"
)

// main starts the recall CLI application by delegating to the
// cobra root command defined in the recall package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
