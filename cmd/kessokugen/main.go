// Command kessokugen generates kessoku bundle and query declarations from a
// YAML schema.
package main

import (
	"context"
	"os"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
