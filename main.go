// main.go
package main

import (
	"github.com/xkilldash9x/webharness/cmd"
)

func main() {
	cmd.Execute()
}
