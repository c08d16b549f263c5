package main

import (
	"fmt"
	"os"

	"cafe-media/internal/cli"

	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.Init()

	if err := cli.Execute(&zlog.Logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
