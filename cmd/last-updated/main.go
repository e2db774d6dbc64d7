package main

import (
	cmd "github.com/rohmanhakim/last-updated/internal/cli"
	applog "github.com/rohmanhakim/last-updated/internal/log"
)

func main() {
	applog.InitLogger()
	cmd.Execute()
}
