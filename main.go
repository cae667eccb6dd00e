package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/gambit/internal/gambit/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	root := cmd.Root()
	root.SetArgs(os.Args[1:])

	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
