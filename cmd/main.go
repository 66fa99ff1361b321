package main

import (
	"fmt"
	"os"

	"github.com/bastion-gov/bastion/cmd/bastion"
)

func main() {
	rootCmd := bastion.BuildBastionCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
