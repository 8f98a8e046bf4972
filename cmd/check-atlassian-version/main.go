// Package main provides the check_atlassian_version monitoring plugin.
// It prints one Nagios/Icinga status line and exits with the matching code.
package main

import (
	"os"

	"github.com/clean-dependency-project/check-atlassian-version/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args))
}
