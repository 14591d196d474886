// Command tradenet analyses trade network snapshots from the command line
// and administers the trade record store.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := dispatch(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(command string, args []string, stdout io.Writer) error {
	switch command {
	case "analyze":
		return runAnalyze(args, stdout)
	case "explore":
		return runExplore(args, stdout)
	case "countries":
		return runCountries(args, stdout)
	case "profile":
		return runProfile(args, stdout)
	case "compare":
		return runCompare(args, stdout)
	case "import":
		return runImport(args, stdout)
	case "token":
		return runToken(args, stdout)
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "tradenet %s\n", Version)
		return nil
	}
	printUsage(os.Stderr)
	return fmt.Errorf("unknown command: %s", command)
}

func printUsage(w io.Writer) {
	usage := `tradenet - trade network analytics

Usage:
  tradenet <command> [options]

Available Commands:
  analyze     Rank countries and detect trade communities in a snapshot
  explore     Browse an analysis interactively
  countries   List the countries in a snapshot
  profile     Show one country's trade with the world and its partners
  compare     Show the bilateral trade between two countries
  import      Load a snapshot into PostgreSQL
  token       Issue an API bearer token
  help        Show this help message
  version     Show version information

Snapshots are CSV or JSON lines files, optionally snappy-compressed
(flows.csv, flows.jsonl.sz).

Examples:
  tradenet analyze -in flows.csv -top 10
  tradenet analyze -in flows.csv -communities -json
  tradenet profile -in flows.csv -country France
  JWT_SECRET=... tradenet token -subject ci -role analyst

Use "tradenet <command> -h" for more information about a command.
`
	fmt.Fprint(w, usage)
}
