package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Dispatcher
func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// startServer is a variable to allow mocking in tests
var startServer = runServer

// Run is the entrypoint for testing
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		// Default to server
		startServer()
		return 0
	}

	switch args[1] {
	case "server", "serve":
		startServer()
		return 0
	case "health":
		return runHealthCmd(stdout, stderr)
	case "verify-chain":
		return runVerifyChainCmd(stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "peerfact %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		if args[1][0] == '-' {
			startServer()
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

const version = "v1.0.0"

// ANSI Colors
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorBlue  = "\033[34m"
	ColorCyan  = "\033[36m"
	ColorGreen = "\033[32m"
	ColorGray  = "\033[37m"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sPeerFact %s%s\n", ColorBold+ColorBlue, version, ColorReset)
	fmt.Fprintf(w, "%sClaims propose. The crowd disposes.%s\n", ColorGray, ColorReset)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sUSAGE:%s\n", ColorBold, ColorReset)
	fmt.Fprintln(w, "  peerfact <command> [flags]")
	fmt.Fprintln(w, "")
	printSection(w, "SERVER")
	printCommand(w, "server", "Run the PeerFact server (default)")
	printCommand(w, "health", "Check server health (HTTP)")
	printSection(w, "INTEGRITY")
	printCommand(w, "verify-chain", "Verify the integrity chain of a running server")
	printSection(w, "UTILITIES")
	printCommand(w, "version", "Show version information")
	printCommand(w, "help", "Show this help")
	fmt.Fprintln(w, "")
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s%s:%s\n", ColorBold+ColorCyan, title, ColorReset)
}

func printCommand(w io.Writer, name, desc string) {
	fmt.Fprintf(w, "  %s%-14s%s %s\n", ColorGreen, name, ColorReset, desc)
}

func serverBase() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return "http://localhost:" + port
}

func runHealthCmd(out, errOut io.Writer) int {
	resp, err := http.Get(serverBase() + "/health")
	if err != nil {
		fmt.Fprintf(errOut, "Health check failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(errOut, "Health check failed: status %d\n", resp.StatusCode)
		return 1
	}
	fmt.Fprintln(out, "OK")
	return 0
}

func runVerifyChainCmd(out, errOut io.Writer) int {
	resp, err := http.Get(serverBase() + "/api/chain/status")
	if err != nil {
		fmt.Fprintf(errOut, "Chain check failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(errOut, "Chain check failed: status %d\n", resp.StatusCode)
		return 1
	}

	var stats struct {
		TotalBlocks       int    `json:"total_blocks"`
		TotalTransactions int    `json:"total_transactions"`
		ChainIntegrity    bool   `json:"chain_integrity"`
		HeadHash          string `json:"head_hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		fmt.Fprintf(errOut, "Chain check failed: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "blocks: %d  transactions: %d  head: %s\n",
		stats.TotalBlocks, stats.TotalTransactions, stats.HeadHash)
	if !stats.ChainIntegrity {
		fmt.Fprintln(errOut, "chain integrity: BROKEN")
		return 1
	}
	fmt.Fprintln(out, "chain integrity: OK")
	return 0
}
