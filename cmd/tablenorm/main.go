// Command tablenorm normalizes extracted commission-statement tables from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/statement-tables/internal/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if _, perr := fmt.Fprintf(os.Stderr, "Error: %v\n", err); perr != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
	os.Exit(exitCode(err))
}

// exitCode maps an error onto its gRPC status code so scripts can tell invalid input
// (3), missing files (5) and an unreachable database (14) apart.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return int(status.Code(common.ToStatus(err)))
}
