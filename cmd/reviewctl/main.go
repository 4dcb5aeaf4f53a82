// Command reviewctl is a terminal client for the CompareCarts API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"comparecarts/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

// userMessage turns API failures into the text a user should see.
func userMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return client.ErrUnavailable.Error()
	default:
		return err.Error()
	}
}
