// Command otpflow serves the account flows: one-time code issuance and
// verification, exchange tokens, and the notification consumer.
package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpflow/internal/app"
)

const shutdownTimeout = 10 * time.Second

func main() {
	application := app.New()
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	application.Stop(ctx)
}
