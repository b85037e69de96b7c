package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/Raisondetr3/taskflow-service/internal/errors"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorMessage(err))
		os.Exit(1)
	}
}

func errorMessage(err error) string {
	var svcErr *errors.ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr.Message
	}
	return err.Error()
}
