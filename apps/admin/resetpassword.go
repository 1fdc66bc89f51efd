package main

import (
	"context"

	"github.com/fbasso/maestro/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	_, err := cli.usrSvc.ResetPassword(ctx, core.CleanString(email, true /* lower */), pwd)
	return err
}
