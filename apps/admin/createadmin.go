package main

import (
	"context"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/user"
)

// createAdmin creates a staff account able to log in to the API.
func (cli *commandLine) createAdmin(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrSvc.CheckEmailUniqueness(ctx, email); err != nil {
		return err
	}
	_, err := cli.usrSvc.Create(ctx, user.NewUser{Name: "Admin", Email: email, Password: pwd})
	return err
}
