package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/fileshare/internal/client/api"
	"github.com/avolkov/fileshare/internal/common"
)

func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	defer common.WipeByteArray(password)

	err = a.session.Login(ctx, username, string(password), "")
	if errors.Is(err, api.ErrSecondFactorRequired) {
		code, cerr := GetSimpleText(a.reader, "Enter one-time code", a.out)
		if cerr != nil {
			return cerr
		}
		err = a.session.Login(ctx, username, string(password), code)
	}
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", a.session.Snapshot().Error)
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Register(ctx, username, email, string(password)); err != nil {
		fmt.Fprintf(a.out, "Registration unsuccessful: %s\n", a.session.Snapshot().Error)
		return err
	}

	fmt.Fprintln(a.out, "Registered and logged in")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) EnableOTP(ctx context.Context) error {
	secret, err := a.api.EnableOTP(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Second factor enabled. Authenticator secret: %s\n", secret)
	return nil
}
