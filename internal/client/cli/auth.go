package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/libraryclient/internal/client/api"
	"github.com/dmitrijs2005/libraryclient/internal/client/notify"
	"github.com/dmitrijs2005/libraryclient/internal/client/router"
	"github.com/dmitrijs2005/libraryclient/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and checks the first factor. On success the
// user lands on the books view with the one-time code still outstanding.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	if a.session.IsAuthenticated() {
		a.notify("Already logged in as "+a.session.Snapshot().CurrentUser.Username, notify.KindInfo)
		return nil
	}

	prompt := "Enter username"
	if pending := a.session.Snapshot().PendingUsername; pending != "" {
		prompt = fmt.Sprintf("Enter username (last: %s)", pending)
	}
	userName, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, userName, string(password)); err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) || errors.Is(err, api.ErrUnauthorized) {
			a.notify("Invalid username or password", notify.KindError)
			return err
		}
		return a.fail(ctx, "Login failed", err)
	}

	a.log.Info(ctx, "first factor accepted", "username", userName)
	a.notify("Password accepted. Enter the code from your authenticator: otp <code>", notify.KindInfo)
	return a.navigate(ctx, router.LandingPath)
}

// OTP submits the one-time code in args[0].
func (a *App) OTP(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: otp <code>")
		return nil
	}

	ok, err := a.session.VerifyOTP(ctx, args[0])
	if err != nil {
		return a.fail(ctx, "Code check failed", err)
	}
	if !ok {
		a.notify("Invalid code", notify.KindError)
		return nil
	}

	a.notify("Second factor verified", notify.KindSuccess)
	if a.current.Route.View == router.ViewLogin || a.current.Path == "" {
		return a.navigate(ctx, router.LandingPath)
	}
	return nil
}

// TOTP prints the provisioning URL for an authenticator app.
func (a *App) TOTP(ctx context.Context) error {
	url, err := a.session.GetTOTP(ctx)
	if err != nil {
		return a.fail(ctx, "Could not get the TOTP link", err)
	}
	if url == "" {
		a.notify("The server did not return a TOTP link", notify.KindWarning)
		return nil
	}
	fmt.Fprintln(a.out, "Add this link to your authenticator app:")
	fmt.Fprintln(a.out, url)
	return nil
}

// OTPStatus asks the backend whether the second factor is verified.
func (a *App) OTPStatus(ctx context.Context) error {
	ok, err := a.session.CheckOTPStatus(ctx)
	if err != nil {
		return a.fail(ctx, "Could not check the code status", err)
	}
	if ok {
		a.notify("Second factor verified", notify.KindSuccess)
	} else {
		a.notify("Second factor not verified", notify.KindWarning)
	}
	return nil
}

// WhoAmI refreshes the identity from the backend and shows the profile view.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.session.FetchUserInfo(ctx); err != nil {
		return a.fail(ctx, "Could not load the profile", err)
	}
	return a.navigate(ctx, "/profile")
}

// Logout ends the backend session and returns to the login view.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return a.fail(ctx, "Logout failed", err)
	}
	a.forgetCookies(ctx)
	a.notify("Logged out", notify.KindSuccess)
	return a.navigate(ctx, router.LoginPath)
}

// ClearPending abandons a half-finished login.
func (a *App) ClearPending(ctx context.Context) error {
	if err := a.session.ClearPending(ctx); err != nil {
		return a.fail(ctx, "Could not reset the login", err)
	}
	a.notify("Login reset", notify.KindInfo)
	return nil
}
