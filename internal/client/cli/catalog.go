package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/libraryclient/internal/client/api"
	"github.com/dmitrijs2005/libraryclient/internal/client/models"
	"github.com/dmitrijs2005/libraryclient/internal/client/notify"
	"github.com/dmitrijs2005/libraryclient/internal/client/router"
	"github.com/dmitrijs2005/libraryclient/internal/client/services"
)

var errUsage = errors.New("usage")

func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		printlnFn("Usage:", usage)
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		printlnFn("Invalid id:", args[0])
		return 0, errUsage
	}
	return id, nil
}

// canWrite reports whether the user may change records of res. Only
// superusers edit the catalog; loans are open to every reader. A denied
// user is sent to the no-access view.
func (a *App) canWrite(ctx context.Context, res models.Resource) bool {
	if res == models.Loans || a.session.IsSuperuser() {
		return true
	}
	_ = a.navigate(ctx, router.NoAccessPath)
	return false
}

// List re-renders the current view.
func (a *App) List(ctx context.Context) error {
	if _, err := a.resource(); err != nil {
		return err
	}
	return a.render(ctx)
}

func (a *App) Show(ctx context.Context, args []string) error {
	res, err := a.resource()
	if err != nil {
		return err
	}
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}

	rec, err := a.catalog.Get(ctx, res, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			a.notify(fmt.Sprintf("No %s record with id %d", res, id), notify.KindWarning)
			return err
		}
		return a.fail(ctx, "Could not load the record", err)
	}
	fmt.Fprintln(a.out, renderTable(title(res), []models.Tabular{rec}))
	return nil
}

// Add creates a record from name=value arguments, e.g.
// "add title=Dune genre=2 library=1".
func (a *App) Add(ctx context.Context, args []string) error {
	res, err := a.resource()
	if err != nil {
		return err
	}
	if !a.canWrite(ctx, res) {
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: add name=value ...")
		return errUsage
	}
	fields, err := models.FieldsFromArgs(args)
	if err != nil {
		a.notify(err.Error(), notify.KindError)
		return err
	}

	rec, err := a.catalog.Create(ctx, res, fields)
	if err != nil {
		return a.fail(ctx, "Could not add the record", err)
	}
	a.notify("Record added", notify.KindSuccess)
	fmt.Fprintln(a.out, renderTable(title(res), []models.Tabular{rec}))
	return nil
}

// Edit changes the given fields of one record: "edit 7 title=Dune".
func (a *App) Edit(ctx context.Context, args []string) error {
	res, err := a.resource()
	if err != nil {
		return err
	}
	if !a.canWrite(ctx, res) {
		return nil
	}
	id, err := parseID(args, "edit <id> name=value ...")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		printlnFn("Usage: edit <id> name=value ...")
		return errUsage
	}
	fields, err := models.FieldsFromArgs(args[1:])
	if err != nil {
		a.notify(err.Error(), notify.KindError)
		return err
	}

	rec, err := a.catalog.Update(ctx, res, id, fields)
	if err != nil {
		return a.fail(ctx, "Could not save the record", err)
	}
	a.notify("Record saved", notify.KindSuccess)
	fmt.Fprintln(a.out, renderTable(title(res), []models.Tabular{rec}))
	return nil
}

// Delete removes a record. It needs a verified second factor.
func (a *App) Delete(ctx context.Context, args []string) error {
	res, err := a.resource()
	if err != nil {
		return err
	}
	if !a.canWrite(ctx, res) {
		return nil
	}
	id, err := parseID(args, "delete <id>")
	if err != nil {
		return err
	}
	if !a.session.IsSecondFactorVerified() {
		a.notify("Deleting requires the one-time code: otp <code>", notify.KindError)
		return nil
	}

	if err := a.catalog.Delete(ctx, res, id); err != nil {
		return a.fail(ctx, "Could not delete the record", err)
	}
	a.notify("Record deleted", notify.KindSuccess)
	return a.render(ctx)
}

func (a *App) Stats(ctx context.Context) error {
	res, err := a.resource()
	if err != nil {
		return err
	}
	stats, err := a.catalog.Stats(ctx, res)
	if err != nil {
		return a.fail(ctx, "Could not load stats", err)
	}
	fmt.Fprintln(a.out, renderPairs(title(res)+" stats", statsPairs(stats)))
	return nil
}

// Export saves the current collection as an Excel (default) or Word file.
// Exports are for superusers only.
func (a *App) Export(ctx context.Context, args []string) error {
	res, err := a.resource()
	if err != nil {
		return err
	}
	if !a.session.IsSuperuser() {
		return a.navigate(ctx, router.NoAccessPath)
	}

	var kind string
	if len(args) > 0 {
		kind = args[0]
	}
	format, err := services.ParseExportFormat(kind)
	if err != nil {
		a.notify(err.Error(), notify.KindError)
		return err
	}

	path, err := a.catalog.Export(ctx, res, format)
	if err != nil {
		return a.fail(ctx, "Export failed", err)
	}
	a.notify("Exported to "+path, notify.KindSuccess)
	return nil
}

// Return closes a loan.
func (a *App) Return(ctx context.Context, args []string) error {
	id, err := parseID(args, "return <loan id>")
	if err != nil {
		return err
	}
	if _, err := a.catalog.ReturnLoan(ctx, id); err != nil {
		return a.fail(ctx, "Could not return the book", err)
	}
	a.notify("Book returned", notify.KindSuccess)
	if a.current.Route.View == router.ViewLoans {
		return a.render(ctx)
	}
	return nil
}
