package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/internal/infrastructure/monitor"
	"github.com/fastygo/stockdesk/internal/services/keeper"
	"github.com/fastygo/stockdesk/pkg/datefield"
	"github.com/fastygo/stockdesk/pkg/localdate"
	"github.com/fastygo/stockdesk/usecase/catalog"
	"github.com/fastygo/stockdesk/usecase/preferences"
	"github.com/fastygo/stockdesk/usecase/report"
	"github.com/fastygo/stockdesk/usecase/session"
)

// App binds the stores to terminal commands.
type App struct {
	Session     *session.Store
	Catalog     *catalog.Store
	Reports     *report.Orchestrator
	Preferences *preferences.Store
	Keeper      *keeper.Keeper
	Monitor     *monitor.Monitor
	Out         io.Writer
	Logger      *zap.Logger
}

// Dispatcher registers every command of the application.
func (a *App) Dispatcher() *Dispatcher {
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	d := NewDispatcher()

	d.RegisterCommand("login", "-email E -password P", a.login)
	d.RegisterCommand("register", "-username U -email E -password P [-role R]", a.register)
	d.RegisterCommand("logout", "forget the stored session", a.logout)
	d.RegisterQuery("whoami", "show the stored session", a.whoami)
	d.RegisterQuery("validate", "ask the API whether the token is still accepted", a.validate)

	d.RegisterQuery("products list", "[-page N] [-size N]", a.listProducts)
	d.RegisterQuery("products get", "ID", a.getProduct)
	d.RegisterCommand("products create", "-name N -description D -price P -quantity Q", a.createProduct)
	d.RegisterCommand("products update", "ID -name N -description D -price P -quantity Q", a.updateProduct)
	d.RegisterCommand("products delete", "ID", a.deleteProduct)

	d.RegisterCommand("report", "-start DD/MM/YYYY -end DD/MM/YYYY | -last N", a.generateReport)
	d.RegisterQuery("preview", "-start DD/MM/YYYY -end DD/MM/YYYY", a.preview)
	d.RegisterQuery("presets", "list the predefined periods", a.presets)

	d.RegisterCommand("whatsapp set", "NUMBER [-forget]", a.setWhatsApp)
	d.RegisterCommand("whatsapp clear", "forget the delivery number", a.clearWhatsApp)
	d.RegisterQuery("whatsapp show", "show the delivery number", a.showWhatsApp)

	d.RegisterQuery("status", "check the API breaker and the state backend", a.status)
	d.RegisterCommand("watch", "keep validating the session until interrupted", a.watch)
	return d
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account e-mail")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := a.Session.Login(ctx, domain.LoginCredentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "signed in as %s (%s)\n", sess.User.Email, sess.User.Role)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "account e-mail")
	password := fs.String("password", "", "account password")
	role := fs.String("role", "", "account role (default USER)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := a.Session.Register(ctx, domain.RegisterCredentials{
		Username: *username,
		Email:    *email,
		Password: *password,
		Role:     *role,
	})
	if err != nil {
		return err
	}
	if sess.IsAuthenticated {
		fmt.Fprintf(a.Out, "account created, signed in as %s\n", sess.User.Email)
		return nil
	}
	fmt.Fprintln(a.Out, "account created, sign in to continue")
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	a.Session.Logout(ctx)
	a.Catalog.Reset()
	fmt.Fprintln(a.Out, "signed out")
	return nil
}

func (a *App) whoami(context.Context, []string) error {
	sess := a.Session.Current()
	if !sess.IsAuthenticated {
		fmt.Fprintln(a.Out, "not signed in")
		return nil
	}
	fmt.Fprintf(a.Out, "%s <%s> id=%s role=%s\n", sess.User.Name, sess.User.Email, sess.User.ID, sess.User.Role)
	return nil
}

func (a *App) validate(ctx context.Context, _ []string) error {
	if a.Session.Validate(ctx) {
		fmt.Fprintln(a.Out, "token accepted")
		return nil
	}
	fmt.Fprintln(a.Out, "not signed in")
	return nil
}

func (a *App) listProducts(ctx context.Context, args []string) error {
	cursor := a.Catalog.State().Cursor
	fs := a.flags("products list")
	page := fs.Int("page", cursor.Page, "zero-based page")
	size := fs.Int("size", cursor.Size, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.Catalog.FetchPage(ctx, *page, *size); err != nil {
		return errors.New(a.Catalog.State().Err)
	}

	st := a.Catalog.State()
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tCREATED")
	for _, p := range st.Products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.Name, p.Price.StringFixed(2), p.Quantity, p.CreatedAt.Format("02/01/2006 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "page %d of %d, %d products\n", st.Cursor.Page+1, max(st.Cursor.TotalPages, 1), st.Cursor.TotalElements)
	return nil
}

func (a *App) getProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: products get ID")
	}
	p, err := a.Catalog.Get(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s  %s\n  %s\n  price %s  quantity %d  stock value %s\n",
		p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Quantity, p.StockValue().StringFixed(2))
	return nil
}

func (a *App) productFlags(name string, args []string) (domain.ProductInput, error) {
	fs := a.flags(name)
	pname := fs.String("name", "", "product name")
	desc := fs.String("description", "", "product description")
	price := fs.String("price", "", "unit price, e.g. 19.90")
	qty := fs.Int64("quantity", 0, "units in stock")
	if err := fs.Parse(args); err != nil {
		return domain.ProductInput{}, err
	}
	p, err := decimal.NewFromString(*price)
	if err != nil {
		return domain.ProductInput{}, domain.WrapError(domain.ErrCodeInvalid, "price must be a number", err)
	}
	return domain.ProductInput{Name: *pname, Description: *desc, Price: p, Quantity: *qty}, nil
}

func (a *App) createProduct(ctx context.Context, args []string) error {
	in, err := a.productFlags("products create", args)
	if err != nil {
		return err
	}
	if !a.Catalog.Create(ctx, in) {
		return errors.New(a.Catalog.State().Err)
	}
	fmt.Fprintln(a.Out, "product created")
	return nil
}

func (a *App) updateProduct(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: products update ID [flags]")
	}
	in, err := a.productFlags("products update", args[1:])
	if err != nil {
		return err
	}
	if !a.Catalog.Update(ctx, args[0], in) {
		return errors.New(a.Catalog.State().Err)
	}
	fmt.Fprintln(a.Out, "product updated")
	return nil
}

func (a *App) deleteProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: products delete ID")
	}
	if !a.Catalog.Remove(ctx, args[0]) {
		return errors.New(a.Catalog.State().Err)
	}
	fmt.Fprintln(a.Out, "product removed")
	return nil
}

// rangeFlags reads the period either as typed dates or as a preset. Typed
// dates go through the same digit mask as the interactive field.
func (a *App) rangeFlags(name string, args []string) (start, end string, err error) {
	fs := a.flags(name)
	rawStart := fs.String("start", "", "first day, DD/MM/YYYY or DDMMYYYY")
	rawEnd := fs.String("end", "", "last day, DD/MM/YYYY or DDMMYYYY")
	last := fs.Int("last", 0, "use the last N days instead")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if *last > 0 {
		start, end = report.PresetRange(*last)
		return start, end, nil
	}
	start, _, _ = datefield.Mask(*rawStart)
	end, _, _ = datefield.Mask(*rawEnd)
	return start, end, nil
}

func (a *App) generateReport(ctx context.Context, args []string) error {
	start, end, err := a.rangeFlags("report", args)
	if err != nil {
		return err
	}
	result, err := a.Reports.Run(ctx, start, end)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%d of %d products in period, %d units, total %s\n",
		result.Included, result.Scanned, result.Request.Totals.Units, result.Request.Totals.Value.StringFixed(2))
	if result.Response.FileURL != "" {
		fmt.Fprintf(a.Out, "file: %s\n", result.Response.FileURL)
	}
	return nil
}

func (a *App) preview(_ context.Context, args []string) error {
	start, end, err := a.rangeFlags("preview", args)
	if err != nil {
		return err
	}
	p := report.PreviewRange(start, end)
	fmt.Fprintf(a.Out, "status: %s\n", p.Status)
	if p.StartLabel != "" {
		fmt.Fprintf(a.Out, "from:   %s\n", p.StartLabel)
	}
	if p.EndLabel != "" {
		fmt.Fprintf(a.Out, "to:     %s\n", p.EndLabel)
	}
	if p.Days > 0 {
		fmt.Fprintf(a.Out, "days:   %d\n", p.Days)
	}
	return nil
}

func (a *App) presets(context.Context, []string) error {
	for _, days := range localdate.Presets {
		start, end := report.PresetRange(days)
		fmt.Fprintf(a.Out, "%3d days  %s - %s\n", days, start, end)
	}
	return nil
}

func (a *App) setWhatsApp(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: whatsapp set NUMBER [-forget]")
	}
	fs := a.flags("whatsapp set")
	forget := fs.Bool("forget", false, "use the number for this run only")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if err := a.Preferences.SetWhatsApp(ctx, args[0], !*forget); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "whatsapp set to %s\n", a.Preferences.WhatsApp())
	return nil
}

func (a *App) clearWhatsApp(ctx context.Context, _ []string) error {
	if err := a.Preferences.ClearWhatsApp(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "whatsapp cleared")
	return nil
}

func (a *App) showWhatsApp(context.Context, []string) error {
	prefs := a.Preferences.Current()
	if prefs.WhatsApp == "" {
		fmt.Fprintln(a.Out, "no whatsapp number")
		return nil
	}
	fmt.Fprintf(a.Out, "%s (remember=%s)\n", prefs.WhatsApp, strconv.FormatBool(prefs.RememberWhatsApp))
	return nil
}

func (a *App) status(ctx context.Context, _ []string) error {
	if a.Monitor == nil {
		return errors.New("monitor not configured")
	}
	st := a.Monitor.Refresh(ctx)
	for _, c := range st.Components {
		state := "up"
		if !c.Healthy {
			state = "down"
		}
		fmt.Fprintf(a.Out, "%-8s %-4s %s\n", c.Name, state, c.Detail)
	}
	if !st.Online() {
		return errors.New("some components are unavailable")
	}
	return nil
}

// watch blocks until ctx is cancelled, validating the session on the
// keeper's schedule.
func (a *App) watch(ctx context.Context, _ []string) error {
	if a.Keeper == nil {
		return errors.New("session keeper not configured")
	}
	fmt.Fprintf(a.Out, "initial check: %s\n", a.Keeper.Check(ctx))
	a.Keeper.Start()
	<-ctx.Done()
	return nil
}
