// barberctl is the command-line front end for the BarberPro booking client.
// It restores the persisted session on startup, wires the cached API client
// and exposes the booking flows as subcommands.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/internal/appointments"
	"github.com/barberpro/barberpro-mobile/internal/booking"
	"github.com/barberpro/barberpro-mobile/internal/cache"
	"github.com/barberpro/barberpro-mobile/internal/catalog"
	appconfig "github.com/barberpro/barberpro-mobile/internal/config"
	"github.com/barberpro/barberpro-mobile/internal/credstore"
	"github.com/barberpro/barberpro-mobile/internal/notify"
	"github.com/barberpro/barberpro-mobile/internal/observability/metrics"
	"github.com/barberpro/barberpro-mobile/internal/profile"
	"github.com/barberpro/barberpro-mobile/internal/session"
	"github.com/barberpro/barberpro-mobile/pkg/logging"
)

type app struct {
	cfg          *appconfig.Config
	logger       *logging.Logger
	client       *api.Client
	store        *cache.Store
	session      *session.Manager
	catalog      *catalog.Service
	appointments *appointments.Service
	profile      *profile.Service
	wizard       *booking.Wizard
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a.session.Restore(ctx)

	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		os.Exit(1)
	}
}

func newApp(cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	apiMetrics := metrics.NewAPIMetrics(reg)
	cacheMetrics := metrics.NewCacheMetrics(reg)

	creds, err := credstore.New(cfg.CredentialDir, logger.Component("credstore"))
	if err != nil {
		return nil, fmt.Errorf("init credential store: %w", err)
	}

	client := api.NewClient(cfg.APIBaseURL, creds, logger.Component("api"),
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithMetrics(apiMetrics),
	)
	store := cache.New(logger.Component("cache"),
		cache.WithRetries(cfg.CacheRetries),
		cache.WithMetrics(cacheMetrics),
	)
	notifier := notify.NewLogNotifier(logger.Component("notify"))

	sess := session.NewManager(client, creds, logger.Component("session"))
	appts := appointments.NewService(client, store, notifier, logger.Component("appointments"))

	a := &app{
		cfg:          cfg,
		logger:       logger,
		client:       client,
		store:        store,
		session:      sess,
		catalog:      catalog.NewService(client, store),
		appointments: appts,
		profile:      profile.NewService(client, store, notifier),
		wizard:       booking.NewWizard(appts, logger.Component("booking")),
	}

	if cfg.MetricsAddr != "" {
		go a.serveMetrics(reg)
	}
	return a, nil
}

// serveMetrics exposes the Prometheus registry on a side listener for local
// debugging. It is off unless METRICS_ADDR is set.
func (a *app) serveMetrics(reg *prometheus.Registry) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	a.logger.Info("metrics listener up", "addr", a.cfg.MetricsAddr)
	if err := http.ListenAndServe(a.cfg.MetricsAddr, r); err != nil {
		a.logger.Error("metrics listener stopped", "error", err)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("Sesión cerrada")
		return nil
	case "whoami":
		return a.cmdWhoami()
	case "services":
		return a.cmdServices(ctx, rest)
	case "staff":
		return a.cmdStaff(ctx)
	case "slots":
		return a.cmdSlots(ctx, rest)
	case "book":
		return a.cmdBook(ctx, rest)
	case "appointments":
		return a.cmdAppointments(ctx, rest)
	case "cancel":
		return a.cmdCancel(ctx, rest)
	case "records":
		return a.cmdRecords(ctx)
	case "promotion":
		return a.cmdPromotion(ctx)
	case "profile":
		return a.cmdProfile(ctx, rest)
	case "passwd":
		return a.cmdPasswd(ctx, rest)
	default:
		usage()
		return fmt.Errorf("comando desconocido: %s", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `uso: barberctl <comando> [opciones]

  login <email> <contraseña>
  register -name NOMBRE -email EMAIL -phone TELÉFONO -password CONTRASEÑA
  logout
  whoami
  services [-all]
  staff
  slots -service ID -date AAAA-MM-DD [-staff ID]
  book -service ID -date AAAA-MM-DD [-staff ID] [-time HH:MM] [-notes TEXTO]
  appointments [-status PENDING,CONFIRMED,...]
  cancel <id>
  records
  promotion
  profile -name NOMBRE | -phone TELÉFONO
  passwd -current ACTUAL -new NUEVA`)
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("uso: login <email> <contraseña>")
	}
	if err := a.session.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	user := a.session.CurrentUser()
	fmt.Printf("Hola, %s\n", user.Name)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "nombre completo")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "teléfono")
	password := fs.String("password", "", "contraseña")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req := api.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
	}
	if *phone != "" {
		req.Phone = phone
	}
	if err := a.session.Register(ctx, req); err != nil {
		return err
	}
	fmt.Println("Cuenta creada")
	return nil
}

func (a *app) cmdWhoami() error {
	user := a.session.CurrentUser()
	if user == nil {
		fmt.Println("No has iniciado sesión")
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}

func (a *app) cmdServices(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("services", flag.ContinueOnError)
	all := fs.Bool("all", false, "incluir servicios inactivos")
	if err := fs.Parse(args); err != nil {
		return err
	}
	services, err := a.catalog.ListServices(ctx, !*all)
	if err != nil {
		return err
	}
	promo, promoErr := a.catalog.Promotion(ctx)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSERVICIO\tDURACIÓN\tPRECIO")
	for _, svc := range services {
		price := fmt.Sprintf("$%d", svc.Price)
		if promoErr == nil {
			if discounted, ok := catalog.DiscountedPrice(svc.Price, svc.ID, promo, time.Now()); ok {
				price = fmt.Sprintf("$%d (antes $%d)", discounted, svc.Price)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d min\t%s\n", svc.ID, svc.Name, svc.Duration, price)
	}
	return tw.Flush()
}

func (a *app) cmdStaff(ctx context.Context) error {
	staff, err := a.catalog.ListStaff(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOMBRE")
	for _, s := range staff {
		fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Name)
	}
	return tw.Flush()
}

func (a *app) cmdSlots(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("slots", flag.ContinueOnError)
	serviceID := fs.String("service", "", "servicio")
	date := fs.String("date", "", "fecha AAAA-MM-DD")
	staffID := fs.String("staff", "", "barbero (opcional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var staff *string
	if *staffID != "" {
		staff = staffID
	}
	slots, err := a.appointments.AvailableSlots(ctx, *serviceID, staff, *date)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		marker := " "
		if !slot.Available {
			marker = "x"
		}
		fmt.Printf("[%s] %s\n", marker, slot.Time)
	}
	return nil
}

// cmdBook runs the four wizard steps non-interactively from flags: pick the
// service from the catalog, pick staff or no preference, pick the requested
// (or first free) slot, then confirm.
func (a *app) cmdBook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	serviceID := fs.String("service", "", "servicio")
	date := fs.String("date", "", "fecha AAAA-MM-DD")
	staffID := fs.String("staff", "", "barbero (opcional)")
	slotTime := fs.String("time", "", "horario HH:MM (opcional, por defecto el primero libre)")
	notes := fs.String("notes", "", "notas para el barbero (opcional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	services, err := a.catalog.ListServices(ctx, true)
	if err != nil {
		return err
	}
	var chosen *api.Service
	for i := range services {
		if services[i].ID == *serviceID {
			chosen = &services[i]
			break
		}
	}
	if chosen == nil {
		return fmt.Errorf("servicio no encontrado: %s", *serviceID)
	}
	if err := a.wizard.SelectService(*chosen); err != nil {
		return err
	}

	staffSel := booking.AnyStaff()
	if *staffID != "" {
		roster, err := a.catalog.ListStaff(ctx)
		if err != nil {
			return err
		}
		name := *staffID
		for _, s := range roster {
			if s.ID == *staffID {
				name = s.Name
				break
			}
		}
		staffSel = booking.ChosenStaff(*staffID, name)
	}
	if err := a.wizard.SelectStaff(staffSel); err != nil {
		return err
	}

	slots, err := a.wizard.Slots(ctx, *date)
	if err != nil {
		return err
	}
	var pick *api.TimeSlot
	for i := range slots {
		if !slots[i].Available {
			continue
		}
		if *slotTime == "" || slots[i].Time == *slotTime {
			pick = &slots[i]
			break
		}
	}
	if pick == nil {
		return fmt.Errorf("no hay horarios disponibles para %s", *date)
	}
	if err := a.wizard.SelectDateTime(*date, *pick); err != nil {
		return err
	}
	if *notes != "" {
		if err := a.wizard.SetNotes(*notes); err != nil {
			return err
		}
	}

	draft := a.wizard.Draft()
	fmt.Printf("Reservando %s con %s el %s a las %s...\n",
		draft.Service.Name, draft.Staff.DisplayName(), draft.Date, draft.SlotLabel)

	appt, err := a.wizard.Commit(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Turno reservado: %s\n", appt.ID)
	return nil
}

func (a *app) cmdAppointments(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("appointments", flag.ContinueOnError)
	statuses := fs.String("status", "", "filtrar por estado, separado por comas")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var q api.AppointmentQuery
	if *statuses != "" {
		for _, s := range strings.Split(*statuses, ",") {
			q.Status = append(q.Status, api.AppointmentStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	page, err := a.appointments.List(ctx, q)
	if err != nil {
		return err
	}
	upcoming, past := appointments.Split(page.Appointments)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	printGroup := func(title string, appts []api.Appointment) {
		if len(appts) == 0 {
			return
		}
		fmt.Fprintf(tw, "%s\n", title)
		for _, appt := range appts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				appt.ID, appt.StartTime.Format("2006-01-02 15:04"), appt.Service.Name, appt.Status.Label())
		}
	}
	printGroup("PRÓXIMOS", upcoming)
	printGroup("HISTORIAL", past)
	return tw.Flush()
}

func (a *app) cmdCancel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("uso: cancel <id>")
	}
	appt, err := a.appointments.Cancel(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Turno %s: %s\n", appt.ID, appt.Status.Label())
	return nil
}

func (a *app) cmdRecords(ctx context.Context) error {
	records, err := a.profile.Records(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FECHA\tPRECIO\tBARBERO")
	for _, rec := range records {
		staff := "-"
		if rec.Staff != nil {
			staff = rec.Staff.Name
		}
		fmt.Fprintf(tw, "%s\t$%d\t%s\n", rec.Date, rec.Price, staff)
	}
	return tw.Flush()
}

func (a *app) cmdPromotion(ctx context.Context) error {
	promo, err := a.catalog.Promotion(ctx)
	if err != nil {
		return err
	}
	if !promo.Enabled {
		fmt.Println("No hay promociones activas")
		return nil
	}
	day := time.Weekday(promo.Day)
	fmt.Printf("$%d de descuento los %s", promo.Discount, spanishWeekday(day))
	if promo.Message != "" {
		fmt.Printf(": %s", promo.Message)
	}
	fmt.Println()
	if catalog.IsPromoActive(promo, time.Now()) {
		fmt.Println("¡La promoción aplica hoy!")
	}
	return nil
}

func spanishWeekday(d time.Weekday) string {
	names := [...]string{"domingos", "lunes", "martes", "miércoles", "jueves", "viernes", "sábados"}
	if d < 0 || int(d) >= len(names) {
		return d.String()
	}
	return names[d]
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	user := a.session.CurrentUser()
	if user == nil {
		return fmt.Errorf("iniciá sesión primero")
	}
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	name := fs.String("name", "", "nuevo nombre")
	phone := fs.String("phone", "", "nuevo teléfono")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var req api.UpdateUserRequest
	if *name != "" {
		req.Name = name
	}
	if *phone != "" {
		req.Phone = phone
	}
	if req.Name == nil && req.Phone == nil {
		fmt.Printf("%s <%s>\n", user.Name, user.Email)
		return nil
	}
	updated, err := a.profile.Update(ctx, user.ID, req)
	if err != nil {
		return err
	}
	fmt.Printf("Perfil actualizado: %s\n", updated.Name)
	return nil
}

func (a *app) cmdPasswd(ctx context.Context, args []string) error {
	user := a.session.CurrentUser()
	if user == nil {
		return fmt.Errorf("iniciá sesión primero")
	}
	fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
	current := fs.String("current", "", "contraseña actual")
	newPass := fs.String("new", "", "contraseña nueva")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.profile.ChangePassword(ctx, user.ID, api.ChangePasswordRequest{
		CurrentPassword: *current,
		NewPassword:     *newPass,
		ConfirmPassword: *newPass,
	})
}
