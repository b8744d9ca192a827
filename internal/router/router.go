package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "med-tracker/internal/adapters/storage/memory"
	pg "med-tracker/internal/adapters/storage/postgres"
	lite "med-tracker/internal/adapters/storage/sqlite"
	"med-tracker/internal/domain/intakes"
	"med-tracker/internal/domain/medications"
	"med-tracker/internal/domain/units"
	"med-tracker/internal/middleware"
	"med-tracker/internal/platform/logger"
	"med-tracker/internal/ports/auth"
	"med-tracker/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "med-tracker/docs"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, decide por env.
	DB *sql.DB

	Logger logger.Logger

	// Opcional: entrega de recordatorios push. nil => /notify responde 503.
	Notifier notify.ReminderNotifier
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		unitRepo   units.Repository
		medRepo    medications.Repository
		intakeRepo intakes.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff):
	// DB_DSN => Postgres, SQLITE_PATH => SQLite local, nada => in-memory.
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Error("postgres open failed, falling back", map[string]any{"error": err.Error()})
			}
		}
	}

	switch {
	case db != nil:
		unitRepo = pg.NewUnitsRepo(db)
		medRepo = pg.NewMedicationsRepo(db)
		intakeRepo = pg.NewIntakesRepo(db)
	case os.Getenv("SQLITE_PATH") != "":
		opened, err := lite.Open(os.Getenv("SQLITE_PATH"))
		if err != nil {
			log.Error("sqlite open failed, falling back to memory", map[string]any{"error": err.Error()})
			unitRepo = mem.NewUnitsRepo()
			medRepo = mem.NewMedicationsRepo()
			intakeRepo = mem.NewIntakesRepo()
			break
		}
		unitRepo = lite.NewUnitsRepo(opened)
		medRepo = lite.NewMedicationsRepo(opened)
		intakeRepo = lite.NewIntakesRepo(opened)
	default:
		unitRepo = mem.NewUnitsRepo()
		medRepo = mem.NewMedicationsRepo()
		intakeRepo = mem.NewIntakesRepo()
	}

	// Services por módulo. El orden importa: medications necesita el
	// catálogo de unidades, intakes necesita el snapshot del schedule,
	// y units necesita saber qué unidades están en uso.
	unitsSvc := units.NewService(unitRepo)
	medsSvc := medications.NewService(medRepo, intakeRepo, unitsSvc)
	intakesSvc := intakes.NewService(intakeRepo, medsSvc)
	unitsSvc.BindSchedules(medsSvc)

	// Rutas protegidas por módulo
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthContext(opts.AuthVerifier))

		units.RegisterRoutes(r, unitsSvc)
		medications.RegisterRoutes(r, medsSvc, opts.Notifier, log)
		intakes.RegisterRoutes(r, intakesSvc)
	})

	return r
}
