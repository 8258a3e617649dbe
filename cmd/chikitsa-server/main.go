package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/punithchavan/CHIKITSA/internal/config"
	"github.com/punithchavan/CHIKITSA/internal/domain/identity"
	"github.com/punithchavan/CHIKITSA/internal/domain/records"
	"github.com/punithchavan/CHIKITSA/internal/domain/scheduling"
	"github.com/punithchavan/CHIKITSA/internal/platform/db"
	"github.com/punithchavan/CHIKITSA/internal/platform/filestore"
	"github.com/punithchavan/CHIKITSA/internal/platform/middleware"
	"github.com/punithchavan/CHIKITSA/internal/platform/phi"
	"github.com/punithchavan/CHIKITSA/internal/platform/token"
)

// schedulingDirectory adapts the identity service to scheduling.Directory,
// avoiding a package dependency from scheduling on identity.
type schedulingDirectory struct {
	svc *identity.Service
}

func (d *schedulingDirectory) ResolvePatient(ctx context.Context, ref string) (*scheduling.PatientInfo, error) {
	p, err := d.svc.ResolvePatient(ctx, ref)
	if errors.Is(err, identity.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toPatientInfo(p), nil
}

func (d *schedulingDirectory) ResolveDoctor(ctx context.Context, ref string) (*scheduling.DoctorInfo, error) {
	doc, err := d.svc.ResolveDoctor(ctx, ref)
	if errors.Is(err, identity.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDoctorInfo(doc), nil
}

func (d *schedulingDirectory) PatientByID(ctx context.Context, id uuid.UUID) (*scheduling.PatientInfo, error) {
	return d.ResolvePatient(ctx, id.String())
}

func (d *schedulingDirectory) DoctorByID(ctx context.Context, id uuid.UUID) (*scheduling.DoctorInfo, error) {
	return d.ResolveDoctor(ctx, id.String())
}

func toPatientInfo(p *identity.Patient) *scheduling.PatientInfo {
	return &scheduling.PatientInfo{
		ID:          p.ID,
		PublicID:    p.PublicID,
		Name:        p.Name,
		Gender:      p.Gender,
		Age:         p.Age,
		ContactInfo: p.ContactInfo,
	}
}

func toDoctorInfo(d *identity.Doctor) *scheduling.DoctorInfo {
	return &scheduling.DoctorInfo{ID: d.ID, PublicID: d.PublicID, Name: d.Name}
}

// adminCounterStore adapts the admin repository to scheduling.CounterStore.
type adminCounterStore struct {
	svc    *identity.Service
	admins identity.AdminRepository
}

func (s *adminCounterStore) SetActiveConnections(ctx context.Context, count int) error {
	return s.admins.SetActiveConnections(ctx, count)
}

func (s *adminCounterStore) AdminProfile(ctx context.Context) (*scheduling.AdminInfo, error) {
	a, err := s.svc.FirstAdmin(ctx)
	if errors.Is(err, identity.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scheduling.AdminInfo{
		Name:         a.Name,
		Username:     a.Username,
		HospitalName: a.HospitalName,
	}, nil
}

// recordsDirectory adapts the identity service to records.Directory.
type recordsDirectory struct {
	svc *identity.Service
}

func (d *recordsDirectory) ResolvePatient(ctx context.Context, ref string) (*records.PatientRef, error) {
	p, err := d.svc.ResolvePatient(ctx, ref)
	if errors.Is(err, identity.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &records.PatientRef{ID: p.ID, PublicID: p.PublicID, Name: p.Name}, nil
}

func (d *recordsDirectory) ResolveDoctor(ctx context.Context, ref string) (*records.DoctorRef, error) {
	doc, err := d.svc.ResolveDoctor(ctx, ref)
	if errors.Is(err, identity.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &records.DoctorRef{ID: doc.ID, PublicID: doc.PublicID, Name: doc.Name}, nil
}

func (d *recordsDirectory) DoctorByID(ctx context.Context, id uuid.UUID) (*records.DoctorRef, error) {
	return d.ResolveDoctor(ctx, id.String())
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "chikitsa-server",
		Short: "Hospital record management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// In development a missing key or secret is generated at startup; data
	// encrypted with a generated key is unreadable after restart.
	var recordKey []byte
	if cfg.RecordKey == "" {
		recordKey, err = phi.NewRandomKey()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to generate record key")
		}
		logger.Warn().Msg("RECORD_ENCRYPTION_KEY not set, using a generated key for this run")
	} else {
		recordKey, err = cfg.RecordKeyBytes()
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid record encryption key")
		}
	}

	tokenSecret := []byte(cfg.TokenSecret)
	if cfg.TokenSecret == "" {
		generated, err := phi.NewRandomKey()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to generate token secret")
		}
		tokenSecret = []byte(hex.EncodeToString(generated))
		logger.Warn().Msg("TOKEN_SECRET not set, using a generated secret for this run")
	}

	cipher, err := phi.NewAESCipher(recordKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise cipher")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	diskStore, err := filestore.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise upload storage")
	}
	uploadStore := filestore.NewEncryptedStore(diskStore, cipher)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Identity
	userRepo := identity.NewUserRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	doctorRepo := identity.NewDoctorRepoPG(pool)
	adminRepo := identity.NewAdminRepoPG(pool)
	identitySvc := identity.NewService(userRepo, patientRepo, doctorRepo, adminRepo, logger)
	tokens := token.NewIssuer(tokenSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	identity.NewHandler(identitySvc, tokens, logger).RegisterRoutes(e)

	// Scheduling
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	schedSvc := scheduling.NewService(apptRepo,
		&schedulingDirectory{svc: identitySvc},
		&adminCounterStore{svc: identitySvc, admins: adminRepo},
		logger)
	scheduling.NewHandler(schedSvc, logger).RegisterRoutes(e)

	// Medical records
	recordRepo := records.NewRecordRepoPG(pool)
	recordsSvc := records.NewService(recordRepo, &recordsDirectory{svc: identitySvc},
		cipher, uploadStore, logger)
	records.NewHandler(recordsSvc, logger).RegisterRoutes(e)

	// Uploads are stored encrypted and decrypted on the way out.
	e.GET("/uploads/:name", filestore.DownloadHandler(uploadStore))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
