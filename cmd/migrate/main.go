package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/repository"
	"github.com/noah-isme/school-records-api/pkg/config"
	"github.com/noah-isme/school-records-api/pkg/database"
	"github.com/noah-isme/school-records-api/pkg/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: migrate [-password pw] <up|down|version|seed>\n")
	flag.PrintDefaults()
}

func main() {
	password := flag.String("password", "changeme", "password given to every seeded account")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db.DB)
	if err != nil {
		logr.Fatal("init migrator", zap.Error(err))
	}
	defer migrator.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = migrator.Version()
		if err == nil {
			logr.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
	case "seed":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err = seed(ctx, repository.NewStudentRepository(db), repository.NewUserRepository(db), *password)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logr.Fatal("migrate command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
	}
	logr.Info("migrate command finished", zap.String("command", flag.Arg(0)))
}

type studentSeeder interface {
	EnsureWithID(ctx context.Context, student *models.Student) error
}

type userSeeder interface {
	Upsert(ctx context.Context, user *models.User) error
}

// seed inserts the demo roster and accounts. Running it twice leaves the
// same rows behind and resets the account passwords.
func seed(ctx context.Context, students studentSeeder, users userSeeder, password string) error {
	roster := []models.Student{
		{ID: 1, Name: "Ahmad", Class: "10-A", ParentName: "Budi", Phone: "081234567890"},
		{ID: 2, Name: "Siti", Class: "10-A", ParentName: "Rahma", Phone: "081298765432"},
	}
	for i := range roster {
		if err := students.EnsureWithID(ctx, &roster[i]); err != nil {
			return fmt.Errorf("seed student %d: %w", roster[i].ID, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	ahmad, siti := roster[0].ID, roster[1].ID
	accounts := []models.User{
		{Username: "teacher", FullName: "Class Teacher", Role: models.RoleTeacher},
		{Username: "ahmad", FullName: "Ahmad", Role: models.RoleStudent, StudentID: &ahmad},
		{Username: "siti", FullName: "Siti", Role: models.RoleStudent, StudentID: &siti},
	}
	for i := range accounts {
		accounts[i].PasswordHash = string(hash)
		if err := users.Upsert(ctx, &accounts[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", accounts[i].Username, err)
		}
	}
	return nil
}
