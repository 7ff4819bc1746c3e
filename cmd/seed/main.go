package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/app"
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/config"
	"github.com/wonderless/Test-autoestima-sub000/internal/logger"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/scoring"
	"github.com/wonderless/Test-autoestima-sub000/internal/service"
)

type seedUser struct {
	uid     string
	email   string
	role    model.Role
	answers func(*catalog.Catalog) model.Answers
}

// keyed answers every scored question as the key expects, except the listed ids
func keyed(wrong ...int) func(*catalog.Catalog) model.Answers {
	return func(c *catalog.Catalog) model.Answers {
		answers := make(model.Answers)
		for id, v := range c.AnswerKey() {
			answers[id] = v
		}
		for _, id := range wrong {
			answers[id] = !answers[id]
		}
		for i, id := range c.VeracityIDs() {
			answers[id] = !c.VeracityKey()[i]
		}
		return answers
	}
}

var users = []seedUser{
	{uid: "student-alto", email: "alto@example.com", role: model.RoleStudent, answers: keyed()},
	{uid: "student-bajo", email: "bajo@example.com", role: model.RoleStudent, answers: keyed(4, 9, 12, 19, 3, 8, 13, 17)},
	{uid: "student-new", email: "nuevo@example.com", role: model.RoleStudent},
	{uid: "admin", email: "admin@example.com", role: model.RoleAdmin},
	{uid: "superadmin", email: "superadmin@example.com", role: model.RoleSuperAdmin},
}

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer stores.Close(context.Background())

	cat := catalog.Default()
	auth := service.NewAuthService(cfg.JWT)
	now := time.Now().UTC()

	for _, u := range users {
		doc := &model.UserDocument{ID: u.uid, Email: u.email, Role: u.role, CreatedAt: now}
		if u.answers != nil {
			answers := u.answers(cat)
			veracity := scoring.VeracityFor(answers, cat)
			doc.Answers = answers
			doc.VeracityScore = &veracity
			doc.LastTestDate = &now
		}
		// Set replaces the document, dropping progress from a previous seed
		if err := stores.Users.Set(ctx, doc); err != nil {
			log.Fatal("failed to seed user", zap.String("uid", u.uid), zap.Error(err))
		}
		if err := stores.Sessions.DeleteState(ctx, u.uid); err != nil {
			log.Warn("failed to clear session", zap.String("uid", u.uid), zap.Error(err))
		}

		tok, err := auth.IssueToken(u.uid, u.email, u.role)
		if err != nil {
			log.Fatal("failed to issue token", zap.String("uid", u.uid), zap.Error(err))
		}
		fmt.Printf("%-12s %-11s %s\n", u.uid, u.role, tok.Token)
	}
	if err := stores.Dashboard.Invalidate(ctx); err != nil {
		log.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
