// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Command sqlproj-demo stores a blog post and reads it back through the DTO
// and record projections.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canonical/sqlproj"
	"github.com/canonical/sqlproj/internal/config"
	"github.com/canonical/sqlproj/internal/database"
	"github.com/canonical/sqlproj/internal/schema"
	"github.com/canonical/sqlproj/internal/telemetry"
	"github.com/canonical/sqlproj/post"
)

func main() {
	var configDir string
	flag.StringVar(&configDir, "config", ".", "directory holding an optional sqlproj.yaml")
	flag.Parse()

	log.SetPrefix("[sqlproj-demo] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configDir); err != nil {
		log.Fatalf("demo failed: %v", err)
	}
}

func run(ctx context.Context, configDir string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTELEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Printf("opened %s database", db.Driver)

	if err := schema.Migrate(db.PlainDB(), db.Driver); err != nil {
		return err
	}

	repo := post.NewRepository(db.DB)
	p := post.Post{
		ID:        1,
		Title:     "High-Performance Java Persistence",
		CreatedOn: time.Date(2016, 11, 2, 12, 0, 0, 0, time.UTC),
		CreatedBy: "Vlad Mihalcea",
		UpdatedOn: time.Now().UTC().Truncate(time.Second),
		UpdatedBy: "Vlad Mihalcea",
	}
	err = db.Transaction(ctx, func(ctx context.Context, tx *sqlproj.TX) error {
		return repo.Save(ctx, tx, p)
	})
	if err != nil {
		return err
	}
	log.Printf("saved post %d", p.ID)

	return db.Transaction(ctx, func(ctx context.Context, tx *sqlproj.TX) error {
		for _, variant := range []post.QueryVariant{post.AliasQuery, post.NativeQuery} {
			dtos, err := repo.DTOs(ctx, tx, variant)
			if err != nil {
				return err
			}
			for _, dto := range dtos {
				log.Printf("%s dto: id=%d title=%q", variant, dto.ID(), dto.Title())
			}
		}

		records, err := repo.Records(ctx, tx)
		if err != nil {
			return err
		}
		for _, r := range records {
			a := r.Audit()
			log.Printf("record: id=%d title=%q created=%s by %s updated=%s by %s",
				r.ID(), r.Title(), a.CreatedOn().Format(time.RFC3339), a.CreatedBy(),
				a.UpdatedOn().Format(time.RFC3339), a.UpdatedBy())
		}
		return nil
	})
}
