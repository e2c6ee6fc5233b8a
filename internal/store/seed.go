package store

import (
	"context"
	"fmt"
)

type seedPlan struct {
	name           string
	description    string
	price          float64
	durationInDays int
}

var defaultPlans = []seedPlan{
	{name: "Free", description: "Basic free plan", price: 0, durationInDays: 30},
	{name: "Basic", description: "Basic subscription", price: 4.99, durationInDays: 30},
	{name: "Pro", description: "Professional plan", price: 9.99, durationInDays: 30},
	{name: "Enterprise", description: "Enterprise solution", price: 19.99, durationInDays: 30},
}

// SeedResult reports how many rows Seed inserted.
type SeedResult struct {
	UsersCreated int64
	PlansCreated int64
}

// Seed inserts the admin account and the default plan catalogue. Existing
// rows are left untouched, so running it twice is harmless.
func (r *Repository) Seed(ctx context.Context, adminEmail, adminPasswordHash string) (SeedResult, error) {
	var result SeedResult

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        INSERT INTO users (username, email, password_hash)
        VALUES ('admin', $1, $2)
        ON CONFLICT DO NOTHING
    `, adminEmail, adminPasswordHash)
	if err != nil {
		return result, fmt.Errorf("seed admin user: %w", err)
	}
	result.UsersCreated = tag.RowsAffected()

	for _, p := range defaultPlans {
		tag, err := tx.Exec(ctx, `
            INSERT INTO plans (name, description, price, duration_in_days)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (name) DO NOTHING
        `, p.name, p.description, p.price, p.durationInDays)
		if err != nil {
			return result, fmt.Errorf("seed plan %s: %w", p.name, err)
		}
		result.PlansCreated += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit seed transaction: %w", err)
	}
	return result, nil
}
