package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cashya/shoppy-backend/pkg/migrate"
)

const migrationsDir = "../../db/migrations"

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir(migrationsDir); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join(migrationsDir, "*_create_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CHECK (payment_mode IN ('cod', 'gateway'))",
		"CHECK (status BETWEEN 0 AND 7)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_order_status ON order_statuses(order_id, status)",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCartMigrationEnforcesSingleVariantRow(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join(migrationsDir, "*_create_coupons_and_carts.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no carts migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_variant ON cart_items(cart_id, variant_id)") {
		t.Fatal("cart_items must carry a unique (cart_id, variant_id) index")
	}
}
