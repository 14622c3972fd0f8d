package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	},
	{
		Name: "create_table_rooms",
		SQL: `CREATE TABLE IF NOT EXISTS rooms (
  id                UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  name              TEXT        NOT NULL,
  allow_download    BOOLEAN     NOT NULL DEFAULT false,
  allow_print       BOOLEAN     NOT NULL DEFAULT false,
  allow_copy_paste  BOOLEAN     NOT NULL DEFAULT false,
  watermark_enabled BOOLEAN     NOT NULL DEFAULT true,
  require_nda       BOOLEAN     NOT NULL DEFAULT false,
  status            TEXT        NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE','ARCHIVED','CLOSED')),
  expires_at        TIMESTAMPTZ,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_room_access",
		SQL: `CREATE TABLE IF NOT EXISTS room_access (
  id                UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id           TEXT        NOT NULL,
  room_id           UUID        NOT NULL REFERENCES rooms(id),
  role              TEXT        NOT NULL CHECK (role IN ('ROOM_OWNER','ADMIN','CONTRIBUTOR','VIEWER','AUDITOR')),
  can_view          BOOLEAN     NOT NULL DEFAULT false,
  can_download      BOOLEAN     NOT NULL DEFAULT false,
  can_print         BOOLEAN     NOT NULL DEFAULT false,
  can_upload        BOOLEAN     NOT NULL DEFAULT false,
  can_edit          BOOLEAN     NOT NULL DEFAULT false,
  can_invite        BOOLEAN     NOT NULL DEFAULT false,
  can_manage_qa     BOOLEAN     NOT NULL DEFAULT false,
  can_view_audit    BOOLEAN     NOT NULL DEFAULT false,
  can_manage_users  BOOLEAN     NOT NULL DEFAULT false,
  can_manage_groups BOOLEAN     NOT NULL DEFAULT false,
  can_manage_room   BOOLEAN     NOT NULL DEFAULT false,
  ip_whitelist      JSONB       NOT NULL DEFAULT '[]',
  allowed_countries JSONB       NOT NULL DEFAULT '[]',
  expires_at        TIMESTAMPTZ,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (user_id, room_id)
);`,
	},
	{
		Name: "create_table_folders",
		SQL: `CREATE TABLE IF NOT EXISTS folders (
  id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  room_id    UUID        NOT NULL REFERENCES rooms(id),
  parent_id  UUID        REFERENCES folders(id),
  name       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id           UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  room_id      UUID        NOT NULL REFERENCES rooms(id),
  folder_id    UUID        REFERENCES folders(id),
  name         TEXT        NOT NULL,
  storage_key  TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  checksum     TEXT        NOT NULL DEFAULT '',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_groups",
		SQL: `CREATE TABLE IF NOT EXISTS user_groups (
  id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  room_id    UUID        NOT NULL REFERENCES rooms(id),
  name       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS group_memberships (
  group_id UUID NOT NULL REFERENCES user_groups(id),
  user_id  TEXT NOT NULL,
  PRIMARY KEY (group_id, user_id)
);`,
	},
	{
		Name: "create_table_folder_permissions",
		SQL: `CREATE TABLE IF NOT EXISTS folder_permissions (
  id           UUID    PRIMARY KEY DEFAULT gen_random_uuid(),
  folder_id    UUID    NOT NULL REFERENCES folders(id),
  user_id      TEXT,
  group_id     UUID    REFERENCES user_groups(id),
  can_view     BOOLEAN,
  can_download BOOLEAN,
  can_print    BOOLEAN,
  can_upload   BOOLEAN,
  can_edit     BOOLEAN,
  CHECK ((user_id IS NULL) <> (group_id IS NULL))
);`,
	},
	{
		Name: "create_table_share_links",
		SQL: `CREATE TABLE IF NOT EXISTS share_links (
  id               UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  token            TEXT        NOT NULL UNIQUE,
  target_type      TEXT        NOT NULL CHECK (target_type IN ('FILE','FOLDER')),
  target_id        UUID        NOT NULL,
  room_id          UUID        NOT NULL REFERENCES rooms(id),
  created_by       TEXT        NOT NULL,
  recipient_email  TEXT        NOT NULL DEFAULT '',
  recipient_name   TEXT        NOT NULL DEFAULT '',
  message          TEXT        NOT NULL DEFAULT '',
  is_active        BOOLEAN     NOT NULL DEFAULT true,
  max_views        INTEGER     CHECK (max_views IS NULL OR max_views > 0),
  current_views    INTEGER     NOT NULL DEFAULT 0 CHECK (current_views >= 0),
  expires_at       TIMESTAMPTZ,
  password_hash    TEXT        NOT NULL DEFAULT '',
  allow_download   BOOLEAN     NOT NULL DEFAULT false,
  allow_print      BOOLEAN     NOT NULL DEFAULT false,
  require_auth     BOOLEAN     NOT NULL DEFAULT false,
  last_accessed_at TIMESTAMPTZ,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  revoked_at       TIMESTAMPTZ,
  revoked_by       TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_share_links_target",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_share_links_target ON share_links (target_type, target_id);`,
	},
	{
		Name: "create_table_access_requests",
		SQL: `CREATE TABLE IF NOT EXISTS access_requests (
  id           UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id      TEXT        NOT NULL,
  room_id      UUID        NOT NULL REFERENCES rooms(id),
  folder_id    UUID        REFERENCES folders(id),
  reason       TEXT        NOT NULL DEFAULT '',
  status       TEXT        NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING','APPROVED','DENIED')),
  reviewed_by  TEXT        NOT NULL DEFAULT '',
  reviewed_at  TIMESTAMPTZ,
  review_note  TEXT        NOT NULL DEFAULT '',
  granted_role TEXT        NOT NULL DEFAULT '',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_access_requests_pending",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_access_requests_pending
  ON access_requests (user_id, room_id, COALESCE(folder_id::text, ''))
  WHERE status = 'PENDING';`,
	},
	{
		Name: "create_table_audit_events",
		SQL: `CREATE TABLE IF NOT EXISTS audit_events (
  id            UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  actor_id      TEXT        NOT NULL DEFAULT '',
  action        TEXT        NOT NULL,
  resource_type TEXT        NOT NULL,
  resource_id   TEXT        NOT NULL,
  room_id       TEXT        NOT NULL DEFAULT '',
  outcome       TEXT        NOT NULL,
  ip_address    TEXT        NOT NULL DEFAULT '',
  user_agent    TEXT        NOT NULL DEFAULT '',
  request_id    TEXT        NOT NULL DEFAULT '',
  details       JSONB       NOT NULL DEFAULT '{}',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_audit_events_room_created ON audit_events (room_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_events_action ON audit_events (action);`,
	},
	{
		Name: "protect_audit_events_append_only",
		SQL: `CREATE OR REPLACE FUNCTION audit_events_immutable() RETURNS trigger AS $$
BEGIN
  RAISE EXCEPTION 'audit_events is append-only';
END;
$$ LANGUAGE plpgsql;
DROP TRIGGER IF EXISTS trg_audit_events_immutable ON audit_events;
CREATE TRIGGER trg_audit_events_immutable BEFORE UPDATE OR DELETE ON audit_events
  FOR EACH ROW EXECUTE FUNCTION audit_events_immutable();`,
	},
	{
		Name: "create_table_render_artifacts",
		SQL: `CREATE TABLE IF NOT EXISTS render_artifacts (
  id           UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  storage_key  TEXT        NOT NULL UNIQUE,
  file_id      UUID        NOT NULL,
  viewer_id    TEXT        NOT NULL DEFAULT '',
  room_id      UUID        NOT NULL,
  checksum     TEXT        NOT NULL,
  delete_after TIMESTAMPTZ NOT NULL,
  deleted_at   TIMESTAMPTZ,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_render_artifacts_due ON render_artifacts (delete_after) WHERE deleted_at IS NULL;`,
	},
}

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureMigrated applies every step that is not yet recorded in schema_migrations.
// Each step runs in its own transaction together with its ledger row.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(slog.String("component", "database"), slog.String("db_host", dbHost))

	log.Info("db_migration_check")

	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		log.Error("db_migration_failed", slog.String("error_message", err.Error()))
		return fmt.Errorf("create migration ledger: %w", err)
	}

	applied, err := appliedSteps(ctx, db)
	if err != nil {
		log.Error("db_migration_failed", slog.String("error_message", err.Error()))
		return err
	}

	ran := 0
	for _, step := range steps {
		if applied[step.Name] {
			continue
		}
		stepStart := time.Now()
		if err := applyStep(ctx, db, step); err != nil {
			log.Error("db_migration_failed",
				slog.String("migration_step", step.Name),
				slog.String("error_message", err.Error()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		ran++
		log.Info("db_migration_step",
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	if ran == 0 {
		log.Info("db_migration_skip", slog.String("msg_detail", "schema up to date"))
		return nil
	}
	log.Info("db_migration_success",
		slog.Int("steps", ran),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func applyStep(ctx context.Context, db *sql.DB, step migrationStep) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
