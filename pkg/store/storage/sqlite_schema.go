package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements that create the proxy's tables. It is
// applied with CREATE TABLE IF NOT EXISTS, so it is safe to run on every
// startup against an already-initialized database.
const Schema = `
CREATE TABLE IF NOT EXISTS requests (
    id               TEXT PRIMARY KEY,
    received_at      TIMESTAMP NOT NULL,
    client_id        TEXT,
    requested_model  TEXT,
    message_count    INTEGER,
    tool_count       INTEGER,
    streaming        BOOLEAN,
    prompt_preview   TEXT,
    status           TEXT NOT NULL,
    completed_at     TIMESTAMP,
    total_latency_ms INTEGER,
    http_status      INTEGER,
    error            TEXT
);

CREATE TABLE IF NOT EXISTS steps (
    id          TEXT PRIMARY KEY,
    request_id  TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL,
    name        TEXT NOT NULL,
    status      TEXT NOT NULL,
    duration_ms INTEGER,
    detail      TEXT
);

CREATE TABLE IF NOT EXISTS tasks (
    id                   TEXT PRIMARY KEY,
    request_id           TEXT NOT NULL,
    created_at           TIMESTAMP NOT NULL,
    category             TEXT,
    complexity           INTEGER,
    prompt_summary       TEXT,
    message_count        INTEGER,
    requested_model      TEXT,
    provider_id          TEXT,
    selected_model_id    TEXT,
    router_reason        TEXT,
    tokens_in            INTEGER,
    tokens_out           INTEGER,
    cost_usd             REAL,
    latency_ms           INTEGER,
    streaming            BOOLEAN,
    tokens_before_compr  INTEGER,
    tokens_after_compr   INTEGER,
    cache_hit            BOOLEAN,
    remaining_budget     REAL,
    dispatch_mode        TEXT,
    cli_success          BOOLEAN,
    heuristic_score      INTEGER,
    user_rating          INTEGER,
    error                TEXT,
    full_prompt          TEXT,
    full_response        TEXT
);

CREATE TABLE IF NOT EXISTS providers (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    enabled    BOOLEAN NOT NULL,
    priority   INTEGER,
    config     TEXT,
    created_at TIMESTAMP,
    updated_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS models (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    provider_id         TEXT NOT NULL,
    model_id            TEXT NOT NULL,
    display_name        TEXT,
    tier                TEXT NOT NULL,
    input_cost_per_m    REAL,
    output_cost_per_m   REAL,
    max_context_tokens  INTEGER,
    supports_stream     BOOLEAN,
    supports_tools      BOOLEAN,
    supports_vision     BOOLEAN,
    enabled             BOOLEAN NOT NULL,
    UNIQUE(provider_id, model_id)
);

CREATE TABLE IF NOT EXISTS budgets (
    period     TEXT PRIMARY KEY,
    limit_usd  REAL NOT NULL,
    enabled    BOOLEAN NOT NULL,
    updated_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_steps_request_id ON steps(request_id);
CREATE INDEX IF NOT EXISTS idx_tasks_request_id ON tasks(request_id);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);
CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category);
CREATE INDEX IF NOT EXISTS idx_tasks_provider_model ON tasks(provider_id, selected_model_id);
CREATE INDEX IF NOT EXISTS idx_models_tier ON models(tier);
`

// InsertSchemaVersion records the applied schema version, ignoring the
// insert if it is already present.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the highest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
