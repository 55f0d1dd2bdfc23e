package storage

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    run_id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid        TEXT UNIQUE NOT NULL,
    account_id      TEXT NOT NULL,
    run_timestamp   DATETIME DEFAULT CURRENT_TIMESTAMP,
    duration_ms     INTEGER,
    checks_run      INTEGER DEFAULT 0,
    passed_count    INTEGER DEFAULT 0,
    failed_count    INTEGER DEFAULT 0,
    errored_count   INTEGER DEFAULT 0,
    sections        INTEGER DEFAULT 0,
    notified        INTEGER DEFAULT 0,
    cli_version     TEXT,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_account_timestamp
    ON runs(account_id, run_timestamp);
CREATE INDEX IF NOT EXISTS idx_runs_timestamp
    ON runs(run_timestamp DESC);

CREATE TABLE IF NOT EXISTS run_outcomes (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id          INTEGER NOT NULL,
    check_id        TEXT NOT NULL,
    check_name      TEXT NOT NULL,
    status          TEXT NOT NULL,
    error_kind      TEXT,
    error           TEXT,
    muted           INTEGER DEFAULT 0,
    item_count      INTEGER DEFAULT 0,
    finding_json    TEXT,
    duration_ms     INTEGER,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_outcomes_run ON run_outcomes(run_id);
CREATE INDEX IF NOT EXISTS idx_run_outcomes_check ON run_outcomes(check_name);

CREATE TABLE IF NOT EXISTS check_status (
    account_id      TEXT NOT NULL,
    check_name      TEXT NOT NULL,
    first_failed    DATETIME NOT NULL,
    last_failed     DATETIME NOT NULL,
    resolved_at     DATETIME,
    status          TEXT DEFAULT 'OPEN',
    UNIQUE(account_id, check_name)
);

CREATE INDEX IF NOT EXISTS idx_check_status_status ON check_status(status);

CREATE TABLE IF NOT EXISTS log_records (
    id              TEXT PRIMARY KEY,
    check_id        TEXT NOT NULL,
    check_name      TEXT NOT NULL,
    timestamp       TEXT NOT NULL,
    version         TEXT,
    module          TEXT,
    muted           INTEGER DEFAULT 0,
    status          TEXT NOT NULL,
    message         TEXT
);

CREATE INDEX IF NOT EXISTS idx_log_records_timestamp ON log_records(timestamp DESC);
`
