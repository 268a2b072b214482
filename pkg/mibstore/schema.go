package mibstore

// Schema contains the SQL statements to create the MIB library schema.
const Schema = `
CREATE TABLE IF NOT EXISTS mib_files (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL,
    module       TEXT,
    hash         TEXT UNIQUE NOT NULL,
    size         INTEGER NOT NULL,
    content_type TEXT,
    uploaded_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_mib_files_name ON mib_files(name);
CREATE INDEX IF NOT EXISTS idx_mib_files_module ON mib_files(module);
`

// hashLength is the expected length of a SHA256 hash in hexadecimal format.
const hashLength = 64

// MaxFileSize caps a single MIB file, including archive members.
const MaxFileSize = 16 << 20

const dirPerm = 0o750
