package config

import "errors"

var (
	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrEmptyLedgerFile indicates the ledger file name is empty.
	ErrEmptyLedgerFile = errors.New("config: ledger file must not be empty")

	// ErrEmptyJournalDir indicates the journal directory name is empty.
	ErrEmptyJournalDir = errors.New("config: journal directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfig indicates the configuration file is malformed.
	ErrInvalidConfig = errors.New("config: invalid configuration file")
)
