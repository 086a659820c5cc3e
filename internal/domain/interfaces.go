package domain

// AlternativeSource yields the raw alternative records to score. Any
// data source providing the six required fields can stand behind this
// boundary (CSV file, SQLite table, in-memory fixture).
type AlternativeSource interface {
	LoadAll() ([]Alternative, error)
}
