package ports

// Checksummer computes content checksums for the dependency ledger.
//
//go:generate go run go.uber.org/mock/mockgen -source=checksummer.go -destination=mocks/mock_checksummer.go -package=mocks
type Checksummer interface {
	// Checksum returns the content checksum of path. A missing or empty file
	// has checksum 0.
	Checksum(path string) (uint64, error)
}
